// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// StateSerializer packages the caller's opaque state into the oidc "state"
// parameter.  The state is padded with a random value, so an attacker can't
// predict the parameter even when the caller's state is predictable (or
// empty).  The envelope is base64 encoded JSON:
//
//	{"state": <caller state>, "random": <random value>}
//
// A StateSerializer has no state of its own and is safe for concurrent use.
type StateSerializer struct{}

// envelope is the serialized form of a state.
type envelope struct {
	State  interface{} `json:"state"`
	Random string      `json:"random"`
}

// NewStateSerializer creates a StateSerializer.
func NewStateSerializer() *StateSerializer {
	return &StateSerializer{}
}

// Serialize wraps state and random into an oidc state parameter.  The state
// must be JSON serializable.  The same inputs always produce the same output.
func (s *StateSerializer) Serialize(state interface{}, random string) (string, error) {
	const op = "StateSerializer.Serialize"
	b, err := json.Marshal(envelope{State: state, Random: random})
	if err != nil {
		return "", fmt.Errorf("%s: state is not serializable: %w: %w", op, ErrInvalidParameter, err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Unserialize returns the caller's state from an oidc state parameter.  The
// random padding is discarded.  It returns nil when the parameter can't be
// decoded or has no state; a forged or garbled state is never an error.
//
// JSON values come back as their generic Go representation (string,
// float64, bool, []interface{} or map[string]interface{}).  See
// UnserializeInto for typed states.
func (s *StateSerializer) Unserialize(serialized string) interface{} {
	raw, ok := s.rawState(serialized)
	if !ok {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// UnserializeInto decodes the caller's state into v, which must be a
// pointer.  It reports false when the parameter can't be decoded, has no
// state, or the state doesn't fit v.
func (s *StateSerializer) UnserializeInto(serialized string, v interface{}) bool {
	raw, ok := s.rawState(serialized)
	if !ok || v == nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *StateSerializer) rawState(serialized string) (json.RawMessage, bool) {
	b, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, false
	}
	raw, ok := fields["state"]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}
