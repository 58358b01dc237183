// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSerializer_RoundTrip(t *testing.T) {
	t.Parallel()
	s := NewStateSerializer()
	tests := []struct {
		name  string
		state interface{}
	}{
		{"string", "https://example.com/return-to"},
		{"empty-string", ""},
		{"number", float64(42)},
		{"bool", true},
		{"list", []interface{}{"a", float64(1), false}},
		{"object", map[string]interface{}{"return_to": "/home", "attempt": float64(2)}},
		{"nil", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			for _, random := range []string{"", "padding", "c29tZS1yYW5kb20tdmFsdWU="} {
				got, err := s.Serialize(tt.state, random)
				require.NoError(err)
				assert.Equal(tt.state, s.Unserialize(got))
			}
		})
	}
}

func TestStateSerializer_Serialize(t *testing.T) {
	t.Parallel()
	s := NewStateSerializer()
	t.Run("wire-format", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := s.Serialize("app-state", "random-value")
		require.NoError(err)

		raw, err := base64.StdEncoding.DecodeString(got)
		require.NoError(err)
		var fields map[string]interface{}
		require.NoError(json.Unmarshal(raw, &fields))
		assert.Equal(map[string]interface{}{"state": "app-state", "random": "random-value"}, fields)
	})
	t.Run("deterministic", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		first, err := s.Serialize("app-state", "random-value")
		require.NoError(err)
		second, err := s.Serialize("app-state", "random-value")
		require.NoError(err)
		assert.Equal(first, second)

		other, err := s.Serialize("app-state", "other-random-value")
		require.NoError(err)
		assert.NotEqual(first, other)
	})
	t.Run("not-serializable", func(t *testing.T) {
		_, err := s.Serialize(make(chan int), "random-value")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter))
	})
}

func TestStateSerializer_Unserialize(t *testing.T) {
	t.Parallel()
	s := NewStateSerializer()
	b64 := func(v string) string { return base64.StdEncoding.EncodeToString([]byte(v)) }
	tests := []struct {
		name       string
		serialized string
	}{
		{"empty", ""},
		{"not-base64", "!!not base64!!"},
		{"not-json", b64("not json")},
		{"json-array", b64(`["state"]`)},
		{"json-string", b64(`"state"`)},
		{"missing-state", b64(`{"random":"r"}`)},
		{"null-state", b64(`{"state":null,"random":"r"}`)},
		{"truncated", b64(`{"state":"abc`)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert := assert.New(t)
			assert.NotPanics(func() {
				assert.Nil(s.Unserialize(tt.serialized))
			})
			var v interface{}
			assert.False(s.UnserializeInto(tt.serialized, &v))
		})
	}
}

func TestStateSerializer_UnserializeInto(t *testing.T) {
	t.Parallel()
	type appState struct {
		ReturnTo string `json:"return_to"`
		Attempt  int    `json:"attempt"`
	}
	s := NewStateSerializer()
	want := appState{ReturnTo: "/home", Attempt: 2}
	serialized, err := s.Serialize(want, "random-value")
	require.NoError(t, err)

	t.Run("typed", func(t *testing.T) {
		var got appState
		assert.True(t, s.UnserializeInto(serialized, &got))
		assert.Equal(t, want, got)
	})
	t.Run("wrong-type", func(t *testing.T) {
		var got string
		assert.False(t, s.UnserializeInto(serialized, &got))
	})
	t.Run("nil-target", func(t *testing.T) {
		assert.False(t, s.UnserializeInto(serialized, nil))
	})
}
