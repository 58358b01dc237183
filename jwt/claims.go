// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Registered claim names used by the validator.
const (
	IssuerClaim          = "iss"
	SubjectClaim         = "sub"
	AudienceClaim        = "aud"
	ExpirationClaim      = "exp"
	IssuedAtClaim        = "iat"
	NonceClaim           = "nonce"
	AuthorizedPartyClaim = "azp"
)

// Claims is the claim set of a verified token.  It's never modified after
// construction: accessors return copies of composite values.
type Claims struct {
	claims map[string]interface{}
}

// NewClaims creates a Claims from a decoded payload.  The map is copied.
func NewClaims(m map[string]interface{}) *Claims {
	c := &Claims{claims: make(map[string]interface{}, len(m))}
	for k, v := range m {
		c.claims[k] = copyValue(v)
	}
	return c
}

// Has reports whether the claim is present with a non-null value.
func (c *Claims) Has(name string) bool {
	if c == nil {
		return false
	}
	v, ok := c.claims[name]
	return ok && v != nil
}

// Claim returns a copy of the raw claim value.
func (c *Claims) Claim(name string) (interface{}, bool) {
	if !c.Has(name) {
		return nil, false
	}
	return copyValue(c.claims[name]), true
}

// Map returns a copy of every claim.
func (c *Claims) Map() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	m := make(map[string]interface{}, len(c.claims))
	for k, v := range c.claims {
		m[k] = copyValue(v)
	}
	return m
}

// String returns the claim as a string, or "" when it's absent or isn't a
// string.
func (c *Claims) String(name string) string {
	if !c.Has(name) {
		return ""
	}
	s, _ := c.claims[name].(string)
	return s
}

// Bool returns the claim as a bool.  The strings "true" and "1" are accepted
// since some providers emit custom flags that way.
func (c *Claims) Bool(name string) bool {
	if !c.Has(name) {
		return false
	}
	switch v := c.claims[name].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	case float64:
		return v != 0
	}
	return false
}

// Int64 returns a numeric claim.  The bool is false when the claim is absent
// or not a number.
func (c *Claims) Int64(name string) (int64, bool) {
	if !c.Has(name) {
		return 0, false
	}
	n, err := numericValue(c.claims[name])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Time returns a NumericDate claim (seconds since the epoch, fractions
// included), or the zero time.
func (c *Claims) Time(name string) time.Time {
	if !c.Has(name) {
		return time.Time{}
	}
	t, err := numericTime(c.claims[name])
	if err != nil {
		return time.Time{}
	}
	return t
}

// Strings returns a claim which may be either a single string or an array of
// strings, normalized to a slice.
func (c *Claims) Strings(name string) []string {
	s, _ := c.stringsValue(name)
	return s
}

// Issuer returns the "iss" claim.
func (c *Claims) Issuer() string { return c.String(IssuerClaim) }

// Subject returns the "sub" claim.
func (c *Claims) Subject() string { return c.String(SubjectClaim) }

// Audience returns the "aud" claim.  A single string is returned as a one
// element slice.
func (c *Claims) Audience() []string { return c.Strings(AudienceClaim) }

// ExpirationTime returns the "exp" claim.
func (c *Claims) ExpirationTime() time.Time { return c.Time(ExpirationClaim) }

// IssuedAt returns the "iat" claim.
func (c *Claims) IssuedAt() time.Time { return c.Time(IssuedAtClaim) }

// MarshalJSON implements the json.Marshaler interface.
func (c *Claims) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

func (c *Claims) stringsValue(name string) ([]string, error) {
	if !c.Has(name) {
		return nil, nil
	}
	switch v := c.claims[name].(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%q contains a non string value: %w", name, ErrInvalidClaim)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%q is neither a string nor an array: %w", name, ErrInvalidClaim)
	}
}

// isEmpty reports whether a present claim carries no usable value.
func (c *Claims) isEmpty(name string) bool {
	switch v := c.claims[name].(type) {
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func numericValue(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("not a finite number: %w", ErrInvalidClaim)
		}
		return int64(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%q: %w", n, ErrInvalidClaim)
		}
		return int64(f), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("%T is not a number: %w", v, ErrInvalidClaim)
	}
}

// numericTime converts a NumericDate without dropping its fractional
// seconds.
func numericTime(v interface{}) (time.Time, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return time.Unix(i, 0), nil
		}
		var err error
		if f, err = n.Float64(); err != nil {
			return time.Time{}, fmt.Errorf("%q: %w", n, ErrInvalidClaim)
		}
	default:
		i, err := numericValue(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(i, 0), nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return time.Time{}, fmt.Errorf("not a finite number: %w", ErrInvalidClaim)
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))), nil
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = copyValue(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = copyValue(e)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
