// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// RedactedToken is the redacted string or json for an oauth token
	RedactedToken = "[REDACTED: token]"

	// RedactedAccessToken is the redacted string or json for an oauth
	// access_token
	RedactedAccessToken = "[REDACTED: access_token]"
)

// Token is an opaque oauth token (a refresh_token, for instance) and the
// scopes it was granted for.  No expiration is tracked.
type Token struct {
	code   string
	scopes []string
}

// NewToken creates a Token.  The code is required.
func NewToken(code string, scopes []string) (*Token, error) {
	const op = "oidc.NewToken"
	if code == "" {
		return nil, fmt.Errorf("%s: code is empty: %w", op, ErrInvalidParameter)
	}
	return &Token{
		code:   code,
		scopes: append([]string(nil), scopes...),
	}, nil
}

// Code returns the raw token value.
func (t *Token) Code() string { return t.code }

// Scopes returns the granted scopes.
func (t *Token) Scopes() []string { return append([]string(nil), t.scopes...) }

// String will redact the token
func (t *Token) String() string { return RedactedToken }

// MarshalJSON will redact the token
func (t *Token) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedToken) }

// AccessToken is an opaque oauth access_token.  Its expiration is computed
// once, when the token is issued, and is never re-derived.
type AccessToken struct {
	Token
	expiresAt time.Time
}

// NewAccessToken creates an AccessToken which expires expiresIn after
// issuedAt.  A zero expiresIn means the provider didn't report a lifetime and
// the token has no known expiration.
func NewAccessToken(code string, scopes []string, expiresIn time.Duration, issuedAt time.Time) (*AccessToken, error) {
	const op = "oidc.NewAccessToken"
	if expiresIn < 0 {
		return nil, fmt.Errorf("%s: expires in is negative: %w", op, ErrInvalidParameter)
	}
	t, err := NewToken(code, scopes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	at := &AccessToken{Token: *t}
	if expiresIn > 0 {
		at.expiresAt = issuedAt.Add(expiresIn)
	}
	return at, nil
}

// ExpiresAt returns the expiration, or the zero time when it's unknown.
func (t *AccessToken) ExpiresAt() time.Time { return t.expiresAt }

// IsExpired reports whether the token is expired at now.
func (t *AccessToken) IsExpired(now time.Time) bool {
	if t.expiresAt.IsZero() {
		return false
	}
	return !now.Before(t.expiresAt)
}

// OAuth2Token converts the token for use with golang.org/x/oauth2 based
// clients.
func (t *AccessToken) OAuth2Token() *oauth2.Token {
	ot := &oauth2.Token{
		AccessToken: t.code,
		TokenType:   "Bearer",
		Expiry:      t.expiresAt,
	}
	return ot.WithExtra(map[string]interface{}{"scope": strings.Join(t.scopes, " ")})
}

// String will redact the token
func (t *AccessToken) String() string { return RedactedAccessToken }

// MarshalJSON will redact the token
func (t *AccessToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedAccessToken) }
