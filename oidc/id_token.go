// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/polenumerique/oasis/jwt"
)

// RedactedIdToken is the redacted string or json for an oidc id_token
const RedactedIdToken = "[REDACTED: id_token]"

// Application defined claims carried by the ID Token.
const (
	AppAdminClaim = "app_admin"
	AppUserClaim  = "app_user"
	AuthTimeClaim = "auth_time"
)

// IDToken is a verified oidc id_token.  It keeps the encoded token, which is
// needed later as an id_token_hint.
type IDToken struct {
	code   string
	claims *jwt.Claims
}

// NewIDToken wraps a verified token and its claims.
func NewIDToken(code string, claims *jwt.Claims) (*IDToken, error) {
	const op = "oidc.NewIDToken"
	switch {
	case code == "":
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	case claims == nil:
		return nil, fmt.Errorf("%s: claims are nil: %w", op, ErrNilParameter)
	}
	return &IDToken{code: code, claims: claims}, nil
}

// Code returns the encoded token.
func (t *IDToken) Code() string { return t.code }

// Claims returns every claim of the token.
func (t *IDToken) Claims() *jwt.Claims { return t.claims }

func (t *IDToken) Issuer() string            { return t.claims.Issuer() }
func (t *IDToken) Subject() string           { return t.claims.Subject() }
func (t *IDToken) Audience() []string        { return t.claims.Audience() }
func (t *IDToken) ExpirationTime() time.Time { return t.claims.ExpirationTime() }
func (t *IDToken) IssuedAt() time.Time       { return t.claims.IssuedAt() }
func (t *IDToken) AuthTime() time.Time       { return t.claims.Time(AuthTimeClaim) }
func (t *IDToken) Nonce() string             { return t.claims.String(jwt.NonceClaim) }
func (t *IDToken) AuthorizedParty() string   { return t.claims.String(jwt.AuthorizedPartyClaim) }
func (t *IDToken) IsAppAdmin() bool          { return t.claims.Bool(AppAdminClaim) }
func (t *IDToken) IsAppUser() bool           { return t.claims.Bool(AppUserClaim) }

// String will redact the token
func (t *IDToken) String() string { return RedactedIdToken }

// MarshalJSON will redact the token
func (t *IDToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedIdToken) }
