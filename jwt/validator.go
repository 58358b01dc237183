// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/polenumerique/oasis/internal/strutils"
)

// DefaultClockSkew is the leeway applied to both the "exp" and "iat" checks.
const DefaultClockSkew = 10 * time.Second

// Policy selects which checks Validate applies on top of the conditional
// issuer, audience, expiration and issued at checks every token gets.
type Policy struct {
	// RequiredClaims must be present (and not empty) in the token.
	RequiredClaims []string

	// EnforceNonce requires the "nonce" claim to equal Expected.Nonce.
	EnforceNonce bool

	// EnforceAuthorizedParty requires the "azp" claim to equal
	// Expected.ClientID when the token has more than one audience.
	EnforceAuthorizedParty bool
}

// IDTokenPolicy returns the Policy for ID Tokens.
func IDTokenPolicy() Policy {
	return Policy{
		RequiredClaims:         []string{IssuerClaim, SubjectClaim, AudienceClaim, ExpirationClaim, IssuedAtClaim},
		EnforceNonce:           true,
		EnforceAuthorizedParty: true,
	}
}

// UserInfoPolicy returns the Policy for signed UserInfo responses, which only
// gets the conditional checks.
func UserInfoPolicy() Policy {
	return Policy{}
}

// Expected defines the expected claims values to assert when validating a
// JWT.
type Expected struct {
	// ClientID must be among the "aud" claim values when that claim is
	// present.  Required.
	ClientID string

	// Issuer must equal the "iss" claim when that claim is present.
	Issuer string

	// Nonce must equal the "nonce" claim when the policy enforces it.
	Nonce string
}

// Validator validates JSON Web Tokens (JWT) by providing signature
// verification and claims set validation.
type Validator struct {
	keySet        KeySet
	now           func() time.Time
	skew          time.Duration
	supportedAlgs []Alg
}

// NewValidator returns a Validator that uses the given KeySet to verify JWT
// signatures.
//
// Supported options: WithNow, WithClockSkew, WithSupportedSigningAlgorithms
func NewValidator(keySet KeySet, opt ...Option) (*Validator, error) {
	const op = "jwt.NewValidator"
	if keySet == nil {
		return nil, fmt.Errorf("%s: key set is nil: %w", op, ErrNilParameter)
	}
	opts := getValidatorOpts(opt...)
	if err := SupportedSigningAlgorithm(opts.withSupportedAlgs...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Validator{
		keySet:        keySet,
		now:           opts.withNowFunc,
		skew:          opts.withClockSkew,
		supportedAlgs: opts.withSupportedAlgs,
	}, nil
}

// Validate verifies the signature of the token and applies the policy.  The
// claims are only returned when every check passed.
func (v *Validator) Validate(ctx context.Context, token string, p Policy, expected Expected) (*Claims, error) {
	const op = "Validator.Validate"
	switch {
	case expected.ClientID == "":
		return nil, fmt.Errorf("%s: expected client id is empty: %w", op, ErrInvalidParameter)
	case p.EnforceNonce && expected.Nonce == "":
		return nil, fmt.Errorf("%s: expected nonce is empty: %w", op, ErrInvalidParameter)
	}

	if err := validateSigningAlgorithm(token, v.supportedAlgs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payload, err := v.keySet.VerifySignature(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to verify signature: %w", op, err)
	}
	claims := NewClaims(payload)

	for _, name := range p.RequiredClaims {
		if !claims.Has(name) || claims.isEmpty(name) {
			return nil, fmt.Errorf("%s: %q: %w", op, name, ErrMissingClaim)
		}
	}

	if claims.Has(IssuerClaim) && claims.Issuer() != expected.Issuer {
		return nil, fmt.Errorf("%s: got %q, wanted %q: %w", op, claims.Issuer(), expected.Issuer, ErrInvalidIssuer)
	}

	aud, err := claims.stringsValue(AudienceClaim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Has(AudienceClaim) && !strutils.StrListContains(aud, expected.ClientID) {
		return nil, fmt.Errorf("%s: %q not in %q: %w", op, expected.ClientID, aud, ErrInvalidAudience)
	}

	// the clock is read at the one second resolution of NumericDate, the
	// claims keep their fractions
	now := time.Unix(v.now().Unix(), 0)
	if claims.Has(ExpirationClaim) {
		exp, err := numericTime(claims.claims[ExpirationClaim])
		if err != nil {
			return nil, fmt.Errorf("%s: %q: %w", op, ExpirationClaim, err)
		}
		if exp.Before(now.Add(-v.skew)) {
			return nil, fmt.Errorf("%s: expired at %s: %w", op, exp.UTC(), ErrExpiredToken)
		}
	}
	if claims.Has(IssuedAtClaim) {
		iat, err := numericTime(claims.claims[IssuedAtClaim])
		if err != nil {
			return nil, fmt.Errorf("%s: %q: %w", op, IssuedAtClaim, err)
		}
		if iat.After(now.Add(v.skew)) {
			return nil, fmt.Errorf("%s: issued in the future at %s: %w", op, iat.UTC(), ErrInvalidIssuedAt)
		}
	}

	if p.EnforceNonce && claims.String(NonceClaim) != expected.Nonce {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidNonce)
	}
	if p.EnforceAuthorizedParty && len(aud) > 1 && claims.String(AuthorizedPartyClaim) != expected.ClientID {
		return nil, fmt.Errorf("%s: multiple audiences and azp %q is not %q: %w", op, claims.String(AuthorizedPartyClaim), expected.ClientID, ErrInvalidAuthorizedParty)
	}
	return claims, nil
}

// validateSigningAlgorithm checks whether the JWS algorithm value (alg) in the header
// of the given JWT is one of the given expected algorithms.
func validateSigningAlgorithm(token string, expectedAlgorithms []Alg) error {
	parsed, err := parseSigned(token)
	if err != nil {
		return err
	}
	alg := Alg(parsed.Headers[0].Algorithm)
	for _, a := range expectedAlgorithms {
		if a == alg {
			return nil
		}
	}
	return fmt.Errorf("token signed with %q, wanted one of %q: %w", alg, expectedAlgorithms, ErrUnsupportedAlg)
}
