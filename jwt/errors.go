// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import "errors"

var (
	ErrInvalidParameter       = errors.New("invalid parameter")
	ErrNilParameter           = errors.New("nil parameter")
	ErrUnsupportedAlg         = errors.New("unsupported signing algorithm")
	ErrMalformedToken         = errors.New("malformed token")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrInvalidIssuer          = errors.New("invalid issuer")
	ErrInvalidAudience        = errors.New("invalid audience")
	ErrExpiredToken           = errors.New("token is expired")
	ErrInvalidIssuedAt        = errors.New("invalid issued at (iat)")
	ErrMissingClaim           = errors.New("missing required claim")
	ErrInvalidNonce           = errors.New("invalid nonce")
	ErrInvalidAuthorizedParty = errors.New("invalid authorized party (azp)")
	ErrInvalidClaim           = errors.New("invalid claim value")
	ErrUnknownKeyID           = errors.New("unknown key id")
	ErrKeySetUnavailable      = errors.New("key set unavailable")
)
