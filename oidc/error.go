// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter           = errors.New("invalid parameter")
	ErrNilParameter               = errors.New("nil parameter")
	ErrInvalidCACert              = errors.New("invalid CA certificate")
	ErrInvalidIssuer              = errors.New("invalid issuer")
	ErrIdGeneratorFailed          = errors.New("id generation failed")
	ErrResponseStateInvalid       = errors.New("oidc response state")
	ErrAuthorizationResponse      = errors.New("authorization response error")
	ErrTokenResponse              = errors.New("token response error")
	ErrOAuth                      = errors.New("oauth error")
	ErrMissingIdToken             = errors.New("id_token is missing")
	ErrMissingAccessToken         = errors.New("access_token is missing")
	ErrIdTokenVerificationFailed  = errors.New("id_token verification failed")
	ErrUserInfoVerificationFailed = errors.New("userinfo verification failed")
	ErrEndpointUnreachable        = errors.New("endpoint unreachable")
	ErrUnexpectedStatus           = errors.New("unexpected response status")
	ErrDiscoveryFailed            = errors.New("provider discovery failed")
	ErrMalformedHubSignature      = errors.New("malformed hub signature")
	ErrHubSignatureMismatch       = errors.New("hub signature mismatch")
)

// AuthorizationResponseError is returned when the provider redirects back to
// the callback with an error instead of an authorization code. See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthError
type AuthorizationResponseError struct {
	Code        string
	Description string
}

// Error implements the error interface.
func (e *AuthorizationResponseError) Error() string {
	return describe(ErrAuthorizationResponse, e.Code, e.Description)
}

// Is matches ErrAuthorizationResponse.
func (e *AuthorizationResponseError) Is(target error) bool {
	return target == ErrAuthorizationResponse
}

// TokenResponseError is returned when the token or revocation endpoint
// answers with an OAuth error body. See:
// https://tools.ietf.org/html/rfc6749#section-5.2
type TokenResponseError struct {
	StatusCode  int
	Code        string
	Description string

	// State is the caller's opaque state recovered from the callback, when
	// it's available.
	State interface{}
}

// Error implements the error interface.
func (e *TokenResponseError) Error() string {
	return fmt.Sprintf("%s [Status=%d]", describe(ErrTokenResponse, e.Code, e.Description), e.StatusCode)
}

// Is matches ErrTokenResponse.
func (e *TokenResponseError) Is(target error) bool {
	return target == ErrTokenResponse
}

// OAuthError is returned when a protected resource (the userinfo endpoint)
// rejects the access token.  Message is the error reported in the
// WWW-Authenticate header.
type OAuthError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	return fmt.Sprintf("%s: %s [Status=%d]", ErrOAuth, e.Message, e.StatusCode)
}

// Is matches ErrOAuth.
func (e *OAuthError) Is(target error) bool {
	return target == ErrOAuth
}

func describe(kind error, code, desc string) string {
	switch {
	case code == "" && desc == "":
		return kind.Error()
	case desc == "":
		return fmt.Sprintf("%s: %s", kind, code)
	default:
		return fmt.Sprintf("%s: %s: %s", kind, code, desc)
	}
}
