// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Auth is an authentication scheme applied to outgoing requests.
type Auth interface {
	apply(req *http.Request) error
}

// BasicAuth authenticates with HTTP Basic credentials, typically the client
// id and secret.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) apply(req *http.Request) error {
	if a.Username == "" {
		return fmt.Errorf("basic auth username is empty: %w", ErrInvalidParameter)
	}
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// BearerAuth authenticates with an OAuth2 bearer access token.
type BearerAuth struct {
	Token string
}

func (a BearerAuth) apply(req *http.Request) error {
	if a.Token == "" {
		return fmt.Errorf("bearer token is empty: %w", ErrInvalidParameter)
	}
	// an empty TokenType is sent as "Bearer"
	(&oauth2.Token{AccessToken: a.Token}).SetAuthHeader(req)
	return nil
}
