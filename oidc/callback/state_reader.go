// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a StateReader when no authorization is pending
// for a state.
var ErrNotFound = errors.New("pending authorization not found")

// PendingAuthorization is what an oidc.AuthorizationRequest returned and was
// kept (in the user's session, for instance) until the provider redirects
// back to the callback.
type PendingAuthorization struct {
	// State is the serialized state of the oidc.AuthorizationURL
	State string

	// Nonce is the nonce of the oidc.AuthorizationURL
	Nonce string

	// RedirectURL is the redirect_uri of the authorization request, when it
	// wasn't the client's default.
	RedirectURL string
}

// StateReader defines an interface for finding and reading a
// PendingAuthorization.  Implementations must be concurrently safe, since the
// reader will likely be used within a concurrent http.Handler
type StateReader interface {
	// Read the authorization pending for state.  It returns an error
	// wrapping ErrNotFound when there's none.
	Read(ctx context.Context, state string) (*PendingAuthorization, error)
}

// SingleStateReader implements the StateReader interface for a single
// pending authorization.  It is concurrently safe.
type SingleStateReader struct {
	Pending PendingAuthorization
}

// Read will return its pending authorization if the state matches, otherwise
// it returns an error wrapping ErrNotFound.
func (s *SingleStateReader) Read(_ context.Context, state string) (*PendingAuthorization, error) {
	const op = "SingleStateReader.Read"
	if state == "" || s.Pending.State != state {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	p := s.Pending
	return &p, nil
}
