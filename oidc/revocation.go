// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

// RevocationRequest revokes a token at the provider's revocation endpoint.
// See: https://tools.ietf.org/html/rfc7009
type RevocationRequest struct {
	client *Client
	token  string
}

// RevocationRequest creates a builder for the revocation request.
//
// Supported options: WithToken, WithTokenCode
func (c *Client) RevocationRequest(opt ...Option) *RevocationRequest {
	opts := getRevocationOpts(opt...)
	return &RevocationRequest{client: c, token: opts.withToken}
}

// Execute revokes the token.  An error answer from the provider is reported
// with a *TokenResponseError.
func (r *RevocationRequest) Execute(ctx context.Context) error {
	const op = "RevocationRequest.Execute"
	endpoint := r.client.config.Provider.RevocationEndpoint
	switch {
	case r.token == "":
		return fmt.Errorf("%s: token is empty: %w", op, ErrInvalidParameter)
	case endpoint == "":
		return fmt.Errorf("%s: provider has no revocation endpoint: %w", op, ErrInvalidParameter)
	}

	r.client.logger.Debug("revoking token", "endpoint", endpoint)
	resp, err := r.client.http.Post(ctx, endpoint, sdkhttp.RequestOptions{
		Params: url.Values{"token": {r.token}},
		Auth:   r.client.basicAuth(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrEndpointUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = resp.JSON(&e)
		r.client.logger.Warn("revocation endpoint returned an error", "status", resp.StatusCode, "error", e.Error)
		return fmt.Errorf("%s: %w", op, &TokenResponseError{
			StatusCode:  resp.StatusCode,
			Code:        e.Error,
			Description: e.ErrorDescription,
		})
	}
	return nil
}

// revocationOptions is the set of available options for a RevocationRequest
type revocationOptions struct {
	withToken string
}

// revocationDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func revocationDefaults() revocationOptions {
	return revocationOptions{}
}

// getRevocationOpts gets the defaults and applies the opt overrides passed
// in.
func getRevocationOpts(opt ...Option) revocationOptions {
	opts := revocationDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithToken provides the token to revoke.  An *AccessToken can be given with
// &at.Token.
//
// Valid for: RevocationRequest
func WithToken(t *Token) Option {
	return func(o interface{}) {
		if o, ok := o.(*revocationOptions); ok && t != nil {
			o.withToken = t.Code()
		}
	}
}

// WithTokenCode provides the raw token to revoke.
//
// Valid for: RevocationRequest
func WithTokenCode(code string) Option {
	return func(o interface{}) {
		if o, ok := o.(*revocationOptions); ok {
			o.withToken = code
		}
	}
}
