// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"fmt"
	"net/url"
)

// LogoutRequest builds the URL of the provider's end session endpoint.  See:
// https://openid.net/specs/openid-connect-rpinitiated-1_0.html
type LogoutRequest struct {
	client *Client
	opts   logoutOptions
}

// LogoutRequest creates a builder for the logout URL.
//
// Supported options: WithIDToken, WithIDTokenHint, WithPostLogoutRedirectURL,
// WithLogoutState
func (c *Client) LogoutRequest(opt ...Option) *LogoutRequest {
	opts := getLogoutOpts(opt...)
	if opts.withPostLogoutRedirectURL == "" {
		opts.withPostLogoutRedirectURL = c.config.DefaultPostLogoutRedirectURL
	}
	return &LogoutRequest{client: c, opts: opts}
}

// BuildURL returns the logout URL.  Nothing is sent to the provider.
func (r *LogoutRequest) BuildURL() (string, error) {
	const op = "LogoutRequest.BuildURL"
	endpoint := r.client.config.Provider.EndSessionEndpoint
	switch {
	case r.opts.withIDTokenHint == "":
		return "", fmt.Errorf("%s: id_token hint is empty: %w", op, ErrInvalidParameter)
	case endpoint == "":
		return "", fmt.Errorf("%s: provider has no end session endpoint: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%s: end session endpoint is invalid: %w: %w", op, ErrInvalidParameter, err)
	}
	q := u.Query()
	q.Set("id_token_hint", r.opts.withIDTokenHint)
	if r.opts.withPostLogoutRedirectURL != "" {
		q.Set("post_logout_redirect_uri", r.opts.withPostLogoutRedirectURL)
	}
	if r.opts.withState != "" {
		q.Set("state", r.opts.withState)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// logoutOptions is the set of available options for a LogoutRequest
type logoutOptions struct {
	withIDTokenHint           string
	withPostLogoutRedirectURL string
	withState                 string
}

// logoutDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func logoutDefaults() logoutOptions {
	return logoutOptions{}
}

// getLogoutOpts gets the defaults and applies the opt overrides passed in.
func getLogoutOpts(opt ...Option) logoutOptions {
	opts := logoutDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithIDToken provides the id_token previously issued to the user as the
// "id_token_hint".
//
// Valid for: LogoutRequest
func WithIDToken(t *IDToken) Option {
	return func(o interface{}) {
		if o, ok := o.(*logoutOptions); ok && t != nil {
			o.withIDTokenHint = t.Code()
		}
	}
}

// WithPostLogoutRedirectURL provides the "post_logout_redirect_uri",
// overriding the Config.DefaultPostLogoutRedirectURL.
//
// Valid for: LogoutRequest
func WithPostLogoutRedirectURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*logoutOptions); ok {
			o.withPostLogoutRedirectURL = u
		}
	}
}

// WithLogoutState provides the "state" sent back to the post logout redirect
// URL.
//
// Valid for: LogoutRequest
func WithLogoutState(state string) Option {
	return func(o interface{}) {
		if o, ok := o.(*logoutOptions); ok {
			o.withState = state
		}
	}
}
