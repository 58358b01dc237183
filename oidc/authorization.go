// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/text/language"

	"github.com/polenumerique/oasis/internal/strutils"
)

// AuthorizationRequest builds the URL of the provider's authorization
// endpoint which starts the authorization code flow.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthRequest
type AuthorizationRequest struct {
	client *Client
	opts   authorizationOptions
}

// AuthorizationURL is the result of an AuthorizationRequest.  State and
// Nonce must be kept (in the user's session, for instance) until the
// provider redirects back, as they're needed by the ExchangeCodeRequest.
type AuthorizationURL struct {
	URL   string
	State string
	Nonce string
}

// AuthorizationRequest creates a builder for the authorization URL.  It
// returns an error when the prompts can't be combined.
//
// Supported options: WithRedirectURL, WithScopes, WithPrompts, WithMaxAge,
// WithIDTokenHint, WithUILocales, WithState
func (c *Client) AuthorizationRequest(opt ...Option) (*AuthorizationRequest, error) {
	const op = "Client.AuthorizationRequest"
	opts := getAuthorizationOpts(opt...)
	if ok, reason := validPrompts(opts.withPrompts); !ok {
		return nil, fmt.Errorf("%s: %s: %w", op, reason, ErrInvalidParameter)
	}
	if opts.withRedirectURL == "" {
		opts.withRedirectURL = c.config.DefaultRedirectURL
	}
	return &AuthorizationRequest{client: c, opts: opts}, nil
}

// BuildURL returns the authorization URL.  A fresh nonce and state padding
// are generated by every call.
func (r *AuthorizationRequest) BuildURL() (*AuthorizationURL, error) {
	const op = "AuthorizationRequest.BuildURL"
	if r.opts.withRedirectURL == "" {
		return nil, fmt.Errorf("%s: redirect URL is empty: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(r.client.config.Provider.AuthorizationEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: authorization endpoint is invalid: %w: %w", op, ErrInvalidParameter, err)
	}

	nonce, err := NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate nonce: %w", op, err)
	}
	padding, err := NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate state: %w", op, err)
	}
	state, err := r.client.serializer.Serialize(r.opts.withState, padding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := u.Query()
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("scope", strings.Join(r.opts.withScopes, " "))
	set("response_type", "code")
	set("client_id", r.client.config.ClientID)
	set("redirect_uri", r.opts.withRedirectURL)
	set("state", state)
	set("nonce", nonce)
	prompts := make([]string, 0, len(r.opts.withPrompts))
	for _, p := range r.opts.withPrompts {
		prompts = append(prompts, string(p))
	}
	set("prompt", strings.Join(prompts, " "))
	if r.opts.withMaxAge != nil {
		set("max_age", strconv.FormatUint(uint64(r.opts.withMaxAge.seconds), 10))
	}
	set("id_token_hint", r.opts.withIDTokenHint)
	locales := make([]string, 0, len(r.opts.withUILocales))
	for _, l := range r.opts.withUILocales {
		locales = append(locales, l.String())
	}
	set("ui_locales", strings.Join(locales, " "))
	u.RawQuery = q.Encode()

	r.client.logger.Debug("built authorization url", "redirect_uri", r.opts.withRedirectURL, "scopes", r.opts.withScopes)
	return &AuthorizationURL{
		URL:   u.String(),
		State: state,
		Nonce: nonce,
	}, nil
}

// maxAge defines a "max_age" parameter
type maxAge struct {
	seconds uint
}

// authorizationOptions is the set of available options for an
// AuthorizationRequest
type authorizationOptions struct {
	withRedirectURL string
	withScopes      []string
	withPrompts     []Prompt
	withMaxAge      *maxAge
	withIDTokenHint string
	withUILocales   []language.Tag
	withState       interface{}
}

// authorizationDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func authorizationDefaults() authorizationOptions {
	return authorizationOptions{
		withScopes: []string{gooidc.ScopeOpenID},
	}
}

// getAuthorizationOpts gets the defaults and applies the opt overrides passed
// in.
func getAuthorizationOpts(opt ...Option) authorizationOptions {
	opts := authorizationDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithScopes provides the scopes requested, replacing the default "openid"
// scope.  Duplicates are removed.
//
// Valid for: AuthorizationRequest
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*authorizationOptions); ok && len(scopes) > 0 {
			o.withScopes = strutils.RemoveDuplicatesStable(scopes, false)
		}
	}
}

// WithPrompts provides the "prompt" values.  "none" can only be used alone.
//
// Valid for: AuthorizationRequest
func WithPrompts(prompts ...Prompt) Option {
	return func(o interface{}) {
		if o, ok := o.(*authorizationOptions); ok {
			ps := make([]string, 0, len(prompts))
			for _, p := range prompts {
				ps = append(ps, string(p))
			}
			ps = strutils.RemoveDuplicatesStable(ps, false)
			o.withPrompts = make([]Prompt, 0, len(ps))
			for _, p := range ps {
				o.withPrompts = append(o.withPrompts, Prompt(p))
			}
		}
	}
}

// WithMaxAge provides the "max_age" parameter: the allowable elapsed time in
// seconds since the last time the user was actively authenticated by the
// provider.  Zero is a valid value.
//
// Valid for: AuthorizationRequest
func WithMaxAge(seconds uint) Option {
	return func(o interface{}) {
		if o, ok := o.(*authorizationOptions); ok {
			o.withMaxAge = &maxAge{seconds: seconds}
		}
	}
}

// WithUILocales provides the preferred languages for the provider's UI.
//
// Valid for: AuthorizationRequest
func WithUILocales(locales ...language.Tag) Option {
	return func(o interface{}) {
		if o, ok := o.(*authorizationOptions); ok {
			o.withUILocales = locales
		}
	}
}

// WithState provides the caller's opaque state.  It must be JSON serializable
// and is returned by the ExchangeCodeRequest.
//
// Valid for: AuthorizationRequest
func WithState(state interface{}) Option {
	return func(o interface{}) {
		if o, ok := o.(*authorizationOptions); ok {
			o.withState = state
		}
	}
}
