// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/polenumerique/oasis/jwt"
	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

// ExchangeCodeRequest handles the provider's redirect to the callback: it
// checks the callback parameters and exchanges the authorization code for
// tokens at the token endpoint.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#TokenRequest
type ExchangeCodeRequest struct {
	client *Client
	opts   exchangeOptions
}

// ExchangeResult holds the tokens returned by the token endpoint and the
// caller's opaque state given to the AuthorizationRequest.
type ExchangeResult struct {
	AccessToken *AccessToken

	// RefreshToken is nil when the provider didn't issue one.
	RefreshToken *Token

	IDToken *IDToken
	State   interface{}
}

// tokenResponse is the successful response of the token endpoint.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    json.Number `json:"expires_in"`
	IDToken      string      `json:"id_token"`
	RefreshToken string      `json:"refresh_token"`
	Scope        string      `json:"scope"`
}

// errorResponse is an OAuth error body. See:
// https://tools.ietf.org/html/rfc6749#section-5.2
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCodeRequest creates a builder for the code exchange.
//
// Supported options: WithCallbackQuery, WithCallbackQueryString,
// WithRedirectURL, WithExpectedState, WithNonce, WithTimeout, WithNow
func (c *Client) ExchangeCodeRequest(opt ...Option) *ExchangeCodeRequest {
	opts := getExchangeOpts(opt...)
	if opts.withRedirectURL == "" {
		opts.withRedirectURL = c.config.DefaultRedirectURL
	}
	if opts.withNowFunc == nil {
		opts.withNowFunc = c.now
	}
	return &ExchangeCodeRequest{client: c, opts: opts}
}

// Execute checks the callback parameters and exchanges the code.  Errors
// reported by the provider in the callback take priority over every other
// check, and nothing is sent to the provider unless the callback's state
// equals the expected state.
func (r *ExchangeCodeRequest) Execute(ctx context.Context) (*ExchangeResult, error) {
	const op = "ExchangeCodeRequest.Execute"
	params := r.opts.withCallbackQuery
	if reqErr := params.Get("error"); reqErr != "" {
		r.client.logger.Warn("provider returned an authorization error", "error", reqErr)
		return nil, fmt.Errorf("%s: %w", op, &AuthorizationResponseError{
			Code:        reqErr,
			Description: params.Get("error_description"),
		})
	}
	if r.opts.withCallbackQueryErr != nil {
		return nil, fmt.Errorf("%s: unable to parse callback query: %w: %w", op, ErrInvalidParameter, r.opts.withCallbackQueryErr)
	}

	code, state := params.Get("code"), params.Get("state")
	switch {
	case r.opts.withRedirectURL == "":
		return nil, fmt.Errorf("%s: redirect URL is empty: %w", op, ErrInvalidParameter)
	case code == "":
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	case r.opts.withExpectedState == "":
		return nil, fmt.Errorf("%s: expected state is empty: %w", op, ErrInvalidParameter)
	case r.opts.withNonce == "":
		return nil, fmt.Errorf("%s: expected nonce is empty: %w", op, ErrInvalidParameter)
	}
	if state != r.opts.withExpectedState {
		return nil, fmt.Errorf("%s: callback state doesn't match the expected state: %w", op, ErrResponseStateInvalid)
	}

	r.client.logger.Debug("exchanging authorization code", "endpoint", r.client.config.Provider.TokenEndpoint)
	resp, err := r.client.http.Post(ctx, r.client.config.Provider.TokenEndpoint, sdkhttp.RequestOptions{
		Params: url.Values{
			"grant_type":   {"authorization_code"},
			"code":         {code},
			"redirect_uri": {r.opts.withRedirectURL},
		},
		Auth:    r.client.basicAuth(),
		Timeout: r.opts.withTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrEndpointUnreachable, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		var e errorResponse
		_ = resp.JSON(&e)
		r.client.logger.Warn("token endpoint returned an error", "error", e.Error)
		return nil, fmt.Errorf("%s: %w", op, &TokenResponseError{
			StatusCode:  resp.StatusCode,
			Code:        e.Error,
			Description: e.ErrorDescription,
			State:       r.client.serializer.Unserialize(state),
		})
	default:
		return nil, fmt.Errorf("%s: token endpoint: %w [Status=%d]", op, ErrUnexpectedStatus, resp.StatusCode)
	}

	var tr tokenResponse
	if err := resp.JSON(&tr); err != nil {
		return nil, fmt.Errorf("%s: unable to decode token response: %w", op, err)
	}
	switch {
	case tr.AccessToken == "":
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAccessToken)
	case tr.IDToken == "":
		return nil, fmt.Errorf("%s: %w", op, ErrMissingIdToken)
	}

	claims, err := r.client.validator.Validate(ctx, tr.IDToken, jwt.IDTokenPolicy(), jwt.Expected{
		ClientID: r.client.config.ClientID,
		Issuer:   r.client.config.Provider.Issuer,
		Nonce:    r.opts.withNonce,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrIdTokenVerificationFailed, err)
	}
	idToken, err := NewIDToken(tr.IDToken, claims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var expiresIn int64
	if tr.ExpiresIn != "" {
		if expiresIn, err = tr.ExpiresIn.Int64(); err != nil || expiresIn < 0 {
			return nil, fmt.Errorf("%s: invalid expires_in %q: %w", op, tr.ExpiresIn, ErrTokenResponse)
		}
	}
	scopes := strings.Fields(tr.Scope)
	accessToken, err := NewAccessToken(tr.AccessToken, scopes, time.Duration(expiresIn)*time.Second, r.opts.withNowFunc())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := &ExchangeResult{
		AccessToken: accessToken,
		IDToken:     idToken,
		State:       r.client.serializer.Unserialize(state),
	}
	if tr.RefreshToken != "" {
		if result.RefreshToken, err = NewToken(tr.RefreshToken, scopes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return result, nil
}

func (c *Client) basicAuth() sdkhttp.Auth {
	return sdkhttp.BasicAuth{Username: c.config.ClientID, Password: string(c.config.ClientSecret)}
}

// exchangeOptions is the set of available options for an ExchangeCodeRequest
type exchangeOptions struct {
	withCallbackQuery    url.Values
	withCallbackQueryErr error
	withRedirectURL      string
	withExpectedState    string
	withNonce            string
	withTimeout          time.Duration
	withNowFunc          func() time.Time
}

// exchangeDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func exchangeDefaults() exchangeOptions {
	return exchangeOptions{
		withCallbackQuery: url.Values{},
	}
}

// getExchangeOpts gets the defaults and applies the opt overrides passed in.
func getExchangeOpts(opt ...Option) exchangeOptions {
	opts := exchangeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithCallbackQuery provides the query parameters of the request to the
// callback.
//
// Valid for: ExchangeCodeRequest
func WithCallbackQuery(q url.Values) Option {
	return func(o interface{}) {
		if o, ok := o.(*exchangeOptions); ok && q != nil {
			o.withCallbackQuery = q
			o.withCallbackQueryErr = nil
		}
	}
}

// WithCallbackQueryString provides the raw query string of the request to
// the callback.  A leading "?" is ignored.
//
// Valid for: ExchangeCodeRequest
func WithCallbackQueryString(q string) Option {
	return func(o interface{}) {
		if o, ok := o.(*exchangeOptions); ok {
			o.withCallbackQuery, o.withCallbackQueryErr = url.ParseQuery(strings.TrimPrefix(q, "?"))
		}
	}
}

// WithExpectedState provides the state returned by the AuthorizationRequest.
//
// Valid for: ExchangeCodeRequest
func WithExpectedState(state string) Option {
	return func(o interface{}) {
		if o, ok := o.(*exchangeOptions); ok {
			o.withExpectedState = state
		}
	}
}

// WithNonce provides the nonce returned by the AuthorizationRequest.
//
// Valid for: ExchangeCodeRequest
func WithNonce(nonce string) Option {
	return func(o interface{}) {
		if o, ok := o.(*exchangeOptions); ok {
			o.withNonce = nonce
		}
	}
}
