// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/polenumerique/oasis/jwt"
	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

// defaultUserInfoErrorMessage is used when the WWW-Authenticate header has
// no error.
const defaultUserInfoErrorMessage = "Error while trying to get User information"

var wwwAuthenticateError = regexp.MustCompile(`error="(.*?)"`)

// UserInfoRequest fetches the signed claims of the user from the provider's
// userinfo endpoint.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#UserInfo
type UserInfoRequest struct {
	client *Client
	opts   userInfoOptions
}

// UserInfoRequest creates a builder for the userinfo request.
//
// Supported options: WithAccessToken, WithAccessTokenCode
func (c *Client) UserInfoRequest(opt ...Option) *UserInfoRequest {
	return &UserInfoRequest{client: c, opts: getUserInfoOpts(opt...)}
}

// Execute fetches and validates the user's claims.  A rejected access token
// is reported with an *OAuthError.
func (r *UserInfoRequest) Execute(ctx context.Context) (*UserInfo, error) {
	const op = "UserInfoRequest.Execute"
	endpoint := r.client.config.Provider.UserInfoEndpoint
	switch {
	case r.opts.withAccessToken == "":
		return nil, fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	case endpoint == "":
		return nil, fmt.Errorf("%s: provider has no userinfo endpoint: %w", op, ErrInvalidParameter)
	}

	r.client.logger.Debug("requesting userinfo", "endpoint", endpoint)
	resp, err := r.client.http.Get(ctx, endpoint, sdkhttp.RequestOptions{
		Auth:    sdkhttp.BearerAuth{Token: r.opts.withAccessToken},
		Headers: map[string]string{"Accept": "application/jwt"},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrEndpointUnreachable, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		msg := defaultUserInfoErrorMessage
		if m := wwwAuthenticateError.FindStringSubmatch(resp.GetHeader("WWW-Authenticate")); m != nil {
			msg = m[1]
		}
		r.client.logger.Warn("userinfo endpoint rejected the access token", "status", resp.StatusCode, "error", msg)
		return nil, fmt.Errorf("%s: %w", op, &OAuthError{StatusCode: resp.StatusCode, Message: msg})
	default:
		return nil, fmt.Errorf("%s: userinfo endpoint: %w [Status=%d]", op, ErrUnexpectedStatus, resp.StatusCode)
	}

	claims, err := r.client.validator.Validate(ctx, string(resp.Body), jwt.UserInfoPolicy(), jwt.Expected{
		ClientID: r.client.config.ClientID,
		Issuer:   r.client.config.Provider.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUserInfoVerificationFailed, err)
	}
	return NewUserInfo(claims), nil
}

// userInfoOptions is the set of available options for a UserInfoRequest
type userInfoOptions struct {
	withAccessToken string
}

// userInfoDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func userInfoDefaults() userInfoOptions {
	return userInfoOptions{}
}

// getUserInfoOpts gets the defaults and applies the opt overrides passed in.
func getUserInfoOpts(opt ...Option) userInfoOptions {
	opts := userInfoDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithAccessToken provides the access token sent as a Bearer token.
//
// Valid for: UserInfoRequest
func WithAccessToken(t *AccessToken) Option {
	return func(o interface{}) {
		if o, ok := o.(*userInfoOptions); ok && t != nil {
			o.withAccessToken = t.Code()
		}
	}
}

// WithAccessTokenCode provides the raw access token sent as a Bearer token.
//
// Valid for: UserInfoRequest
func WithAccessTokenCode(code string) Option {
	return func(o interface{}) {
		if o, ok := o.(*userInfoOptions); ok {
			o.withAccessToken = code
		}
	}
}
