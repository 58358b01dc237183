// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"errors"
	"net/url"
	"testing"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestClient_AuthorizationRequest(t *testing.T) {
	t.Parallel()
	tp := StartTestProvider(t)
	c := testNewClient(t, tp)

	tests := []struct {
		name      string
		opt       []Option
		wantErr   bool
		wantIsErr error
	}{
		{"no-prompt", nil, false, nil},
		{"none-alone", []Option{WithPrompts(None)}, false, nil},
		{"none-duplicated", []Option{WithPrompts(None, None)}, false, nil},
		{"login-and-consent", []Option{WithPrompts(Login, Consent, SelectAccount)}, false, nil},
		{"none-and-login", []Option{WithPrompts(None, Login)}, true, ErrInvalidParameter},
		{"login-and-none", []Option{WithPrompts(Login, None)}, true, ErrInvalidParameter},
		{"unknown-prompt", []Option{WithPrompts("bogus")}, true, ErrInvalidParameter},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := c.AuthorizationRequest(tt.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				assert.Nil(got)
				return
			}
			require.NoError(err)
			assert.NotNil(got)
		})
	}
}

func TestAuthorizationRequest_BuildURL(t *testing.T) {
	t.Parallel()
	tp := StartTestProvider(t)
	c := testNewClient(t, tp)

	t.Run("all-options", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		req, err := c.AuthorizationRequest(
			WithRedirectURL("https://example.com/other-callback"),
			WithScopes("openid", "profile", "email", "profile"),
			WithPrompts(Login, Consent),
			WithMaxAge(0),
			WithIDTokenHint("previous-id-token"),
			WithUILocales(language.French, language.AmericanEnglish),
			WithState(map[string]interface{}{"return_to": "/home"}),
		)
		require.NoError(err)
		got, err := req.BuildURL()
		require.NoError(err)

		u, err := url.Parse(got.URL)
		require.NoError(err)
		assert.Equal(tp.ProviderConfig().AuthorizationEndpoint, u.Scheme+"://"+u.Host+u.Path)
		q := u.Query()
		assert.Equal("openid profile email", q.Get("scope"))
		assert.Equal("code", q.Get("response_type"))
		assert.Equal(c.Config().ClientID, q.Get("client_id"))
		assert.Equal("https://example.com/other-callback", q.Get("redirect_uri"))
		assert.Equal(got.State, q.Get("state"))
		assert.Equal(got.Nonce, q.Get("nonce"))
		assert.Equal("login consent", q.Get("prompt"))
		assert.Equal("0", q.Get("max_age"))
		assert.Equal("previous-id-token", q.Get("id_token_hint"))
		assert.Equal("fr en-US", q.Get("ui_locales"))

		assert.Equal(map[string]interface{}{"return_to": "/home"}, c.StateSerializer().Unserialize(got.State))
	})

	t.Run("defaults-omit-empty", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		req, err := c.AuthorizationRequest()
		require.NoError(err)
		got, err := req.BuildURL()
		require.NoError(err)

		u, err := url.Parse(got.URL)
		require.NoError(err)
		q := u.Query()
		assert.Equal(gooidc.ScopeOpenID, q.Get("scope"))
		assert.Equal(testRedirectURL, q.Get("redirect_uri"))
		for _, k := range []string{"prompt", "max_age", "id_token_hint", "ui_locales"} {
			_, ok := q[k]
			assert.Falsef(ok, "%s should be omitted", k)
		}
		assert.Nil(c.StateSerializer().Unserialize(got.State))
	})

	t.Run("fresh-nonce-and-state", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		req, err := c.AuthorizationRequest(WithState("same"))
		require.NoError(err)
		first, err := req.BuildURL()
		require.NoError(err)
		second, err := req.BuildURL()
		require.NoError(err)

		assert.NotEqual(first.Nonce, second.Nonce)
		assert.NotEqual(first.State, second.State)
		assert.NotEqual(first.URL, second.URL)
		assert.Equal("same", c.StateSerializer().Unserialize(first.State))
		assert.Equal("same", c.StateSerializer().Unserialize(second.State))
	})

	t.Run("endpoint-query-is-kept", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		cfg := testNewConfig(t, tp)
		cfg.Provider.AuthorizationEndpoint += "?tenant=acme"
		withQuery, err := NewClient(cfg)
		require.NoError(err)
		req, err := withQuery.AuthorizationRequest()
		require.NoError(err)
		got, err := req.BuildURL()
		require.NoError(err)

		u, err := url.Parse(got.URL)
		require.NoError(err)
		assert.Equal("acme", u.Query().Get("tenant"))
		assert.Equal("code", u.Query().Get("response_type"))
	})

	t.Run("missing-redirect", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		cfg := testNewConfig(t, tp)
		cfg.DefaultRedirectURL = ""
		noRedirect, err := NewClient(cfg)
		require.NoError(err)
		req, err := noRedirect.AuthorizationRequest()
		require.NoError(err)
		_, err = req.BuildURL()
		require.Error(err)
		assert.True(errors.Is(err, ErrInvalidParameter))
	})

	t.Run("state-not-serializable", func(t *testing.T) {
		req, err := c.AuthorizationRequest(WithState(func() {}))
		require.NoError(t, err)
		_, err = req.BuildURL()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter))
	})
}

func Test_authorizationOptions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	opts := getAuthorizationOpts()
	assert.Equal(authorizationDefaults(), opts)
	assert.Equal([]string{gooidc.ScopeOpenID}, opts.withScopes)

	opts = getAuthorizationOpts(WithScopes())
	assert.Equal([]string{gooidc.ScopeOpenID}, opts.withScopes)

	opts = getAuthorizationOpts(WithPrompts(Login, "", Login, Consent))
	assert.Equal([]Prompt{Login, Consent}, opts.withPrompts)

	opts = getAuthorizationOpts(WithMaxAge(60))
	assert.Equal(&maxAge{seconds: 60}, opts.withMaxAge)

	// options for other builders are ignored
	opts = getAuthorizationOpts(WithNonce("nonce"), WithTimeout(1), WithLogoutState("s"))
	assert.Equal(authorizationDefaults(), opts)
}
