// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutRequest_BuildURL(t *testing.T) {
	t.Parallel()
	tp := StartTestProvider(t)
	c := testNewClient(t, tp)
	idt := testIDToken(t, map[string]interface{}{"sub": "alice"})

	tests := []struct {
		name      string
		opt       []Option
		want      url.Values
		wantIsErr error
	}{
		{
			name: "defaults",
			opt:  []Option{WithIDToken(idt)},
			want: url.Values{
				"id_token_hint":            {idt.Code()},
				"post_logout_redirect_uri": {"https://example.com/bye"},
			},
		},
		{
			name: "all-options",
			opt: []Option{
				WithIDTokenHint("raw-id-token"),
				WithPostLogoutRedirectURL("https://example.com/see-you"),
				WithLogoutState("logout-state"),
			},
			want: url.Values{
				"id_token_hint":            {"raw-id-token"},
				"post_logout_redirect_uri": {"https://example.com/see-you"},
				"state":                    {"logout-state"},
			},
		},
		{
			name:      "missing-hint",
			opt:       []Option{WithLogoutState("logout-state")},
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:      "nil-id-token",
			opt:       []Option{WithIDToken(nil)},
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := c.LogoutRequest(tt.opt...).BuildURL()
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			u, err := url.Parse(got)
			require.NoError(err)
			assert.Equal(tp.ProviderConfig().EndSessionEndpoint, u.Scheme+"://"+u.Host+u.Path)
			assert.Equal(tt.want, u.Query())
		})
	}

	t.Run("no-post-logout-redirect", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		cfg := testNewConfig(t, tp)
		cfg.DefaultPostLogoutRedirectURL = ""
		noRedirect, err := NewClient(cfg)
		require.NoError(err)

		got, err := noRedirect.LogoutRequest(WithIDTokenHint("raw-id-token")).BuildURL()
		require.NoError(err)
		u, err := url.Parse(got)
		require.NoError(err)
		assert.Equal(url.Values{"id_token_hint": {"raw-id-token"}}, u.Query())
	})

	t.Run("no-end-session-endpoint", func(t *testing.T) {
		cfg := testNewConfig(t, tp)
		cfg.Provider.EndSessionEndpoint = ""
		noLogout, err := NewClient(cfg)
		require.NoError(t, err)

		_, err = noLogout.LogoutRequest(WithIDTokenHint("raw-id-token")).BuildURL()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter))
	})

	// building the URL doesn't call the provider
	assert.Equal(t, 0, tp.RequestCount("/logout"))
}
