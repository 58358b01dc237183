// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevocationRequest_Execute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("refresh-and-access-tokens", func(t *testing.T) {
		t.Parallel()
		require := require.New(t)
		tp := StartTestProvider(t)
		c := testNewClient(t, tp)

		result, err := testExchange(ctx, t, c, tp, nil)
		require.NoError(err)
		require.NoError(c.RevocationRequest(WithToken(result.RefreshToken)).Execute(ctx))
		require.NoError(c.RevocationRequest(WithToken(&result.AccessToken.Token)).Execute(ctx))
		assert.Equal(t, []string{TestRefreshToken, TestAccessToken}, tp.Revoked())
	})

	tests := []struct {
		name        string
		setup       func(tp *TestProvider)
		token       string
		wantIsErr   error
		wantStatus  int
		wantCode    string
		wantRequest bool
	}{
		{
			name:      "empty-token",
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:        "provider-error",
			setup:       func(tp *TestProvider) { tp.SetRevocationError(http.StatusBadRequest, "unsupported_token_type", "nope") },
			token:       "some-token",
			wantIsErr:   ErrTokenResponse,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "unsupported_token_type",
			wantRequest: true,
		},
		{
			name:        "bad-client-secret",
			setup:       func(tp *TestProvider) { tp.SetClientCreds("test-client-id", "rotated-secret") },
			token:       "some-token",
			wantIsErr:   ErrTokenResponse,
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "invalid_client",
			wantRequest: true,
		},
		{
			name:        "server-error-without-body",
			setup:       func(tp *TestProvider) { tp.SetRevocationError(http.StatusServiceUnavailable, "", "") },
			token:       "some-token",
			wantIsErr:   ErrTokenResponse,
			wantStatus:  http.StatusServiceUnavailable,
			wantRequest: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			tp := StartTestProvider(t)
			c := testNewClient(t, tp)
			if tt.setup != nil {
				tt.setup(tp)
			}

			err := c.RevocationRequest(WithTokenCode(tt.token)).Execute(ctx)
			require.Error(err)
			assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
			assert.Empty(tp.Revoked())
			if !tt.wantRequest {
				assert.Equal(0, tp.RequestCount("/revoke"))
				return
			}
			var tokenErr *TokenResponseError
			require.True(errors.As(err, &tokenErr))
			assert.Equal(tt.wantStatus, tokenErr.StatusCode)
			assert.Equal(tt.wantCode, tokenErr.Code)
		})
	}

	t.Run("no-revocation-endpoint", func(t *testing.T) {
		t.Parallel()
		tp := StartTestProvider(t)
		cfg := testNewConfig(t, tp)
		cfg.Provider.RevocationEndpoint = ""
		c, err := NewClient(cfg)
		require.NoError(t, err)

		err = c.RevocationRequest(WithTokenCode("some-token")).Execute(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter))
	})
}

func Test_revocationOptions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	assert.Equal(revocationDefaults(), getRevocationOpts())

	tk, err := NewToken("refresh", nil)
	require.NoError(t, err)
	assert.Equal("refresh", getRevocationOpts(WithToken(tk)).withToken)
	assert.Equal("raw", getRevocationOpts(WithToken(tk), WithTokenCode("raw")).withToken)
	assert.Empty(getRevocationOpts(WithToken(nil)).withToken)
}
