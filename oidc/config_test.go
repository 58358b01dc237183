// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polenumerique/oasis/jwt"
)

func testProviderConfig() ProviderConfig {
	return ProviderConfig{
		Issuer:                "https://YOUR_ISSUER/",
		AuthorizationEndpoint: "https://YOUR_ISSUER/authorize",
		TokenEndpoint:         "https://YOUR_ISSUER/token",
		JWKSURL:               "https://YOUR_ISSUER/jwks",
	}
}

func TestClientSecret_String(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert := assert.New(t)
		const want = RedactedClientSecret
		secret := ClientSecret("bob's phone number")
		assert.Equalf(want, secret.String(), "ClientSecret.String() = %v, want %v", secret.String(), want)
		assert.Equal(want, fmt.Sprintf("%v", secret))
	})
}

func TestClientSecret_MarshalJSON(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		want := fmt.Sprintf(`{"secret":"%s"}`, RedactedClientSecret)
		got, err := json.Marshal(struct {
			Secret ClientSecret `json:"secret"`
		}{"bob's phone number"})
		require.NoError(err)
		assert.Equalf(want, string(got), "json.Marshal() = %s, want %s", got, want)
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCaPem := TestGenerateCA(t, []string{"localhost"})

	type args struct {
		clientID     string
		clientSecret ClientSecret
		provider     ProviderConfig
		opt          []Option
	}
	tests := []struct {
		name      string
		args      args
		want      *Config
		wantErr   bool
		wantIsErr error
	}{
		{
			name: "valid-with-all-valid-opts",
			args: args{
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				provider:     testProviderConfig(),
				opt: []Option{
					WithDefaultRedirectURL("https://YOUR_REDIRECT_URL"),
					WithDefaultPostLogoutRedirectURL("https://YOUR_LOGOUT_URL"),
					WithSupportedSigningAlgs(jwt.RS512, jwt.ES256),
					WithProviderCA(testCaPem),
				},
			},
			want: &Config{
				ClientID:                     "YOUR_CLIENT_ID",
				ClientSecret:                 "YOUR_CLIENT_SECRET",
				Provider:                     testProviderConfig(),
				DefaultRedirectURL:           "https://YOUR_REDIRECT_URL",
				DefaultPostLogoutRedirectURL: "https://YOUR_LOGOUT_URL",
				SupportedSigningAlgs:         []jwt.Alg{jwt.RS512, jwt.ES256},
				ProviderCA:                   testCaPem,
			},
		},
		{
			name: "valid-without-opts",
			args: args{
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				provider:     testProviderConfig(),
			},
			want: &Config{
				ClientID:     "YOUR_CLIENT_ID",
				ClientSecret: "YOUR_CLIENT_SECRET",
				Provider:     testProviderConfig(),
			},
		},
		{
			name: "empty-client-id",
			args: args{
				clientSecret: "YOUR_CLIENT_SECRET",
				provider:     testProviderConfig(),
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "empty-client-secret",
			args: args{
				clientID: "YOUR_CLIENT_ID",
				provider: testProviderConfig(),
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "empty-provider",
			args: args{
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "invalid-redirect",
			args: args{
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				provider:     testProviderConfig(),
				opt:          []Option{WithDefaultRedirectURL("not-a-url")},
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "invalid-post-logout-redirect",
			args: args{
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				provider:     testProviderConfig(),
				opt:          []Option{WithDefaultPostLogoutRedirectURL("ftp://example.com")},
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "unsupported-alg",
			args: args{
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				provider:     testProviderConfig(),
				opt:          []Option{WithSupportedSigningAlgs("HS256")},
			},
			wantErr:   true,
			wantIsErr: jwt.ErrUnsupportedAlg,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.args.clientID, tt.args.clientSecret, tt.args.provider, tt.args.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	t.Run("nil", func(t *testing.T) {
		var c *Config
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNilParameter))
	})
	t.Run("every-problem-reported", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c := &Config{DefaultRedirectURL: "nope"}
		err := c.Validate()
		require.Error(err)

		var merr *multierror.Error
		require.True(errors.As(err, &merr))
		// client id, client secret, provider and redirect URL
		assert.Len(merr.Errors, 4)
		assert.Contains(err.Error(), "client id is empty")
		assert.Contains(err.Error(), "client secret is empty")
		assert.Contains(err.Error(), "issuer is empty")
		assert.Contains(err.Error(), "default redirect URL")
	})
}

func TestConfig_HTTPClient(t *testing.T) {
	t.Parallel()
	testCaPem := TestGenerateCA(t, []string{"localhost"})
	tests := []struct {
		name      string
		ca        string
		wantErr   bool
		wantIsErr error
	}{
		{"system-roots", "", false, nil},
		{"custom-ca", testCaPem, false, nil},
		{"bad-ca", "not a pem", true, ErrInvalidCACert},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			c := &Config{ProviderCA: tt.ca}
			got, err := c.HTTPClient()
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.NotNil(got.HTTPClient())
		})
	}
}
