// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		caPEM       string
		opts        []Option
		wantTimeout time.Duration
		wantErr     bool
		wantIsErr   error
	}{
		{
			name:        "defaults",
			wantTimeout: DefaultTimeout,
		},
		{
			name:        "with-timeout",
			opts:        []Option{WithTimeout(5 * time.Second)},
			wantTimeout: 5 * time.Second,
		},
		{
			name:        "zero-timeout",
			opts:        []Option{WithTimeout(0)},
			wantTimeout: DefaultTimeout,
		},
		{
			name:      "negative-timeout",
			opts:      []Option{WithTimeout(-1)},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:      "bad-ca",
			caPEM:     "not a pem",
			wantErr:   true,
			wantIsErr: ErrInvalidCertificatePem,
		},
		{
			name:      "ca-with-http-client",
			caPEM:     "not a pem",
			opts:      []Option{WithHTTPClient(&http.Client{})},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := NewClient(tt.caPEM, tt.opts...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.Equal(tt.wantTimeout, got.defaultTimeout)
			assert.NotNil(got.HTTPClient())
		})
	}
}

func TestClient_Get(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authorization":"` + r.Header.Get("Authorization") + `","q":"` + r.URL.Query().Get("q") + `","accept":"` + r.Header.Get("Accept") + `"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient("")
	require.NoError(t, err)

	t.Run("bearer", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		resp, err := c.Get(context.Background(), srv.URL+"/?a=b", RequestOptions{
			Params:  url.Values{"q": []string{"v"}},
			Auth:    BearerAuth{Token: "AT"},
			Headers: map[string]string{"Accept": "application/jwt"},
		})
		require.NoError(err)
		assert.Equal(http.StatusOK, resp.StatusCode)
		var got map[string]string
		require.NoError(resp.JSON(&got))
		assert.Equal("Bearer AT", got["authorization"])
		assert.Equal("v", got["q"])
		assert.Equal("application/jwt", got["accept"])
		assert.Equal(`Bearer error="invalid_token"`, resp.GetHeader("www-authenticate"))
	})
	t.Run("empty-bearer", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := c.Get(context.Background(), srv.URL, RequestOptions{Auth: BearerAuth{}})
		require.Error(err)
		assert.True(errors.Is(err, ErrInvalidParameter))
	})
}

func TestClient_Post(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.FormValue("grant_type") != "authorization_code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient("")
	require.NoError(t, err)

	tests := []struct {
		name       string
		auth       Auth
		params     url.Values
		wantStatus int
	}{
		{
			name:       "valid",
			auth:       BasicAuth{Username: "client", Password: "secret"},
			params:     url.Values{"grant_type": []string{"authorization_code"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong-password",
			auth:       BasicAuth{Username: "client", Password: "nope"},
			params:     url.Values{"grant_type": []string{"authorization_code"}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing-grant",
			auth:       BasicAuth{Username: "client", Password: "secret"},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			resp, err := c.Post(context.Background(), srv.URL, RequestOptions{Auth: tt.auth, Params: tt.params})
			require.NoError(err)
			assert.Equal(tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewClient("")
	require.NoError(err)
	_, err = c.Post(context.Background(), srv.URL, RequestOptions{Timeout: 50 * time.Millisecond})
	require.Error(err)
	assert.Truef(errors.Is(err, ErrTransport), "wanted \"%s\" but got \"%s\"", ErrTransport, err)
	assert.True(errors.Is(err, context.DeadlineExceeded))
}

func TestClient_MaxResponseSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		size      int
		wantIsErr error
	}{
		{name: "at-limit", size: MaxResponseSize},
		{name: "over-limit", size: MaxResponseSize + 1, wantIsErr: ErrResponseTooLarge},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(make([]byte, tt.size))
			}))
			t.Cleanup(srv.Close)

			c, err := NewClient("")
			require.NoError(err)
			got, err := c.Get(context.Background(), srv.URL, RequestOptions{})
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.Nil(got)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.Len(got.Body, tt.size)
		})
	}
}
