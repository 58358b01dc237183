// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polenumerique/oasis/jwt"
	"github.com/polenumerique/oasis/oidc"
)

type testErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// testSuccessFn is a test SuccessResponseFunc
func testSuccessFn(state string, r *oidc.ExchangeResult, w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fmt.Sprintf("login successful: %v", r.State)))
}

// testFailFn is a test ErrorResponseFunc
func testFailFn(state string, r *oidc.AuthorizationResponseError, e error, w http.ResponseWriter, req *http.Request) {
	if e != nil {
		w.WriteHeader(http.StatusInternalServerError)
		j, _ := json.Marshal(&testErrorResponse{
			Error:       "internal-callback-error",
			Description: e.Error(),
		})
		_, _ = w.Write(j)
		return
	}
	if r != nil {
		w.WriteHeader(http.StatusUnauthorized)
		j, _ := json.Marshal(&testErrorResponse{
			Error:       r.Code,
			Description: r.Description,
		})
		_, _ = w.Write(j)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	j, _ := json.Marshal(&testErrorResponse{
		Error: "unknown-callback-error",
	})
	_, _ = w.Write(j)
}

// testNilStateReader is a StateReader which never finds anything and never
// fails either.
type testNilStateReader struct{}

func (*testNilStateReader) Read(context.Context, string) (*PendingAuthorization, error) {
	return nil, nil
}

// testNewClient creates a new Client for the TestProvider (tp).
func testNewClient(t *testing.T, tp *oidc.TestProvider, redirectURL string) *oidc.Client {
	t.Helper()
	require := require.New(t)
	clientID, clientSecret := tp.ClientCreds()
	cfg, err := oidc.NewConfig(
		clientID,
		oidc.ClientSecret(clientSecret),
		tp.ProviderConfig(),
		oidc.WithDefaultRedirectURL(redirectURL),
		oidc.WithSupportedSigningAlgs(jwt.ES256),
		oidc.WithProviderCA(tp.CACert()),
	)
	require.NoError(err)
	c, err := oidc.NewClient(cfg)
	require.NoError(err)
	return c
}
