// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2"

	"github.com/polenumerique/oasis/internal/strutils"
)

const (
	// TestAccessToken is the access_token issued by the TestProvider.
	TestAccessToken = "test-access-token"

	// TestRefreshToken is the refresh_token issued by the TestProvider.
	TestRefreshToken = "test-refresh-token"

	// TestKeyID is the kid of the TestProvider's first signing key.
	TestKeyID = "test-kid"
)

// TestProvider is local server that supports test provider capabilities which
// make writing tests much easier.  It serves the discovery document and the
// authorize, token, userinfo, jwks and revocation endpoints.  Tokens are signed
// with ES256.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                  sync.Mutex
	keyID               string
	publicKey           string
	privateKey          string
	jwks                *jose.JSONWebKeySet
	allowedRedirectURIs []string
	replySubject        string
	replyScope          string
	replyUserInfo       map[string]interface{}
	clientID            string
	clientSecret        string
	expectedAuthCode    string
	expectedAuthNonce   string
	authNonce           string
	customClaims        map[string]interface{}
	customAudience      []string
	omitIDToken         bool
	tokenError          *testErrorReply
	userInfoError       *testErrorReply
	revocationError     *testErrorReply
	revoked             []string
	now                 func() time.Time
	requests            map[string]int
}

type testErrorReply struct {
	status      int
	code        string
	description string
}

// StartTestProvider creates a disposable TestProvider listening on a random
// port.  It's stopped when the test ends.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		allowedRedirectURIs: []string{"https://example.com/callback"},
		replySubject:        "alice@example.com",
		replyScope:          "openid",
		replyUserInfo: map[string]interface{}{
			"name":           "Alice Doe",
			"email":          "alice@example.com",
			"email_verified": true,
		},
		clientID:     "test-client-id",
		clientSecret: "test-client-secret",
		now:          time.Now,
		requests:     map[string]int{},
	}
	p.RotateSigningKey(t, TestKeyID)

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// SetClientCreds is for configuring the client information required for the
// OIDC workflows.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// ClientCreds returns the configured client id and secret.
func (p *TestProvider) ClientCreds() (clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clientID, p.clientSecret
}

// SetExpectedAuthCode configures the auth code to return from /authorize and
// the allowed auth code for /token.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetExpectedAuthNonce configures the nonce value required for /authorize and
// returned in the id_token.  Otherwise the nonce of the last /authorize
// request is used.
func (p *TestProvider) SetExpectedAuthNonce(nonce string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthNonce = nonce
}

// SetAllowedRedirectURIs allows you to configure the allowed redirect URIs for
// the OIDC workflow. If not configured a sample of
// "https://example.com/callback" is used.
func (p *TestProvider) SetAllowedRedirectURIs(uris []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowedRedirectURIs = uris
}

// SetCustomClaims lets you set claims to return in the id_token.  They're
// applied over the standard claims.
func (p *TestProvider) SetCustomClaims(customClaims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customClaims = customClaims
}

// SetCustomAudience configures what audience value to embed in the id_token.
func (p *TestProvider) SetCustomAudience(aud ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customAudience = aud
}

// SetReplyScope configures the scope returned by /token.
func (p *TestProvider) SetReplyScope(scope string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyScope = scope
}

// SetUserInfoReply configures the claims returned by /userinfo along with
// "iss", "sub" and "aud".
func (p *TestProvider) SetUserInfoReply(claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyUserInfo = claims
}

// OmitIDTokens forces an error state where the /token endpoint does not return
// id_token.
func (p *TestProvider) OmitIDTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIDToken = true
}

// SetTokenError makes /token answer with an OAuth error.  A zero status
// clears it.
func (p *TestProvider) SetTokenError(status int, code, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenError = newTestErrorReply(status, code, description)
}

// SetUserInfoError makes /userinfo answer with the status and, when code
// isn't empty, a WWW-Authenticate header carrying it.  A zero status clears
// it.
func (p *TestProvider) SetUserInfoError(status int, code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userInfoError = newTestErrorReply(status, code, "")
}

// SetRevocationError makes /revoke answer with an OAuth error.  A zero status
// clears it.
func (p *TestProvider) SetRevocationError(status int, code, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revocationError = newTestErrorReply(status, code, description)
}

// SetNowFunc configures the clock used for the "iat" and "exp" claims.
func (p *TestProvider) SetNowFunc(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

// RotateSigningKey replaces the signing key with a new one identified by
// kid.  Only the new key is published.
func (p *TestProvider) RotateSigningKey(t *testing.T, kid string) {
	t.Helper()
	pub, priv := TestGenerateKeys(t)
	jwk, err := testPublicJWK(pub, kid)
	require.NoError(t, err)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.keyID = kid
	p.publicKey, p.privateKey = pub, priv
	p.jwks = &jose.JSONWebKeySet{Keys: []jose.JSONWebKey{jwk}}
}

// SigningKeys returns the test provider's pem-encoded keys used to sign JWTs
// and their kid.
func (p *TestProvider) SigningKeys() (pub, priv, kid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.publicKey, p.privateKey, p.keyID
}

// Revoked returns the tokens revoked so far.
func (p *TestProvider) Revoked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.revoked...)
}

// RequestCount returns how many requests were received for path.
func (p *TestProvider) RequestCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[path]
}

// Addr returns the current base URL for the test provider's running webserver.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns an http client trusting the test provider's CA.  httptest
// TLS servers share the same certificate, so it also trusts other test
// servers.
func (p *TestProvider) HTTPClient() *http.Client {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM([]byte(p.caCert))
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		},
	}
}

// ProviderConfig returns the endpoints of the test provider.
func (p *TestProvider) ProviderConfig() ProviderConfig {
	return ProviderConfig{
		Issuer:                p.Addr(),
		AuthorizationEndpoint: p.Addr() + "/authorize",
		TokenEndpoint:         p.Addr() + "/token",
		JWKSURL:               p.Addr() + "/jwks",
		UserInfoEndpoint:      p.Addr() + "/userinfo",
		EndSessionEndpoint:    p.Addr() + "/logout",
		RevocationEndpoint:    p.Addr() + "/revoke",
	}
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests[req.URL.Path]++
	w.Header().Set("Content-Type", "application/json")

	switch req.URL.Path {
	case "/.well-known/openid-configuration":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		pc := p.ProviderConfig()
		reply := struct {
			Issuer             string   `json:"issuer"`
			AuthEndpoint       string   `json:"authorization_endpoint"`
			TokenEndpoint      string   `json:"token_endpoint"`
			JWKSURI            string   `json:"jwks_uri"`
			UserinfoEndpoint   string   `json:"userinfo_endpoint"`
			EndSessionEndpoint string   `json:"end_session_endpoint"`
			RevocationEndpoint string   `json:"revocation_endpoint"`
			Algs               []string `json:"id_token_signing_alg_values_supported"`
		}{
			Issuer:             pc.Issuer,
			AuthEndpoint:       pc.AuthorizationEndpoint,
			TokenEndpoint:      pc.TokenEndpoint,
			JWKSURI:            pc.JWKSURL,
			UserinfoEndpoint:   pc.UserInfoEndpoint,
			EndSessionEndpoint: pc.EndSessionEndpoint,
			RevocationEndpoint: pc.RevocationEndpoint,
			Algs:               []string{string(jose.ES256)},
		}
		_ = p.writeJSON(w, &reply)

	case "/authorize":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		qv := req.URL.Query()
		switch {
		case qv.Get("response_type") != "code":
			p.writeAuthErrorResponse(w, req, "unsupported_response_type", "")
		case !strutils.StrListContains(strings.Fields(qv.Get("scope")), "openid"):
			p.writeAuthErrorResponse(w, req, "invalid_scope", "")
		case p.expectedAuthCode == "":
			p.writeAuthErrorResponse(w, req, "access_denied", "")
		case p.expectedAuthNonce != "" && p.expectedAuthNonce != qv.Get("nonce"):
			p.writeAuthErrorResponse(w, req, "access_denied", "unexpected nonce")
		case qv.Get("state") == "":
			p.writeAuthErrorResponse(w, req, "invalid_request", "missing state parameter")
		case !strutils.StrListContains(p.allowedRedirectURIs, qv.Get("redirect_uri")):
			w.WriteHeader(http.StatusBadRequest)
		default:
			p.authNonce = qv.Get("nonce")
			redirectURI := qv.Get("redirect_uri") +
				"?state=" + url.QueryEscape(qv.Get("state")) +
				"&code=" + url.QueryEscape(p.expectedAuthCode)
			http.Redirect(w, req, redirectURI, http.StatusFound)
		}

	case "/jwks":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !p.validClientCreds(req) {
			_ = p.writeErrorResponse(w, http.StatusUnauthorized, "invalid_client", "")
			return
		}
		_ = p.writeJSON(w, p.jwks)

	case "/token":
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch {
		case !p.validClientCreds(req):
			_ = p.writeErrorResponse(w, http.StatusUnauthorized, "invalid_client", "")
			return
		case p.tokenError != nil:
			_ = p.writeErrorResponse(w, p.tokenError.status, p.tokenError.code, p.tokenError.description)
			return
		case req.FormValue("grant_type") != "authorization_code":
			_ = p.writeErrorResponse(w, http.StatusBadRequest, "unsupported_grant_type", "bad grant_type")
			return
		case !strutils.StrListContains(p.allowedRedirectURIs, req.FormValue("redirect_uri")):
			_ = p.writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not allowed")
			return
		case p.expectedAuthCode == "" || req.FormValue("code") != p.expectedAuthCode:
			_ = p.writeErrorResponse(w, http.StatusBadRequest, "invalid_grant", "unexpected auth code")
			return
		}

		reply := struct {
			AccessToken  string `json:"access_token"`
			TokenType    string `json:"token_type"`
			ExpiresIn    int    `json:"expires_in"`
			IDToken      string `json:"id_token,omitempty"`
			RefreshToken string `json:"refresh_token"`
			Scope        string `json:"scope"`
		}{
			AccessToken:  TestAccessToken,
			TokenType:    "Bearer",
			ExpiresIn:    3600,
			RefreshToken: TestRefreshToken,
			Scope:        p.replyScope,
		}
		if !p.omitIDToken {
			idToken, err := p.signIDToken()
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			reply.IDToken = idToken
		}
		_ = p.writeJSON(w, &reply)

	case "/userinfo":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if p.userInfoError != nil {
			if p.userInfoError.code != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="test", error="`+p.userInfoError.code+`"`)
			}
			w.WriteHeader(p.userInfoError.status)
			return
		}
		if req.Header.Get("Authorization") != "Bearer "+TestAccessToken {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		claims := map[string]interface{}{
			"iss": p.Addr(),
			"sub": p.replySubject,
			"aud": p.clientID,
		}
		for k, v := range p.replyUserInfo {
			claims[k] = v
		}
		raw, err := signJWT(p.privateKey, claims, p.keyID)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/jwt")
		_, _ = w.Write([]byte(raw))

	case "/revoke":
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch {
		case !p.validClientCreds(req):
			_ = p.writeErrorResponse(w, http.StatusUnauthorized, "invalid_client", "")
		case p.revocationError != nil:
			_ = p.writeErrorResponse(w, p.revocationError.status, p.revocationError.code, p.revocationError.description)
		case req.FormValue("token") == "":
			_ = p.writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing token")
		default:
			p.revoked = append(p.revoked, req.FormValue("token"))
			w.WriteHeader(http.StatusOK)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// signIDToken must be called with the lock held.
func (p *TestProvider) signIDToken() (string, error) {
	now := p.now()
	nonce := p.expectedAuthNonce
	if nonce == "" {
		nonce = p.authNonce
	}
	claims := map[string]interface{}{
		"iss":   p.Addr(),
		"sub":   p.replySubject,
		"aud":   p.clientID,
		"iat":   now.Unix(),
		"exp":   now.Add(5 * time.Minute).Unix(),
		"nonce": nonce,
	}
	if len(p.customAudience) > 0 {
		claims["aud"] = p.customAudience
	}
	for k, v := range p.customClaims {
		claims[k] = v
	}
	return signJWT(p.privateKey, claims, p.keyID)
}

func (p *TestProvider) validClientCreds(req *http.Request) bool {
	id, secret, ok := req.BasicAuth()
	return ok && id == p.clientID && secret == p.clientSecret
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, errorCode, errorMessage string) {
	qv := req.URL.Query()

	redirectURI := qv.Get("redirect_uri") +
		"?state=" + url.QueryEscape(qv.Get("state")) +
		"&error=" + url.QueryEscape(errorCode)

	if errorMessage != "" {
		redirectURI += "&error_description=" + url.QueryEscape(errorMessage)
	}

	http.Redirect(w, req, redirectURI, http.StatusFound)
}

func (p *TestProvider) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) error {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}

	w.WriteHeader(statusCode)
	return p.writeJSON(w, &body)
}

func newTestErrorReply(status int, code, description string) *testErrorReply {
	if status == 0 {
		return nil
	}
	return &testErrorReply{status: status, code: code, description: description}
}
