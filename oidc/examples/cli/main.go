// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/polenumerique/oasis/config"
	"github.com/polenumerique/oasis/oidc"
	"github.com/polenumerique/oasis/oidc/callback"
)

const attemptExp = 2 * time.Minute

func main() {
	configFile := flag.String("config", "", "path of an optional YAML configuration file")
	maxAge := flag.Int("max-age", -1, "max age of user authentication")
	scopes := flag.String("scopes", "", "comma separated list of additional scopes to requests")
	revoke := flag.Bool("revoke", false, "revoke the refresh token once the user info is printed")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{Name: "oasis-cli", Output: os.Stderr, Level: hclog.Info})
	if *debug {
		logger.SetLevel(hclog.Debug)
	}

	// handle ctrl-c while waiting for the callback
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt)
	defer signal.Stop(sigintCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx, config.WithFile(*configFile), config.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n\n", err)
		return
	}
	if cfg.DefaultRedirectURL == "" {
		fmt.Fprint(os.Stderr, "redirectUrl is empty.\n\n   Set OASIS__REDIRECT_URL to http://localhost:<port>/callback\n")
		return
	}
	redirect, err := url.Parse(cfg.DefaultRedirectURL)
	if err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		return
	}

	c, err := oidc.NewClient(cfg, oidc.WithLogger(logger))
	if err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		return
	}

	requestOptions := []oidc.Option{oidc.WithState(map[string]interface{}{"started_at": time.Now().Unix()})}
	if *maxAge >= 0 {
		requestOptions = append(requestOptions, oidc.WithMaxAge(uint(*maxAge)))
	}
	if *scopes != "" {
		optScopes := []string{"openid"}
		for _, s := range strings.Split(*scopes, ",") {
			optScopes = append(optScopes, strings.TrimSpace(s))
		}
		requestOptions = append(requestOptions, oidc.WithScopes(optScopes...))
	}
	authRequest, err := c.AuthorizationRequest(requestOptions...)
	if err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		return
	}
	authURL, err := authRequest.BuildURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting auth url: %s", err)
		return
	}

	successFn, successCh := success()
	errorFn, failedCh := failed()
	handler, err := callback.AuthCode(ctx, c, &callback.SingleStateReader{Pending: callback.PendingAuthorization{
		State: authURL.State,
		Nonce: authURL.Nonce,
	}}, successFn, errorFn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating auth code handler: %s", err)
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, handler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		return
	}
	defer listener.Close()

	fmt.Fprintf(os.Stderr, "Complete the login via your OIDC provider. Open this URL in your browser:\n\n    %s\n\n\n", authURL.URL)

	srvCh := make(chan error)
	// Start local server
	go func() {
		err := http.Serve(listener, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvCh <- err
		}
	}()

	// Wait for either the callback to finish, SIGINT to be received or up to 2 minutes
	select {
	case err := <-srvCh:
		fmt.Fprintf(os.Stderr, "server closed with error: %s", err.Error())
		return
	case resp := <-successCh:
		if resp.Error != nil {
			fmt.Fprintf(os.Stderr, "channel received success with error: %s", resp.Error)
			return
		}
		printResult(resp.Result)
		printUserInfo(ctx, c, resp.Result)
		printLogoutURL(c, resp.Result)
		if *revoke {
			revokeRefreshToken(ctx, c, resp.Result)
		}
		return
	case err := <-failedCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "channel received error: %s", err)
			return
		}
		fmt.Fprint(os.Stderr, "missing error from error channel.  try again?\n")
		return
	case <-sigintCh:
		fmt.Fprintf(os.Stderr, "Interrupted")
		return
	case <-time.After(attemptExp):
		fmt.Fprintf(os.Stderr, "Timed out waiting for response from provider")
		return
	}
}

type successResp struct {
	Result *oidc.ExchangeResult // Result is populated when the callback successfully exchanges the auth code.
	Error  error                // Error is populated when there's an error during the callback
}

func success() (callback.SuccessResponseFunc, <-chan successResp) {
	const op = "success"
	doneCh := make(chan successResp)
	return func(state string, r *oidc.ExchangeResult, w http.ResponseWriter, req *http.Request) {
		var responseErr error
		defer func() {
			doneCh <- successResp{r, responseErr}
			close(doneCh)
		}()
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(successHTML)); err != nil {
			responseErr = fmt.Errorf("%s: %w", op, err)
			fmt.Fprintf(os.Stderr, "error writing successful response: %s", err)
		}
	}, doneCh
}

func failed() (callback.ErrorResponseFunc, <-chan error) {
	const op = "failed"
	doneCh := make(chan error)
	return func(state string, r *oidc.AuthorizationResponseError, e error, w http.ResponseWriter, req *http.Request) {
		var responseErr error
		defer func() {
			if _, err := w.Write([]byte(responseErr.Error())); err != nil {
				fmt.Fprintf(os.Stderr, "%s: error writing failed response: %s", op, err)
			}
			doneCh <- responseErr
			close(doneCh)
		}()

		switch {
		case e != nil:
			fmt.Fprintf(os.Stderr, "%s: callback error: %s", op, e.Error())
			responseErr = e
			w.WriteHeader(http.StatusInternalServerError)
		case r != nil:
			responseErr = fmt.Errorf("%s: callback error from oidc provider: %w", op, r)
			fmt.Fprint(os.Stderr, responseErr.Error())
			w.WriteHeader(http.StatusUnauthorized)
		default:
			responseErr = fmt.Errorf("%s: unknown error from callback", op)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}, doneCh
}

// printableResult is needed because the tokens are redacted when marshaled.
type printableResult struct {
	IDToken      string
	AccessToken  string
	RefreshToken string `json:",omitempty"`
	Expiry       time.Time
	Scopes       []string
	State        interface{}
}

func printResult(r *oidc.ExchangeResult) {
	const op = "printResult"
	pr := printableResult{
		IDToken:     r.IDToken.Code(),
		AccessToken: r.AccessToken.Code(),
		Expiry:      r.AccessToken.ExpiresAt(),
		Scopes:      r.AccessToken.Scopes(),
		State:       r.State,
	}
	if r.RefreshToken != nil {
		pr.RefreshToken = r.RefreshToken.Code()
	}
	tokenData, err := json.MarshalIndent(pr, "", "    ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s", op, err)
		return
	}
	fmt.Fprintf(os.Stderr, "channel received success.\nToken:%s\n", tokenData)

	idData, err := json.MarshalIndent(r.IDToken.Claims().Map(), "", "    ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s", op, err)
		return
	}
	fmt.Fprintf(os.Stderr, "IDToken claims:%s\n", idData)
}

func printUserInfo(ctx context.Context, c *oidc.Client, r *oidc.ExchangeResult) {
	const op = "printUserInfo"
	if c.Config().Provider.UserInfoEndpoint == "" {
		fmt.Fprintf(os.Stderr, "%s: the provider has no userinfo endpoint\n", op)
		return
	}
	ui, err := c.UserInfoRequest(oidc.WithAccessToken(r.AccessToken)).Execute(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: channel received success, but error getting UserInfo claims: %s", op, err)
		return
	}
	infoData, err := json.MarshalIndent(ui.Claims().Map(), "", "    ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s", op, err)
		return
	}
	fmt.Fprintf(os.Stderr, "UserInfo claims:%s\n", infoData)
}

func printLogoutURL(c *oidc.Client, r *oidc.ExchangeResult) {
	if c.Config().Provider.EndSessionEndpoint == "" {
		return
	}
	u, err := c.LogoutRequest(oidc.WithIDToken(r.IDToken)).BuildURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "printLogoutURL: %s\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Logout URL:\n\n    %s\n\n", u)
}

func revokeRefreshToken(ctx context.Context, c *oidc.Client, r *oidc.ExchangeResult) {
	const op = "revokeRefreshToken"
	if r.RefreshToken == nil {
		fmt.Fprintf(os.Stderr, "%s: no refresh_token received\n", op)
		return
	}
	if err := c.RevocationRequest(oidc.WithToken(r.RefreshToken)).Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", op, err)
		return
	}
	fmt.Fprint(os.Stderr, "refresh_token revoked\n")
}
