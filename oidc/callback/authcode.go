// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/polenumerique/oasis/oidc"
)

// AuthCode creates an oidc authorization code callback handler which
// uses a StateReader to read the pending authorization via the request's
// oidc "state" parameter as a key for the lookup, then exchanges the code.
//
// The SuccessResponseFunc is used to create a response when callback is
// successful. The ErrorResponseFunc is to create a response when the callback
// fails.
func AuthCode(ctx context.Context, c *oidc.Client, sr StateReader, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.AuthCode"
	switch {
	case c == nil:
		return nil, fmt.Errorf("%s: client is nil: %w", op, oidc.ErrInvalidParameter)
	case sr == nil:
		return nil, fmt.Errorf("%s: state reader is nil: %w", op, oidc.ErrInvalidParameter)
	case sFn == nil:
		return nil, fmt.Errorf("%s: success response func is nil: %w", op, oidc.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is nil: %w", op, oidc.ErrInvalidParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		// parameters come from either the body (form_post) or the query
		if err := req.ParseForm(); err != nil {
			eFn("", nil, fmt.Errorf("%s: unable to parse request: %w: %w", op, oidc.ErrInvalidParameter, err), w, req)
			return
		}
		reqState := req.Form.Get("state")

		opts := []oidc.Option{oidc.WithCallbackQuery(req.Form)}
		// an error reported by the provider is handled by the exchange
		// before anything else, and there's no need for a pending state.
		if req.Form.Get("error") == "" {
			pending, err := sr.Read(ctx, reqState)
			if err != nil {
				eFn(reqState, nil, fmt.Errorf("%s: unable to read pending authorization: %w", op, err), w, req)
				return
			}
			if pending == nil {
				eFn(reqState, nil, fmt.Errorf("%s: %w", op, ErrNotFound), w, req)
				return
			}
			opts = append(opts, oidc.WithExpectedState(pending.State), oidc.WithNonce(pending.Nonce))
			if pending.RedirectURL != "" {
				opts = append(opts, oidc.WithRedirectURL(pending.RedirectURL))
			}
		}

		result, err := c.ExchangeCodeRequest(opts...).Execute(ctx)
		if err != nil {
			var respErr *oidc.AuthorizationResponseError
			if errors.As(err, &respErr) {
				eFn(reqState, respErr, nil, w, req)
				return
			}
			eFn(reqState, nil, fmt.Errorf("%s: unable to exchange authorization code: %w", op, err), w, req)
			return
		}
		sFn(reqState, result, w, req)
	}, nil
}
