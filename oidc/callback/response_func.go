// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"github.com/polenumerique/oasis/oidc"
)

// SuccessResponseFunc is used by Callbacks to create a http response when the
// callback is successful.
//
// The function state parameter will contain the state that was returned as
// part of a successful oidc authentication response.  The
// oidc.ExchangeResult holds the tokens and the caller's opaque state.  The
// function should use the http.ResponseWriter to send back whatever content
// (headers, html, JSON, etc) it wishes to the client that originated the oidc
// flow.
type SuccessResponseFunc func(state string, r *oidc.ExchangeResult, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by Callbacks to create a http response when the
// callback fails.
//
// The function receives the state returned as part of the oidc authentication
// response.  It gets either the error reported by the provider in the
// authentication response or the error raised while processing the request.
// The function should use the http.ResponseWriter to send back whatever
// content (headers, html, JSON, etc) it wishes to the client that originated
// the oidc flow.
type ErrorResponseFunc func(state string, respErr *oidc.AuthorizationResponseError, e error, w http.ResponseWriter, req *http.Request)
