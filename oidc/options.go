// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithNow provides an optional func for determining what the current time it
// is.
//
// Valid for: Client and ExchangeCodeRequest
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if now == nil {
			return
		}
		switch v := o.(type) {
		case *clientOptions:
			v.withNowFunc = now
		case *exchangeOptions:
			v.withNowFunc = now
		}
	}
}

// WithLogger provides an optional logger.
//
// Valid for: Client
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if v, ok := o.(*clientOptions); ok && l != nil {
			v.withLogger = l
		}
	}
}

// WithProviderCA provides an optional CA certs (PEM encoded) for the
// connection to the provider.
//
// Valid for: Config and DiscoverProviderConfig
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withProviderCA = cert
		case *discoveryOptions:
			v.withProviderCA = cert
		}
	}
}

// WithRedirectURL provides the redirect_uri, overriding the
// Config.DefaultRedirectURL.
//
// Valid for: AuthorizationRequest and ExchangeCodeRequest
func WithRedirectURL(redirectURL string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authorizationOptions:
			v.withRedirectURL = redirectURL
		case *exchangeOptions:
			v.withRedirectURL = redirectURL
		}
	}
}

// WithIDTokenHint provides the raw id_token previously issued to the user.
//
// Valid for: AuthorizationRequest and LogoutRequest
func WithIDTokenHint(hint string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authorizationOptions:
			v.withIDTokenHint = hint
		case *logoutOptions:
			v.withIDTokenHint = hint
		}
	}
}

// WithTimeout provides an optional timeout for the request to the provider.
// When it's not set, the http client's default timeout applies.
//
// Valid for: ExchangeCodeRequest
func WithTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*exchangeOptions); ok && d > 0 {
			v.withTimeout = d
		}
	}
}
