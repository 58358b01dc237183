// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"net/http"
	"time"
)

// Option defines a functional option for NewClient.
type Option func(*clientOptions)

type clientOptions struct {
	withTimeout    time.Duration
	withHTTPClient *http.Client
}

func clientDefaults() clientOptions {
	return clientOptions{
		withTimeout: DefaultTimeout,
	}
}

func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// WithTimeout sets the client's default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.withTimeout = d
	}
}

// WithHTTPClient makes the Client send requests with c instead of building its
// own pooled client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.withHTTPClient = c
	}
}
