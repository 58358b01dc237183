// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package http provides the transport used by the relying party to reach the
// provider's endpoints: form-encoded requests, Basic or Bearer authentication
// and a buffered Response.
package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultTimeout is used for every request which doesn't carry its own
// timeout.
const DefaultTimeout = 60 * time.Second

// MaxResponseSize bounds the body read from any provider response.
const MaxResponseSize = 1 << 20

var (
	ErrInvalidCertificatePem = errors.New("invalid certificate PEM")
	ErrTransport             = errors.New("transport failure")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrResponseTooLarge      = errors.New("response too large")
)

// RequestOptions carries the optional parts of a request.
type RequestOptions struct {
	// Params are sent in the query string of a GET or as the
	// application/x-www-form-urlencoded body of a POST.
	Params url.Values

	// Auth is an optional authentication scheme applied to the request.
	Auth Auth

	// Headers are additional request headers.
	Headers map[string]string

	// Timeout overrides the client's default timeout when greater than zero.
	Timeout time.Duration
}

// Client sends requests to a provider.  It's safe for concurrent use.
type Client struct {
	client         *http.Client
	defaultTimeout time.Duration
}

// NewClient creates a new Client which will use the optional CA certificate
// PEM if provided, otherwise it will use the installed system CA chain.
//
// Supported options: WithTimeout, WithHTTPClient
func NewClient(caPEM string, opt ...Option) (*Client, error) {
	const op = "http.NewClient"
	opts := getClientOpts(opt...)
	if opts.withTimeout < 0 {
		return nil, fmt.Errorf("%s: timeout is negative: %w", op, ErrInvalidParameter)
	}
	if opts.withTimeout == 0 {
		opts.withTimeout = DefaultTimeout
	}
	c := &Client{
		client:         opts.withHTTPClient,
		defaultTimeout: opts.withTimeout,
	}
	if c.client != nil {
		if caPEM != "" {
			return nil, fmt.Errorf("%s: a CA PEM cannot be combined with a caller supplied http client: %w", op, ErrInvalidParameter)
		}
		return c, nil
	}

	tr := cleanhttp.DefaultPooledTransport()
	if caPEM != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(caPEM)); !ok {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCertificatePem)
		}
		tr.TLSClientConfig = &tls.Config{
			RootCAs:    certPool,
			MinVersion: tls.VersionTLS12,
		}
	}
	c.client = &http.Client{
		Transport: tr,
	}
	return c, nil
}

// HTTPClient returns the underlying *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.client
}

// Get sends a GET request; opts.Params are added to the url's query.
func (c *Client) Get(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	const op = "Client.Get"
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to parse url %q: %w", op, rawURL, err)
	}
	if len(opts.Params) > 0 {
		q := u.Query()
		for k, vs := range opts.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return c.do(ctx, http.MethodGet, u.String(), nil, opts)
}

// Post sends a POST request with opts.Params form encoded in the body.
func (c *Client) Post(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	var body io.Reader
	if opts.Params != nil {
		body = strings.NewReader(opts.Params.Encode())
	}
	return c.do(ctx, http.MethodPost, rawURL, body, opts)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, opts RequestOptions) (*Response, error) {
	const op = "Client.do"
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.defaultTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create %s request: %w", op, method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.Auth != nil {
		if err := opts.Auth.apply(req); err != nil {
			return nil, fmt.Errorf("%s: unable to authenticate request: %w", op, err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %s: %w: %w", op, method, rawURL, ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read response body: %w: %w", op, ErrTransport, err)
	}
	if len(raw) > MaxResponseSize {
		return nil, fmt.Errorf("%s: %s %s: body exceeds %d bytes: %w", op, method, rawURL, MaxResponseSize, ErrResponseTooLarge)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       raw,
		Header:     resp.Header,
	}, nil
}
