// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/polenumerique/oasis/cache"
	"github.com/polenumerique/oasis/jwt"
	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

// Client is a relying party of one provider.  It hands out the request
// builders of the authorization code flow, all sharing the client's http
// client, JWKS cache and token validator.
//
// A Client is safe for concurrent use; the builders it returns are not and
// should be used for a single request.
type Client struct {
	config     Config
	http       *sdkhttp.Client
	serializer *StateSerializer
	keys       *jwt.KeysProvider
	validator  *jwt.Validator
	logger     hclog.Logger
	now        func() time.Time
}

// NewClient creates a Client from a valid Config.  The JWKS is cached in
// memory unless a cache is provided.
//
// Supported options: WithNow, WithLogger, WithCache, WithMetrics
func NewClient(c *Config, opt ...Option) (*Client, error) {
	const op = "oidc.NewClient"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getClientOpts(opt...)

	httpClient, err := c.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	keys, err := jwt.NewKeysProvider(
		c.Provider.JWKSURL,
		c.ClientID,
		string(c.ClientSecret),
		httpClient,
		opts.withCache,
		jwt.WithNow(opts.withNowFunc),
		jwt.WithLogger(opts.withLogger.Named("jwks")),
		jwt.WithMetrics(opts.withMetrics),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create keys provider: %w", op, err)
	}
	keySet, err := jwt.NewJSONWebKeySet(keys)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create key set: %w", op, err)
	}
	validator, err := jwt.NewValidator(
		keySet,
		jwt.WithNow(opts.withNowFunc),
		jwt.WithSupportedSigningAlgorithms(c.signingAlgs()...),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create validator: %w", op, err)
	}

	cfg := *c
	cfg.SupportedSigningAlgs = append([]jwt.Alg(nil), c.signingAlgs()...)
	return &Client{
		config:     cfg,
		http:       httpClient,
		serializer: NewStateSerializer(),
		keys:       keys,
		validator:  validator,
		logger:     opts.withLogger,
		now:        opts.withNowFunc,
	}, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	cfg := c.config
	cfg.SupportedSigningAlgs = append([]jwt.Alg(nil), c.config.SupportedSigningAlgs...)
	return cfg
}

// StateSerializer returns the serializer used for the state parameter.
func (c *Client) StateSerializer() *StateSerializer {
	return c.serializer
}

// clientOptions is the set of available options for NewClient
type clientOptions struct {
	withNowFunc func() time.Time
	withLogger  hclog.Logger
	withCache   cache.Cache
	withMetrics *jwt.Metrics
}

// clientDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func clientDefaults() clientOptions {
	return clientOptions{
		withNowFunc: time.Now,
		withLogger:  hclog.NewNullLogger(),
	}
}

// getClientOpts gets the defaults and applies the opt overrides passed in.
func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withCache == nil {
		opts.withCache = cache.NewMemoryCache(cache.WithNow(opts.withNowFunc))
	}
	return opts
}

// WithCache provides the cache used for the provider's JWKS.  Share a
// cache.RedisCache between instances to download the key set once.
//
// Valid for: Client
func WithCache(c cache.Cache) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok && c != nil {
			o.withCache = c
		}
	}
}

// WithMetrics provides optional prometheus metrics for the JWKS cache.
//
// Valid for: Client
func WithMetrics(m *jwt.Metrics) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withMetrics = m
		}
	}
}
