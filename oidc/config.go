// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/polenumerique/oasis/jwt"
	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

// ClientSecret is an oauth client secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Config represents the configuration of a relying party (client) for the
// 3-legged authorization code flow.
type Config struct {
	// ClientID is the relying party id
	ClientID string

	// ClientSecret is the relying party secret.  It's sent with Basic auth to
	// the token, revocation and JWKS endpoints.
	ClientSecret ClientSecret

	// Provider holds the provider's endpoints.
	Provider ProviderConfig

	// DefaultRedirectURL is the redirect_uri used when a request doesn't
	// provide one.  Optional.
	DefaultRedirectURL string

	// DefaultPostLogoutRedirectURL is the post_logout_redirect_uri used when
	// a logout request doesn't provide one.  Optional.
	DefaultPostLogoutRedirectURL string

	// SupportedSigningAlgs is the list of algorithms accepted for signed id
	// tokens and userinfo responses.  Defaults to RS256.
	SupportedSigningAlgs []jwt.Alg

	// ProviderCA is an optional CA cert to use when sending requests to the
	// provider.
	ProviderCA string
}

// NewConfig composes a new config for a relying party.
//
// Supported options: WithProviderCA, WithDefaultRedirectURL,
// WithDefaultPostLogoutRedirectURL, WithSupportedSigningAlgs
func NewConfig(clientID string, clientSecret ClientSecret, provider ProviderConfig, opt ...Option) (*Config, error) {
	const op = "oidc.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ClientID:                     clientID,
		ClientSecret:                 clientSecret,
		Provider:                     provider,
		DefaultRedirectURL:           opts.withRedirectURL,
		DefaultPostLogoutRedirectURL: opts.withPostLogoutRedirectURL,
		SupportedSigningAlgs:         opts.withSupportedSigningAlgs,
		ProviderCA:                   opts.withProviderCA,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// Validate the configuration.  Every problem found is reported.  It doesn't
// verify the provider is reachable.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("client id is empty: %w", ErrInvalidParameter))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("client secret is empty: %w", ErrInvalidParameter))
	}
	if err := c.Provider.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.DefaultRedirectURL != "" {
		if err := validateURL(c.DefaultRedirectURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("default redirect URL: %w", err))
		}
	}
	if c.DefaultPostLogoutRedirectURL != "" {
		if err := validateURL(c.DefaultPostLogoutRedirectURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("default post logout redirect URL: %w", err))
		}
	}
	if err := jwt.SupportedSigningAlgorithm(c.signingAlgs()...); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: %w", ErrInvalidParameter, err))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HTTPClient is a helper function that creates a new http client for the
// provider configured.
func (c *Config) HTTPClient(opt ...sdkhttp.Option) (*sdkhttp.Client, error) {
	const op = "Config.HTTPClient"
	client, err := sdkhttp.NewClient(c.ProviderCA, opt...)
	if err != nil {
		if errors.Is(err, sdkhttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

func (c *Config) signingAlgs() []jwt.Alg {
	if len(c.SupportedSigningAlgs) == 0 {
		return []jwt.Alg{jwt.RS256}
	}
	return c.SupportedSigningAlgs
}

// configOptions is the set of available options for NewConfig
type configOptions struct {
	withProviderCA            string
	withRedirectURL           string
	withPostLogoutRedirectURL string
	withSupportedSigningAlgs  []jwt.Alg
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{}
}

// getConfigOpts gets the defaults and applies the opt overrides passed in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithDefaultRedirectURL provides the Config.DefaultRedirectURL.
//
// Valid for: Config
func WithDefaultRedirectURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRedirectURL = u
		}
	}
}

// WithDefaultPostLogoutRedirectURL provides the
// Config.DefaultPostLogoutRedirectURL.
//
// Valid for: Config
func WithDefaultPostLogoutRedirectURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withPostLogoutRedirectURL = u
		}
	}
}

// WithSupportedSigningAlgs provides the Config.SupportedSigningAlgs.
//
// Valid for: Config
func WithSupportedSigningAlgs(alg ...jwt.Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withSupportedSigningAlgs = alg
		}
	}
}
