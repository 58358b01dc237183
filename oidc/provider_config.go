// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"

	"github.com/polenumerique/oasis/internal/strutils"
	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

// ProviderConfig holds the provider's endpoints.  It can be written by hand
// or discovered with DiscoverProviderConfig.
type ProviderConfig struct {
	// Issuer is a case-sensitive URL string using the https scheme that
	// contains scheme, host, and optionally, port number and path components
	// and no query or fragment components.
	Issuer string

	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURL               string

	// Optional endpoints.  The matching requests can't be built when
	// they're empty.
	UserInfoEndpoint   string
	EndSessionEndpoint string
	RevocationEndpoint string
}

// Validate the provider configuration.  It doesn't verify the endpoints are
// reachable.
func (c *ProviderConfig) Validate() error {
	const op = "ProviderConfig.Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	for _, ep := range []struct {
		name     string
		value    string
		required bool
	}{
		{"issuer", c.Issuer, true},
		{"authorization endpoint", c.AuthorizationEndpoint, true},
		{"token endpoint", c.TokenEndpoint, true},
		{"JWKS URL", c.JWKSURL, true},
		{"userinfo endpoint", c.UserInfoEndpoint, false},
		{"end session endpoint", c.EndSessionEndpoint, false},
		{"revocation endpoint", c.RevocationEndpoint, false},
	} {
		if ep.value == "" {
			if ep.required {
				result = multierror.Append(result, fmt.Errorf("%s is empty: %w", ep.name, ErrInvalidParameter))
			}
			continue
		}
		if err := validateURL(ep.value); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", ep.name, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DiscoverProviderConfig reads the provider's configuration from its
// discovery document (issuer + "/.well-known/openid-configuration").  See:
// https://openid.net/specs/openid-connect-discovery-1_0.html
//
// Supported options: WithProviderCA
func DiscoverProviderConfig(ctx context.Context, issuer string, opt ...Option) (*ProviderConfig, error) {
	const op = "oidc.DiscoverProviderConfig"
	if issuer == "" {
		return nil, fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidParameter)
	}
	opts := getDiscoveryOpts(opt...)
	client, err := sdkhttp.NewClient(opts.withProviderCA)
	if err != nil {
		if errors.Is(err, sdkhttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}

	p, err := gooidc.NewProvider(gooidc.ClientContext(ctx, client.HTTPClient()), issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDiscoveryFailed, err)
	}
	var metadata struct {
		JWKSURL            string `json:"jwks_uri"`
		UserInfoEndpoint   string `json:"userinfo_endpoint"`
		EndSessionEndpoint string `json:"end_session_endpoint"`
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := p.Claims(&metadata); err != nil {
		return nil, fmt.Errorf("%s: unable to read discovery document: %w: %w", op, ErrDiscoveryFailed, err)
	}
	pc := &ProviderConfig{
		Issuer:                issuer,
		AuthorizationEndpoint: p.Endpoint().AuthURL,
		TokenEndpoint:         p.Endpoint().TokenURL,
		JWKSURL:               metadata.JWKSURL,
		UserInfoEndpoint:      metadata.UserInfoEndpoint,
		EndSessionEndpoint:    metadata.EndSessionEndpoint,
		RevocationEndpoint:    metadata.RevocationEndpoint,
	}
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDiscoveryFailed, err)
	}
	return pc, nil
}

type discoveryOptions struct {
	withProviderCA string
}

func discoveryDefaults() discoveryOptions {
	return discoveryOptions{}
}

func getDiscoveryOpts(opt ...Option) discoveryOptions {
	opts := discoveryDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q is invalid: %w: %w", raw, ErrInvalidParameter, err)
	}
	if !strutils.StrListContains([]string{"https", "http"}, u.Scheme) || u.Host == "" {
		return fmt.Errorf("%q is not an http or https URL: %w", raw, ErrInvalidParameter)
	}
	return nil
}
