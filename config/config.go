// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/polenumerique/oasis/jwt"
	"github.com/polenumerique/oasis/oidc"
)

// DefaultEnvPrefix is the prefix of the environment variables read by Load.
// Nested keys are separated by a double underscore and words by a single
// one, so OASIS__PROVIDER__JWKS_URL sets provider.jwksUrl.
const DefaultEnvPrefix = "OASIS__"

// Configuration keys.
const (
	KeyClientID              = "clientId"
	KeyClientSecret          = "clientSecret"
	KeyRedirectURL           = "redirectUrl"
	KeyPostLogoutRedirectURL = "postLogoutRedirectUrl"
	KeySigningAlgs           = "signingAlgs"
	KeyProviderCA            = "providerCa"
	KeyProviderCAFile        = "providerCaFile"
	KeyDiscover              = "provider.discover"
	KeyIssuer                = "provider.issuer"
	KeyAuthorizationEndpoint = "provider.authorizationEndpoint"
	KeyTokenEndpoint         = "provider.tokenEndpoint"
	KeyJWKSURL               = "provider.jwksUrl"
	KeyUserInfoEndpoint      = "provider.userinfoEndpoint"
	KeyEndSessionEndpoint    = "provider.endSessionEndpoint"
	KeyRevocationEndpoint    = "provider.revocationEndpoint"
)

// ErrLoad is returned when a configuration source can't be read.
var ErrLoad = errors.New("unable to load configuration")

// Load builds an oidc.Config from, in increasing order of precedence, the
// defaults, the YAML file and the environment.  When provider.discover is
// set, the endpoints are discovered from provider.issuer and the endpoints
// set explicitly override the discovered ones.
//
// Supported options: WithFile, WithEnvPrefix, WithDefaults, WithLogger
func Load(ctx context.Context, opt ...Option) (*oidc.Config, error) {
	const op = "config.Load"
	opts := getLoadOpts(opt...)
	k := koanf.New(".")

	defaults := map[string]interface{}{
		KeySigningAlgs: []string{string(jwt.RS256)},
		KeyDiscover:    false,
	}
	for key, v := range opts.withDefaults {
		defaults[key] = v
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("%s: defaults: %w: %w", op, ErrLoad, err)
	}
	if opts.withFile != "" {
		if err := k.Load(file.Provider(opts.withFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %s: %w: %w", op, opts.withFile, ErrLoad, err)
		}
		opts.withLogger.Debug("loaded configuration file", "path", opts.withFile)
	}
	if err := k.Load(env.Provider(opts.withEnvPrefix, ".", transformEnv(opts.withEnvPrefix)), nil); err != nil {
		return nil, fmt.Errorf("%s: environment: %w: %w", op, ErrLoad, err)
	}

	ca := k.String(KeyProviderCA)
	if path := k.String(KeyProviderCAFile); ca == "" && path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: provider CA file: %w: %w", op, ErrLoad, err)
		}
		ca = string(b)
	}

	provider, err := providerConfig(ctx, k, ca)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var algs []jwt.Alg
	for _, a := range stringList(k, KeySigningAlgs) {
		algs = append(algs, jwt.Alg(a))
	}
	c, err := oidc.NewConfig(
		k.String(KeyClientID),
		oidc.ClientSecret(k.String(KeyClientSecret)),
		provider,
		oidc.WithDefaultRedirectURL(k.String(KeyRedirectURL)),
		oidc.WithDefaultPostLogoutRedirectURL(k.String(KeyPostLogoutRedirectURL)),
		oidc.WithSupportedSigningAlgs(algs...),
		oidc.WithProviderCA(ca),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts.withLogger.Debug("configuration loaded", "client_id", c.ClientID, "issuer", c.Provider.Issuer)
	return c, nil
}

func providerConfig(ctx context.Context, k *koanf.Koanf, ca string) (oidc.ProviderConfig, error) {
	set := oidc.ProviderConfig{
		Issuer:                k.String(KeyIssuer),
		AuthorizationEndpoint: k.String(KeyAuthorizationEndpoint),
		TokenEndpoint:         k.String(KeyTokenEndpoint),
		JWKSURL:               k.String(KeyJWKSURL),
		UserInfoEndpoint:      k.String(KeyUserInfoEndpoint),
		EndSessionEndpoint:    k.String(KeyEndSessionEndpoint),
		RevocationEndpoint:    k.String(KeyRevocationEndpoint),
	}
	if !k.Bool(KeyDiscover) {
		return set, nil
	}
	pc, err := oidc.DiscoverProviderConfig(ctx, set.Issuer, oidc.WithProviderCA(ca))
	if err != nil {
		return oidc.ProviderConfig{}, err
	}
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&pc.AuthorizationEndpoint, set.AuthorizationEndpoint},
		{&pc.TokenEndpoint, set.TokenEndpoint},
		{&pc.JWKSURL, set.JWKSURL},
		{&pc.UserInfoEndpoint, set.UserInfoEndpoint},
		{&pc.EndSessionEndpoint, set.EndSessionEndpoint},
		{&pc.RevocationEndpoint, set.RevocationEndpoint},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return *pc, nil
}

// stringList reads a list given either as a YAML sequence or as a comma or
// space separated string, the only form environment variables allow.
func stringList(k *koanf.Koanf, key string) []string {
	if s, ok := k.Get(key).(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	}
	return k.Strings(key)
}

// transformEnv maps PREFIX_FOO_BAR__BAZ to fooBar.baz.
func transformEnv(prefix string) func(string) string {
	return func(s string) string {
		segments := strings.Split(strings.ToLower(strings.TrimPrefix(s, prefix)), "__")
		for i, segment := range segments {
			parts := strings.Split(segment, "_")
			for j := 1; j < len(parts); j++ {
				parts[j] = capitalize(parts[j])
			}
			segments[i] = strings.Join(parts, "")
		}
		return strings.Join(segments, ".")
	}
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
