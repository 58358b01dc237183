// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

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

type validatorOptions struct {
	withNowFunc       func() time.Time
	withClockSkew     time.Duration
	withSupportedAlgs []Alg
}

func validatorDefaults() validatorOptions {
	return validatorOptions{
		withNowFunc:       time.Now,
		withClockSkew:     DefaultClockSkew,
		withSupportedAlgs: []Alg{RS256},
	}
}

func getValidatorOpts(opt ...Option) validatorOptions {
	opts := validatorDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

type keysProviderOptions struct {
	withNowFunc           func() time.Time
	withLogger            hclog.Logger
	withMetrics           *Metrics
	withKeySetLifetime    time.Duration
	withMinFreshnessDelay time.Duration
}

func keysProviderDefaults() keysProviderOptions {
	return keysProviderOptions{
		withNowFunc:           time.Now,
		withLogger:            hclog.NewNullLogger(),
		withKeySetLifetime:    DefaultKeySetLifetime,
		withMinFreshnessDelay: DefaultMinFreshnessDelay,
	}
}

func getKeysProviderOpts(opt ...Option) keysProviderOptions {
	opts := keysProviderDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithNow provides an optional func for determining what the current time it
// is.
//
// Valid for: Validator and KeysProvider
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if now == nil {
			return
		}
		switch v := o.(type) {
		case *validatorOptions:
			v.withNowFunc = now
		case *keysProviderOptions:
			v.withNowFunc = now
		}
	}
}

// WithClockSkew overrides DefaultClockSkew, the leeway applied to the "exp"
// and "iat" checks.
//
// Valid for: Validator
func WithClockSkew(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*validatorOptions); ok && d >= 0 {
			v.withClockSkew = d
		}
	}
}

// WithSupportedSigningAlgorithms sets the algorithms a token may be signed
// with.  The default is RS256 only.
//
// Valid for: Validator
func WithSupportedSigningAlgorithms(alg ...Alg) Option {
	return func(o interface{}) {
		if v, ok := o.(*validatorOptions); ok && len(alg) > 0 {
			v.withSupportedAlgs = append([]Alg(nil), alg...)
		}
	}
}

// WithLogger provides an optional logger.
//
// Valid for: KeysProvider
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if v, ok := o.(*keysProviderOptions); ok && l != nil {
			v.withLogger = l
		}
	}
}

// WithMetrics provides optional prometheus metrics.
//
// Valid for: KeysProvider
func WithMetrics(m *Metrics) Option {
	return func(o interface{}) {
		if v, ok := o.(*keysProviderOptions); ok {
			v.withMetrics = m
		}
	}
}

// WithKeySetLifetime overrides DefaultKeySetLifetime, the cache TTL of a
// downloaded key set.
//
// Valid for: KeysProvider
func WithKeySetLifetime(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*keysProviderOptions); ok && d > 0 {
			v.withKeySetLifetime = d
		}
	}
}

// WithMinFreshnessDelay overrides DefaultMinFreshnessDelay, the minimum age
// of the cached key set before an unknown kid may trigger a refresh.
//
// Valid for: KeysProvider
func WithMinFreshnessDelay(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*keysProviderOptions); ok && d >= 0 {
			v.withMinFreshnessDelay = d
		}
	}
}
