// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
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

// loadOptions is the set of available options for Load
type loadOptions struct {
	withFile      string
	withEnvPrefix string
	withDefaults  map[string]interface{}
	withLogger    hclog.Logger
}

// loadDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func loadDefaults() loadOptions {
	return loadOptions{
		withEnvPrefix: DefaultEnvPrefix,
		withLogger:    hclog.NewNullLogger(),
	}
}

// getLoadOpts gets the defaults and applies the opt overrides passed in.
func getLoadOpts(opt ...Option) loadOptions {
	opts := loadDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithFile provides the path of a YAML configuration file.
func WithFile(path string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok {
			o.withFile = path
		}
	}
}

// WithEnvPrefix overrides DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok && prefix != "" {
			o.withEnvPrefix = prefix
		}
	}
}

// WithDefaults provides default values keyed by their dotted path, for
// instance "provider.issuer".
func WithDefaults(defaults map[string]interface{}) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok {
			o.withDefaults = defaults
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
