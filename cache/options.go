// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cache

import "time"

// Option defines a functional option for the cache constructors.
type Option func(*options)

type options struct {
	withPrefix  string
	withNowFunc func() time.Time
}

func getDefaultOptions() options {
	return options{
		withPrefix:  DefaultPrefix,
		withNowFunc: time.Now,
	}
}

func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// WithPrefix overrides DefaultPrefix.  An empty prefix is allowed.
func WithPrefix(p string) Option {
	return func(o *options) {
		o.withPrefix = p
	}
}

// WithNow provides a time source used to evaluate expirations.
func WithNow(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.withNowFunc = fn
		}
	}
}
