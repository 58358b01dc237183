// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cache provides the key-value storage used by the relying party to
// share the provider's published key set between requests (and between
// processes, when a shared backend like Redis is used).
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultPrefix namespaces every key written by this module so it can share a
// backend with the host application.
const DefaultPrefix = "oasis."

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
)

// Cache is a key-value store with per entry expiration.  Implementations must
// be safe for concurrent use.
type Cache interface {
	// Get returns the value stored for key and true, or false when there is
	// no (unexpired) entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value for key.  A ttl of 0 means the entry never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
