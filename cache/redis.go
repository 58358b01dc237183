// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, which lets every instance of the
// relying party share one copy of the provider's key set.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// ensure that RedisCache implements the Cache interface
var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client.  The caller keeps ownership of the
// client and is responsible for closing it.
//
// Supported options: WithPrefix
func NewRedisCache(client redis.UniversalClient, opt ...Option) (*RedisCache, error) {
	const op = "cache.NewRedisCache"
	if client == nil {
		return nil, fmt.Errorf("%s: redis client is nil: %w", op, ErrNilParameter)
	}
	opts := getOpts(opt...)
	return &RedisCache{
		client: client,
		prefix: opts.withPrefix,
	}, nil
}

// Get implements Cache.Get
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "RedisCache.Get"
	v, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("%s: unable to get %q: %w", op, key, err)
	}
	return v, true, nil
}

// Put implements Cache.Put
func (c *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const op = "RedisCache.Put"
	if ttl < 0 {
		return fmt.Errorf("%s: ttl is negative: %w", op, ErrInvalidParameter)
	}
	// go-redis treats a zero expiration as "keep forever"
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: unable to set %q: %w", op, key, err)
	}
	return nil
}
