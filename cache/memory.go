// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache.  Expired entries are dropped lazily
// when they're read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	prefix  string
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// ensure that MemoryCache implements the Cache interface
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache.
//
// Supported options: WithPrefix, WithNow
func NewMemoryCache(opt ...Option) *MemoryCache {
	opts := getOpts(opt...)
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		prefix:  opts.withPrefix,
		now:     opts.withNowFunc,
	}
}

// Get implements Cache.Get
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	k := c.prefix + key
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// it may have been replaced since the read lock was released
		if cur, ok := c.entries[k]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	v := make([]byte, len(e.value))
	copy(v, e.value)
	return v, true, nil
}

// Put implements Cache.Put
func (c *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	const op = "MemoryCache.Put"
	if ttl < 0 {
		return fmt.Errorf("%s: ttl is negative: %w", op, ErrInvalidParameter)
	}
	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.prefix+key] = e
	return nil
}
