// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"
	"gopkg.in/square/go-jose.v2"

	"github.com/polenumerique/oasis/cache"
	sdkhttp "github.com/polenumerique/oasis/sdk/http"
)

const (
	// DefaultKeySetLifetime is the cache TTL of a downloaded key set.
	DefaultKeySetLifetime = 24 * time.Hour

	// DefaultMinFreshnessDelay is the minimum age of the cached key set
	// before an unknown kid is allowed to trigger a new download.
	DefaultMinFreshnessDelay = 7 * time.Minute

	// KeySetCacheKey is the cache key of the downloaded key set.
	KeySetCacheKey = "set"
)

// cachedKeySet is the cache entry written by KeysProvider.
type cachedKeySet struct {
	Keys         jose.JSONWebKeySet `json:"keys"`
	DownloadedAt int64              `json:"downloaded_at"`
}

// KeysProvider resolves the provider's signing keys by kid.  The published
// JWKS is downloaded with the client's credentials and kept in a Cache.
//
// An unknown kid only causes a new download when the cached set is older than
// the freshness delay, so tokens carrying bogus key ids can't be used to
// hammer the JWKS endpoint.  Concurrent downloads within one KeysProvider are
// collapsed into one.  Separate processes sharing a cache may still download
// concurrently; the last write wins, which is harmless.
type KeysProvider struct {
	jwksURL   string
	auth      sdkhttp.Auth
	client    *sdkhttp.Client
	cache     cache.Cache
	group     singleflight.Group
	logger    hclog.Logger
	metrics   *Metrics
	now       func() time.Time
	lifetime  time.Duration
	freshness time.Duration
}

// ensure that KeysProvider implements the KeyResolver interface
var _ KeyResolver = (*KeysProvider)(nil)

// NewKeysProvider creates a KeysProvider for the JWKS published at jwksURL.
//
// Supported options: WithNow, WithLogger, WithMetrics, WithKeySetLifetime,
// WithMinFreshnessDelay
func NewKeysProvider(jwksURL, clientID, clientSecret string, client *sdkhttp.Client, c cache.Cache, opt ...Option) (*KeysProvider, error) {
	const op = "jwt.NewKeysProvider"
	switch {
	case jwksURL == "":
		return nil, fmt.Errorf("%s: JWKS URL is empty: %w", op, ErrInvalidParameter)
	case clientID == "":
		return nil, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	case client == nil:
		return nil, fmt.Errorf("%s: http client is nil: %w", op, ErrNilParameter)
	case c == nil:
		return nil, fmt.Errorf("%s: cache is nil: %w", op, ErrNilParameter)
	}
	opts := getKeysProviderOpts(opt...)
	return &KeysProvider{
		jwksURL:   jwksURL,
		auth:      sdkhttp.BasicAuth{Username: clientID, Password: clientSecret},
		client:    client,
		cache:     c,
		logger:    opts.withLogger,
		metrics:   opts.withMetrics,
		now:       opts.withNowFunc,
		lifetime:  opts.withKeySetLifetime,
		freshness: opts.withMinFreshnessDelay,
	}, nil
}

// KeyByID returns the key identified by kid.  It returns an error wrapping
// ErrUnknownKeyID when the key isn't published by the provider.
func (p *KeysProvider) KeyByID(ctx context.Context, kid string) (*jose.JSONWebKey, error) {
	const op = "KeysProvider.KeyByID"
	if kid == "" {
		return nil, fmt.Errorf("%s: kid is empty: %w", op, ErrInvalidParameter)
	}

	set, found := p.cachedSet(ctx)
	p.metrics.RecordCacheLookup(found)
	switch {
	case !found:
		p.logger.Debug("no cached key set, downloading", "url", p.jwksURL)
	case len(set.Keys.Key(kid)) > 0:
		return &set.Keys.Key(kid)[0], nil
	default:
		age := p.now().Sub(time.Unix(set.DownloadedAt, 0))
		if age <= p.freshness {
			p.metrics.RecordUnknownKeyID()
			p.logger.Warn("unknown kid and key set is still fresh", "kid", kid, "age", age)
			return nil, fmt.Errorf("%s: %q: %w", op, kid, ErrUnknownKeyID)
		}
		p.logger.Debug("unknown kid, refreshing key set", "kid", kid, "age", age)
	}

	set, err := p.refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	keys := set.Keys.Key(kid)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s: %q: %w", op, kid, ErrUnknownKeyID)
	}
	return &keys[0], nil
}

// cachedSet reads the key set from the cache.  A read failure or an
// undecodable entry is treated as a miss.
func (p *KeysProvider) cachedSet(ctx context.Context) (*cachedKeySet, bool) {
	raw, found, err := p.cache.Get(ctx, KeySetCacheKey)
	if err != nil {
		p.logger.Warn("unable to read cached key set", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var set cachedKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		p.logger.Warn("unable to decode cached key set", "error", err)
		return nil, false
	}
	return &set, true
}

func (p *KeysProvider) refresh(ctx context.Context) (*cachedKeySet, error) {
	v, err, shared := p.group.Do(KeySetCacheKey, func() (interface{}, error) {
		return p.updateCacheAndGetKeys(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Trace("shared key set download")
	}
	return v.(*cachedKeySet), nil
}

// updateCacheAndGetKeys downloads the JWKS and stores it in the cache.
func (p *KeysProvider) updateCacheAndGetKeys(ctx context.Context) (_ *cachedKeySet, retErr error) {
	const op = "KeysProvider.updateCacheAndGetKeys"
	defer func() { p.metrics.RecordRefresh(retErr) }()

	resp, err := p.client.Get(ctx, p.jwksURL, sdkhttp.RequestOptions{Auth: p.auth})
	if err != nil {
		return nil, fmt.Errorf("%s: unable to reach %s: %w: %w", op, p.jwksURL, ErrKeySetUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s returned status %d: %w", op, p.jwksURL, resp.StatusCode, ErrKeySetUnavailable)
	}

	var published struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := resp.JSON(&published); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrKeySetUnavailable, err)
	}
	set := &cachedKeySet{DownloadedAt: p.now().Unix()}
	for _, raw := range published.Keys {
		var k jose.JSONWebKey
		if err := k.UnmarshalJSON(raw); err != nil {
			p.logger.Warn("skipping undecodable key", "error", err)
			continue
		}
		set.Keys.Keys = append(set.Keys.Keys, k)
	}
	p.logger.Debug("downloaded key set", "url", p.jwksURL, "keys", len(set.Keys.Keys))

	b, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to encode key set: %w", op, err)
	}
	if err := p.cache.Put(ctx, KeySetCacheKey, b, p.lifetime); err != nil {
		p.logger.Warn("unable to cache key set", "error", err)
	}
	return set, nil
}
