// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

// =============================================================================
// VerdictCache
// =============================================================================
//
// Analysis is pure: the same catalog, dialect and snippet always produce the
// same verdict. The cache key therefore hashes exactly those three inputs,
// and a catalog change makes every older entry unreachable without an
// explicit invalidation step.
//
// Two tiers:
//
//	1. In-process LRU (golang-lru) for hot snippets.
//	2. Optional BadgerDB tier with a native TTL, so verdicts survive
//	   restarts. Expired keys read as misses.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/engine"
	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultVerdictTTL is the default lifetime of a persisted verdict.
const DefaultVerdictTTL = 7 * 24 * time.Hour

// VerdictKeyPrefix is prepended to the cache key to form the BadgerDB key.
const VerdictKeyPrefix = "complexity/verdict/v1/"

// errCacheMiss distinguishes a normal miss from a storage error.
var errCacheMiss = errors.New("cache miss")

// CachedVerdict is what the cache stores for one analysis.
type CachedVerdict struct {
	Verdict  engine.Verdict    `msgpack:"verdict"`
	Rule     string            `msgpack:"rule"`
	Dialect  catalog.Dialect   `msgpack:"dialect"`
	Features []catalog.Feature `msgpack:"features"`

	// CachedAtMilli is when the entry was written (Unix milliseconds UTC).
	CachedAtMilli int64 `msgpack:"cached_at_milli"`
}

// FeatureSet rebuilds the full feature set for the entry's dialect.
func (c *CachedVerdict) FeatureSet() engine.FeatureSet {
	fs := make(engine.FeatureSet, len(catalog.AllFeatures()))
	for _, f := range catalog.AllFeatures() {
		fs[f] = false
	}
	for _, f := range c.Features {
		fs[f] = true
	}
	return fs
}

// VerdictCache is a two-tier verdict cache.
//
// Both tiers are optional: a cache with size 0 and no DB stores nothing
// and always misses.
//
// Thread Safety: Safe for concurrent use.
type VerdictCache struct {
	lru    *lru.Cache[string, CachedVerdict]
	db     *DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewVerdictCache creates a VerdictCache.
//
// Inputs:
//
//	size - LRU capacity. 0 disables the in-memory tier.
//	db - Persistent tier. May be nil.
//	ttl - Lifetime of persisted entries. 0 uses DefaultVerdictTTL.
//	logger - Logger for diagnostics. May be nil.
//
// Outputs:
//
//	*VerdictCache - The cache.
//	error - Non-nil if size is negative.
func NewVerdictCache(size int, db *DB, ttl time.Duration, logger *slog.Logger) (*VerdictCache, error) {
	if size < 0 {
		return nil, fmt.Errorf("NewVerdictCache: size must not be negative, got %d", size)
	}
	if ttl <= 0 {
		ttl = DefaultVerdictTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &VerdictCache{db: db, ttl: ttl, logger: logger}
	if size > 0 {
		l, err := lru.New[string, CachedVerdict](size)
		if err != nil {
			return nil, fmt.Errorf("NewVerdictCache: %w", err)
		}
		c.lru = l
	}
	return c, nil
}

// Get looks up a verdict by cache key.
//
// Outputs:
//
//	*CachedVerdict - The entry. Nil on miss.
//	bool - True on hit.
//	error - Non-nil only on storage or decode failure.
func (c *VerdictCache) Get(ctx context.Context, key string) (*CachedVerdict, bool, error) {
	if c.lru != nil {
		if v, ok := c.lru.Get(key); ok {
			cacheLookupsTotal.WithLabelValues("memory", "hit").Inc()
			return &v, true, nil
		}
	}
	if c.db == nil {
		cacheLookupsTotal.WithLabelValues("memory", "miss").Inc()
		return nil, false, nil
	}

	var raw []byte
	err := c.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(verdictKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get cache key: %w", err)
		}
		raw, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copy value: %w", err)
		}
		return nil
	})
	if errors.Is(err, errCacheMiss) {
		cacheLookupsTotal.WithLabelValues("badger", "miss").Inc()
		c.logger.Debug("verdict cache: miss", slog.String("key", shortHash(key)))
		return nil, false, nil
	}
	if err != nil {
		cacheLookupsTotal.WithLabelValues("badger", "error").Inc()
		return nil, false, fmt.Errorf("verdict cache load: %w", err)
	}

	var v CachedVerdict
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		cacheLookupsTotal.WithLabelValues("badger", "error").Inc()
		return nil, false, fmt.Errorf("verdict cache decode: %w", err)
	}

	cacheLookupsTotal.WithLabelValues("badger", "hit").Inc()
	if c.lru != nil {
		c.lru.Add(key, v)
	}
	c.logger.Debug("verdict cache: hit", slog.String("key", shortHash(key)))
	return &v, true, nil
}

// Put stores a verdict under key in both tiers.
func (c *VerdictCache) Put(ctx context.Context, key string, v CachedVerdict) error {
	if v.CachedAtMilli == 0 {
		v.CachedAtMilli = time.Now().UnixMilli()
	}
	if c.lru != nil {
		c.lru.Add(key, v)
	}
	if c.db == nil {
		return nil
	}

	raw, err := msgpack.Marshal(&v)
	if err != nil {
		return fmt.Errorf("verdict cache encode: %w", err)
	}
	err = c.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(verdictKey(key), raw).WithTTL(c.ttl))
	})
	if err != nil {
		return fmt.Errorf("verdict cache save: %w", err)
	}

	c.logger.Debug("verdict cache: saved",
		slog.String("key", shortHash(key)),
		slog.Duration("ttl", c.ttl),
	)
	return nil
}

// Len returns the number of entries in the in-memory tier.
func (c *VerdictCache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge empties the in-memory tier. Persisted entries are untouched.
func (c *VerdictCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}

// =============================================================================
// Cache Key
// =============================================================================

// CacheKey returns the hex SHA-256 of the inputs that determine a verdict.
//
// Fields are NUL-separated so no two input triples share an encoding.
func CacheKey(catalogVersion string, dialect catalog.Dialect, snippet string) string {
	h := sha256.New()
	h.Write([]byte(catalogVersion))
	h.Write([]byte{0})
	h.Write([]byte(dialect))
	h.Write([]byte{0})
	h.Write([]byte(snippet))
	return hex.EncodeToString(h.Sum(nil))
}

// SnippetHash returns the hex SHA-256 of a snippet.
func SnippetHash(snippet string) string {
	h := sha256.Sum256([]byte(snippet))
	return hex.EncodeToString(h[:])
}

func verdictKey(key string) []byte {
	return []byte(VerdictKeyPrefix + key)
}

// shortHash returns the first 8 characters of a hash for log display.
func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8] + "..."
	}
	return h
}
