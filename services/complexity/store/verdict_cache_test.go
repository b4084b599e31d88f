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

import (
	"context"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/engine"
	"github.com/dgraph-io/badger/v4"
)

func makeCachedVerdict() CachedVerdict {
	return CachedVerdict{
		Verdict: engine.Verdict{
			Time:        engine.LabelQuadratic,
			Space:       engine.LabelConstant,
			Explanation: "Quadratic time complexity due to nested loops.",
			Category:    engine.CategoryBasicOperation,
		},
		Rule:     engine.RuleNestedLoop,
		Dialect:  catalog.DialectPython,
		Features: []catalog.Feature{catalog.FeatureLoop, catalog.FeatureNestedLoop},
	}
}

func TestVerdictCache_MissOnEmpty(t *testing.T) {
	cache, err := NewVerdictCache(8, openTestDB(t), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Errorf("expected nil error on miss, got %v", err)
	}
	if ok || got != nil {
		t.Errorf("expected miss, got ok=%v v=%v", ok, got)
	}
}

func TestVerdictCache_RoundTripBadger(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	writer, _ := NewVerdictCache(0, db, 0, nil)
	want := makeCachedVerdict()
	if err := writer.Put(ctx, "key-1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A fresh cache over the same DB has an empty LRU, so this reads Badger.
	reader, _ := NewVerdictCache(4, db, 0, nil)
	got, ok, err := reader.Get(ctx, "key-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Verdict != want.Verdict {
		t.Errorf("verdict mismatch: got %+v want %+v", got.Verdict, want.Verdict)
	}
	if got.Rule != want.Rule || got.Dialect != want.Dialect {
		t.Errorf("metadata mismatch: got %+v", got)
	}
	if got.CachedAtMilli == 0 {
		t.Error("expected CachedAtMilli to be set")
	}
	if reader.Len() != 1 {
		t.Errorf("expected Badger hit to warm the LRU, len=%d", reader.Len())
	}
}

func TestVerdictCache_MemoryOnly(t *testing.T) {
	cache, err := NewVerdictCache(2, nil, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := cache.Put(ctx, k, makeCachedVerdict()); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	if cache.Len() != 2 {
		t.Errorf("expected LRU capacity 2, got %d", cache.Len())
	}
	if _, ok, _ := cache.Get(ctx, "a"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok, _ := cache.Get(ctx, "c"); !ok {
		t.Error("expected newest entry to be present")
	}

	cache.Purge()
	if cache.Len() != 0 {
		t.Errorf("expected empty LRU after purge, got %d", cache.Len())
	}
}

func TestVerdictCache_Disabled(t *testing.T) {
	cache, err := NewVerdictCache(0, nil, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := cache.Put(ctx, "k", makeCachedVerdict()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Error("disabled cache should never hit")
	}
}

func TestVerdictCache_NegativeSize(t *testing.T) {
	if _, err := NewVerdictCache(-1, nil, 0, nil); err == nil {
		t.Error("expected error for negative size")
	}
}

func TestVerdictCache_TTLApplied(t *testing.T) {
	db := openTestDB(t)
	cache, _ := NewVerdictCache(0, db, time.Hour, nil)
	ctx := context.Background()

	if err := cache.Put(ctx, "ttl", makeCachedVerdict()); err != nil {
		t.Fatal(err)
	}

	err := db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(verdictKey("ttl"))
		if err != nil {
			return err
		}
		expires := time.Unix(int64(item.ExpiresAt()), 0)
		if d := time.Until(expires); d <= 0 || d > time.Hour+time.Minute {
			t.Errorf("unexpected expiry in %s", d)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestVerdictCache_CorruptEntry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	err := db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Set(verdictKey("bad"), []byte{0xc1})
	})
	if err != nil {
		t.Fatal(err)
	}

	cache, _ := NewVerdictCache(0, db, 0, nil)
	if _, _, err := cache.Get(ctx, "bad"); err == nil {
		t.Error("expected decode error")
	}
}

func TestCachedVerdict_FeatureSet(t *testing.T) {
	cv := makeCachedVerdict()
	fs := cv.FeatureSet()
	if len(fs) != len(catalog.AllFeatures()) {
		t.Fatalf("expected %d keys, got %d", len(catalog.AllFeatures()), len(fs))
	}
	if !fs.Has(catalog.FeatureNestedLoop) || fs.Has(catalog.FeatureRecursion) {
		t.Errorf("unexpected feature set %v", fs.Detected())
	}
}

func TestCacheKey(t *testing.T) {
	base := CacheKey("v1", catalog.DialectJavaScript, "for")
	if len(base) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(base))
	}
	if base != CacheKey("v1", catalog.DialectJavaScript, "for") {
		t.Error("expected deterministic key")
	}

	variants := []string{
		CacheKey("v2", catalog.DialectJavaScript, "for"),
		CacheKey("v1", catalog.DialectPython, "for"),
		CacheKey("v1", catalog.DialectJavaScript, "while"),
		CacheKey("v1java", "script", "for"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key", i)
		}
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("0123456789"); got != "01234567..." {
		t.Errorf("got %q", got)
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
}
