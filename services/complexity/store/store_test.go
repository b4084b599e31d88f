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
)

// openTestDB opens an in-memory BadgerDB for testing.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(InMemoryConfig())
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDB_PathRequired(t *testing.T) {
	if _, err := OpenDB(Config{}); err == nil {
		t.Error("expected error for persistent DB without path")
	}
}

func TestOpenDB_OnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenDB(Config{Path: dir})
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	cache, err := NewVerdictCache(0, db, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := cache.Put(ctx, "k1", CachedVerdict{Rule: "default"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenDB(Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	cache, _ = NewVerdictCache(0, reopened, 0, nil)
	got, ok, err := cache.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected persisted hit, got ok=%v err=%v", ok, err)
	}
	if got.Rule != "default" {
		t.Errorf("expected rule default, got %q", got.Rule)
	}
}

func TestOpenDB_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenDB(Config{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	ctx := context.Background()
	cache, _ := NewVerdictCache(0, db, 0, nil)
	if err := cache.Put(ctx, "k1", CachedVerdict{Rule: "single_loop"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := OpenDB(Config{Path: dir, ReadOnly: true})
	if err != nil {
		t.Fatalf("read-only open: %v", err)
	}
	defer ro.Close()

	cache, _ = NewVerdictCache(0, ro, 0, nil)
	got, ok, err := cache.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Rule != "single_loop" {
		t.Errorf("expected rule single_loop, got %q", got.Rule)
	}
	if err := cache.Put(ctx, "k2", CachedVerdict{Rule: "default"}); err == nil {
		t.Error("expected write to a read-only store to fail")
	}
}

func TestOpenDB_ReadOnlyInMemory(t *testing.T) {
	if _, err := OpenDB(Config{InMemory: true, ReadOnly: true}); err == nil {
		t.Error("expected error for read-only in-memory DB")
	}
}

func TestDB_CancelledContext(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.WithTxn(ctx, nil); err == nil {
		t.Error("expected context error from WithTxn")
	}
	if err := db.WithReadTxn(ctx, nil); err == nil {
		t.Error("expected context error from WithReadTxn")
	}
}

func TestDB_RunGCInMemoryReturns(t *testing.T) {
	db := openTestDB(t)
	// Must return immediately rather than block on the ticker.
	db.RunGC(context.Background(), 0)
}
