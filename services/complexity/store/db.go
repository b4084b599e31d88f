// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists verdicts and analysis history in BadgerDB.
//
// Storage layout:
//
//	complexity/verdict/v1/{cacheKey}         →  msgpack(CachedVerdict), TTL
//	complexity/history/v1/rec/{millis}-{id}  →  msgpack(Record)
//	complexity/history/v1/idx/{id}           →  record key
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Config configures OpenDB.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Used by tests and by
	// deployments without a data directory.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// ReadOnly opens an existing on-disk database without taking the write
	// lock. Writes fail. Not valid with InMemory.
	ReadOnly bool

	// Logger receives Badger's internal warnings and errors. Nil silences them.
	Logger *slog.Logger
}

// InMemoryConfig returns a Config for a throwaway in-memory database.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// DB wraps a BadgerDB handle with context-aware transaction helpers.
//
// Thread Safety: Safe for concurrent use.
type DB struct {
	db *badger.DB
}

// OpenDB opens a BadgerDB database.
//
// Inputs:
//
//	cfg - Database settings. Path must be set unless InMemory is true.
//
// Outputs:
//
//	*DB - The opened database. The caller must Close it.
//	error - Non-nil if the database cannot be opened.
func OpenDB(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("OpenDB: path must be set for a persistent database")
	}
	if cfg.InMemory && cfg.ReadOnly {
		return nil, fmt.Errorf("OpenDB: an in-memory database cannot be read-only")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithReadOnly(cfg.ReadOnly)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("OpenDB: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// WithTxn runs fn in a read-write transaction and commits it.
//
// The context is checked before the transaction starts; Badger itself is
// not context-aware.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(fn)
}

// WithReadTxn runs fn in a read-only transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.View(fn)
}

// RunGC runs value log garbage collection every interval until ctx is done.
//
// Expired verdicts are only reclaimed from disk by this loop. It is a no-op
// for in-memory databases.
func (d *DB) RunGC(ctx context.Context, interval time.Duration) {
	if d.db.Opts().InMemory {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				// RunValueLogGC returns nil while it keeps finding
				// rewritable files.
				if err := d.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		}
	}
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}
