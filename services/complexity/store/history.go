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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/engine"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// BadgerDB key prefixes for analysis history.
const (
	// HistoryRecordKeyPrefix keys records by creation time, then ID.
	HistoryRecordKeyPrefix = "complexity/history/v1/rec/"

	// keyPrefixHistoryIdx maps a record ID to its record key.
	keyPrefixHistoryIdx = "complexity/history/v1/idx/"
)

// MaxPreviewRunes bounds the snippet preview kept in a Record.
const MaxPreviewRunes = 120

// DefaultHistoryLimit is used by List when limit <= 0.
const DefaultHistoryLimit = 100

// Record is one stored analysis.
type Record struct {
	// ID is a random UUID assigned by Save.
	ID string `json:"id" msgpack:"id"`

	Dialect catalog.Dialect `json:"dialect" msgpack:"dialect"`

	// SnippetHash is SHA-256 of the full snippet. The snippet itself is
	// not stored.
	SnippetHash string `json:"snippet_hash" msgpack:"snippet_hash"`

	// Preview is the start of the snippet, at most MaxPreviewRunes runes.
	Preview string `json:"preview" msgpack:"preview"`

	Verdict engine.Verdict `json:"verdict" msgpack:"verdict"`
	Rule    string         `json:"rule" msgpack:"rule"`

	// CachedResult is true when the verdict came from the verdict cache.
	CachedResult bool `json:"cached" msgpack:"cached"`

	// CreatedAtMilli is when the record was saved (Unix milliseconds UTC).
	CreatedAtMilli int64 `json:"created_at_milli" msgpack:"created_at_milli"`

	// DurationMicros is the analysis wall time.
	DurationMicros int64 `json:"duration_micros" msgpack:"duration_micros"`
}

// HistoryStore keeps analysis records in BadgerDB.
//
// Description:
//
//	Record keys embed the creation time so a reverse prefix scan yields
//	newest-first order without sorting. A secondary index maps each ID
//	to its record key for Get and Delete.
//
// Thread Safety: Safe for concurrent use. BadgerDB handles its own
// concurrency control.
type HistoryStore struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewHistoryStore creates a HistoryStore.
//
// Inputs:
//
//	db - An opened database. Must not be nil.
//	logger - Logger for diagnostics. May be nil.
//
// Outputs:
//
//	*HistoryStore - The store.
//	error - Non-nil if db is nil.
func NewHistoryStore(db *DB, logger *slog.Logger) (*HistoryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("NewHistoryStore: db must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStore{db: db, logger: logger, now: time.Now}, nil
}

// Save assigns an ID and creation time to rec and persists it.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	rec - The record. ID and CreatedAtMilli are overwritten. Preview is
//	  truncated to MaxPreviewRunes.
//
// Outputs:
//
//	*Record - The stored record.
//	error - Non-nil on encode or storage failure.
func (s *HistoryStore) Save(ctx context.Context, rec Record) (*Record, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	rec.ID = uuid.NewString()
	rec.CreatedAtMilli = s.now().UnixMilli()
	rec.Preview = Preview(rec.Preview)

	raw, err := msgpack.Marshal(&rec)
	if err != nil {
		historyWritesTotal.WithLabelValues("save", "error").Inc()
		return nil, fmt.Errorf("encoding history record: %w", err)
	}

	recKey := historyRecKey(rec.CreatedAtMilli, rec.ID)
	err = s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		if err := txn.Set(recKey, raw); err != nil {
			return fmt.Errorf("storing record: %w", err)
		}
		if err := txn.Set(historyIdxKey(rec.ID), recKey); err != nil {
			return fmt.Errorf("storing index: %w", err)
		}
		return nil
	})
	if err != nil {
		historyWritesTotal.WithLabelValues("save", "error").Inc()
		return nil, fmt.Errorf("writing history record: %w", err)
	}

	historyWritesTotal.WithLabelValues("save", "success").Inc()
	s.logger.Debug("history record saved",
		slog.String("id", rec.ID),
		slog.String("dialect", string(rec.Dialect)),
		slog.String("rule", rec.Rule),
	)
	return &rec, nil
}

// Get loads a record by ID. Returns ErrNotFound if it does not exist.
func (s *HistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if id == "" {
		return nil, fmt.Errorf("record ID must not be empty")
	}

	var rec Record
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		recKey, err := lookupRecKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(recKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading history record %s: %w", id, err)
	}
	return &rec, nil
}

// List returns up to limit records, newest first.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	limit - Maximum number of results. If <= 0, DefaultHistoryLimit.
//
// Outputs:
//
//	[]*Record - The records. Empty, not nil, when there are none.
//	error - Non-nil if the read fails.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	results := make([]*Record, 0)
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(HistoryRecordKeyPrefix)
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the largest key <= seek.
		seek := append([]byte(HistoryRecordKeyPrefix), 0xff)
		for it.Seek(seek); it.Valid() && len(results) < limit; it.Next() {
			item := it.Item()

			var rec Record
			err := item.Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &rec)
			})
			if err != nil {
				s.logger.Warn("skipping corrupt history record",
					slog.String("key", string(item.Key())),
					slog.String("error", err.Error()),
				)
				continue
			}
			results = append(results, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return results, nil
}

// Delete removes a record. Returns ErrNotFound if it does not exist.
func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}
	if id == "" {
		return fmt.Errorf("record ID must not be empty")
	}

	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		recKey, err := lookupRecKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(recKey); err != nil {
			return fmt.Errorf("deleting record: %w", err)
		}
		if err := txn.Delete(historyIdxKey(id)); err != nil {
			return fmt.Errorf("deleting index: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			historyWritesTotal.WithLabelValues("delete", "error").Inc()
		}
		return fmt.Errorf("deleting history record %s: %w", id, err)
	}

	historyWritesTotal.WithLabelValues("delete", "success").Inc()
	s.logger.Debug("history record deleted", slog.String("id", id))
	return nil
}

// Count returns the number of stored records.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	if ctx == nil {
		return 0, fmt.Errorf("ctx must not be nil")
	}

	n := 0
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixHistoryIdx)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// Preview truncates a snippet to MaxPreviewRunes runes.
func Preview(snippet string) string {
	runes := []rune(snippet)
	if len(runes) <= MaxPreviewRunes {
		return snippet
	}
	return string(runes[:MaxPreviewRunes]) + "…"
}

func lookupRecKey(txn *badger.Txn, id string) ([]byte, error) {
	item, err := txn.Get(historyIdxKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return item.ValueCopy(nil)
}

// historyRecKey orders records by creation time. The zero-padded hex
// millis sort lexically in time order.
func historyRecKey(createdAtMilli int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%016x-%s", HistoryRecordKeyPrefix, createdAtMilli, id))
}

func historyIdxKey(id string) []byte {
	return []byte(keyPrefixHistoryIdx + id)
}
