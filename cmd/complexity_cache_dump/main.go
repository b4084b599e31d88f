// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// complexity_cache_dump inspects the complexity service's BadgerDB store.
//
// The service persists verdicts (keyed by catalog version, dialect and
// snippet hash) and, when enabled, an analysis history. This tool opens
// the store read-only and prints both: keys, TTL remaining, the decoded
// verdicts and history previews.
//
// Usage:
//
//	complexity_cache_dump [--path /path/to/data] [--kind verdicts|history|all]
//
// If --path is not given, reads COMPLEXITY_DATA_DIR from the environment.
//
// Exit codes:
//
//	0 - success (including an empty store)
//	1 - error opening or reading the database
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/store"
	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	kindVerdicts = "verdicts"
	kindHistory  = "history"
	kindAll      = "all"
)

// errNoStore is returned when the data directory does not exist.
var errNoStore = errors.New("data directory does not exist")

func main() {
	pathFlag := flag.String("path", "", "Path to the BadgerDB directory (overrides COMPLEXITY_DATA_DIR)")
	kindFlag := flag.String("kind", kindAll, "What to print: verdicts, history or all")
	flag.Parse()

	dbPath := *pathFlag
	if dbPath == "" {
		dbPath = os.Getenv("COMPLEXITY_DATA_DIR")
	}
	if dbPath == "" {
		fatalf("no data directory; pass --path or set COMPLEXITY_DATA_DIR")
	}

	err := dump(os.Stdout, dbPath, *kindFlag, time.Now())
	if errors.Is(err, errNoStore) {
		fmt.Println("Data directory does not exist. The service has not persisted anything yet,")
		fmt.Println("or it runs with an in-memory store (COMPLEXITY_DATA_DIR unset).")
		return
	}
	if err != nil {
		fatalf("%v", err)
	}
}

// entry is one decoded key/value pair.
type entry struct {
	key       string
	expiresAt time.Time
	hasExpiry bool
	rawSize   int
	verdict   *store.CachedVerdict
	record    *store.Record
	decodeErr error
}

// dump prints the selected prefixes of the store at dbPath to w.
func dump(w io.Writer, dbPath, kind string, now time.Time) error {
	switch kind {
	case kindVerdicts, kindHistory, kindAll:
	default:
		return fmt.Errorf("unknown --kind %q (want verdicts, history or all)", kind)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return errNoStore
	}

	// Read-only: safe to run next to a stopped service. Badger refuses to
	// open a directory a running service holds the lock on.
	db, err := store.OpenDB(store.Config{Path: dbPath, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open BadgerDB at %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	fmt.Fprintf(w, "Complexity store path: %s\n", dbPath)

	if kind == kindVerdicts || kind == kindAll {
		entries, err := scan(db, store.VerdictKeyPrefix, func(raw []byte, e *entry) error {
			var v store.CachedVerdict
			if err := msgpack.Unmarshal(raw, &v); err != nil {
				return err
			}
			e.verdict = &v
			return nil
		})
		if err != nil {
			return err
		}
		printVerdicts(w, entries, now)
	}

	if kind == kindHistory || kind == kindAll {
		entries, err := scan(db, store.HistoryRecordKeyPrefix, func(raw []byte, e *entry) error {
			var r store.Record
			if err := msgpack.Unmarshal(raw, &r); err != nil {
				return err
			}
			e.record = &r
			return nil
		})
		if err != nil {
			return err
		}
		printHistory(w, entries)
	}
	return nil
}

// scan collects every entry under prefix, decoding values with decode.
// Decode failures are kept on the entry rather than aborting the scan.
func scan(db *store.DB, prefix string, decode func([]byte, *entry) error) ([]entry, error) {
	var entries []entry

	err := db.WithReadTxn(context.Background(), func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			e := entry{key: string(item.Key())}

			// ExpiresAt is Unix seconds, 0 = no expiry.
			if expiresAt := item.ExpiresAt(); expiresAt > 0 {
				e.hasExpiry = true
				e.expiresAt = time.Unix(int64(expiresAt), 0)
			}

			raw, err := item.ValueCopy(nil)
			if err != nil {
				e.decodeErr = fmt.Errorf("copy value: %w", err)
				entries = append(entries, e)
				continue
			}
			e.rawSize = len(raw)

			if err := decode(raw, &e); err != nil {
				e.decodeErr = fmt.Errorf("msgpack decode: %w", err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read BadgerDB: %w", err)
	}
	return entries, nil
}

func printVerdicts(w io.Writer, entries []entry, now time.Time) {
	fmt.Fprintf(w, "\nVerdict cache: %d entr%s\n", len(entries), plural(len(entries), "y", "ies"))
	fmt.Fprintln(w, strings.Repeat("─", 80))

	for i, e := range entries {
		fmt.Fprintf(w, "\n[%d] Key:      %s\n", i+1, strings.TrimPrefix(e.key, store.VerdictKeyPrefix))
		fmt.Fprintf(w, "    TTL:      %s\n", formatTTL(e, now))
		fmt.Fprintf(w, "    Raw size: %d bytes\n", e.rawSize)

		if e.decodeErr != nil {
			fmt.Fprintf(w, "    DECODE ERROR: %v\n", e.decodeErr)
			continue
		}

		v := e.verdict
		fmt.Fprintf(w, "    Dialect:  %s\n", v.Dialect)
		fmt.Fprintf(w, "    Rule:     %s\n", v.Rule)
		fmt.Fprintf(w, "    Verdict:  time %s, space %s (%s)\n", v.Verdict.Time, v.Verdict.Space, v.Verdict.Category)
		features := make([]string, len(v.Features))
		for j, f := range v.Features {
			features[j] = string(f)
		}
		fmt.Fprintf(w, "    Features: [%s]\n", strings.Join(features, ", "))
		if v.CachedAtMilli > 0 {
			fmt.Fprintf(w, "    Cached:   %s\n", time.UnixMilli(v.CachedAtMilli).UTC().Format(time.RFC3339))
		}
	}
}

func printHistory(w io.Writer, entries []entry) {
	fmt.Fprintf(w, "\nHistory: %d record%s\n", len(entries), plural(len(entries), "", "s"))
	fmt.Fprintln(w, strings.Repeat("─", 80))

	for i, e := range entries {
		if e.decodeErr != nil {
			fmt.Fprintf(w, "\n[%d] Key: %s\n    DECODE ERROR: %v\n", i+1, e.key, e.decodeErr)
			continue
		}
		r := e.record
		fmt.Fprintf(w, "\n[%d] ID:       %s\n", i+1, r.ID)
		fmt.Fprintf(w, "    Created:  %s\n", time.UnixMilli(r.CreatedAtMilli).UTC().Format(time.RFC3339))
		fmt.Fprintf(w, "    Dialect:  %s\n", r.Dialect)
		fmt.Fprintf(w, "    Verdict:  time %s, space %s (rule %s, cached %t)\n",
			r.Verdict.Time, r.Verdict.Space, r.Rule, r.CachedResult)
		fmt.Fprintf(w, "    Preview:  %s\n", strings.ReplaceAll(r.Preview, "\n", "⏎"))
	}
}

func formatTTL(e entry, now time.Time) string {
	if !e.hasExpiry {
		return "no expiry set"
	}
	remaining := e.expiresAt.Sub(now)
	if remaining < 0 {
		return fmt.Sprintf("EXPIRED (%s ago)", (-remaining).Round(time.Second))
	}
	return fmt.Sprintf("%s remaining (expires %s)",
		remaining.Round(time.Second),
		e.expiresAt.UTC().Format("2006-01-02 15:04:05 MST"),
	)
}

// plural returns singular or plural suffix based on count.
func plural(n int, singular, pluralSuffix string) string {
	if n == 1 {
		return singular
	}
	return pluralSuffix
}

// fatalf prints to stderr and exits 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "complexity_cache_dump: "+format+"\n", args...)
	os.Exit(1)
}
