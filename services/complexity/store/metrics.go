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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheLookupsTotal counts verdict cache lookups.
	// Labels: tier (memory, badger), result (hit, miss, error)
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complexity",
		Subsystem: "store",
		Name:      "cache_lookups_total",
		Help:      "Verdict cache lookups by tier and result",
	}, []string{"tier", "result"})

	// historyWritesTotal counts history store writes.
	// Labels: op (save, delete), status (success, error)
	historyWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complexity",
		Subsystem: "store",
		Name:      "history_writes_total",
		Help:      "History store writes by operation and status",
	}, []string{"op", "status"})
)
