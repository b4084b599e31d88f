// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package complexity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/config"
	"github.com/AleutianAI/AleutianBigO/services/complexity/store"
	"github.com/gin-gonic/gin"
)

const jsBinarySearch = `function binarySearch(arr, target) {
  let left = 0;
  let right = arr.length - 1;
  while (left <= right) {
    let mid = left + Math.floor((right - left) / 2);
    if (arr[mid] === target) return mid;
    if (arr[mid] < target) left = mid + 1;
    else right = mid - 1;
  }
  return -1;
}`

const pyNestedLoops = `def pair_sums(values):
    total = 0
    for a in values:
        for b in values:
            total += a * b
    return total`

const jsWordCount = `const counts = new Map();
for (const word of words) counts.set(word, (counts.get(word) || 0) + 1);`

// testServiceOptions controls newTestService.
type testServiceOptions struct {
	// stores attaches an in-memory verdict cache and history store.
	stores bool

	// configure adjusts the default config before the service is built.
	configure func(cfg *config.ServiceConfig)
}

func newTestService(t *testing.T, opts testServiceOptions) *Service {
	t.Helper()

	cfg := config.DefaultServiceConfig()
	cfg.RateLimitRPS = 0
	cfg.RateLimitBurst = 0
	if opts.configure != nil {
		opts.configure(cfg)
	}

	cat, err := catalog.GetCatalog(t.Context())
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}

	var svcOpts []ServiceOption
	if opts.stores {
		db, err := store.OpenDB(store.InMemoryConfig())
		if err != nil {
			t.Fatalf("OpenDB: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })

		cache, err := store.NewVerdictCache(cfg.CacheSize, db, time.Hour, nil)
		if err != nil {
			t.Fatalf("NewVerdictCache: %v", err)
		}
		history, err := store.NewHistoryStore(db, nil)
		if err != nil {
			t.Fatalf("NewHistoryStore: %v", err)
		}
		svcOpts = append(svcOpts, WithVerdictCache(cache), WithHistory(history))
	}

	svc, err := NewService(cfg, cat, svcOpts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// setupTestRouter creates a Gin router in test mode with all complexity
// routes registered under /v1.
func setupTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/v1")
	RegisterRoutes(v1, NewHandlers(svc))
	return router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
