// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package complexity serves heuristic time and space complexity estimates
// for source snippets over HTTP.
package complexity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/config"
	"github.com/AleutianAI/AleutianBigO/services/complexity/engine"
	"github.com/AleutianAI/AleutianBigO/services/complexity/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const serviceTracerName = "complexity.service"

var (
	// ErrEmptySnippet is returned for a blank snippet. Nothing is analyzed.
	ErrEmptySnippet = fmt.Errorf("%w: snippet is empty", engine.ErrInvalidInput)

	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize.
	ErrBatchTooLarge = fmt.Errorf("%w: too many batch items", engine.ErrInvalidInput)

	// ErrEmptyBatch is returned for a batch without items.
	ErrEmptyBatch = fmt.Errorf("%w: batch has no items", engine.ErrInvalidInput)

	// ErrHistoryDisabled is returned by history operations when no
	// history store is configured.
	ErrHistoryDisabled = errors.New("history is not enabled")
)

// Service runs analyses and manages the verdict cache and history.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	cfg      *config.ServiceConfig
	catalog  *catalog.Catalog
	analyzer *engine.Analyzer
	cache    *store.VerdictCache
	history  *store.HistoryStore
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithVerdictCache sets the verdict cache. Without one nothing is cached.
func WithVerdictCache(c *store.VerdictCache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithHistory sets the history store. Without one history is disabled.
func WithHistory(h *store.HistoryStore) ServiceOption {
	return func(s *Service) {
		s.history = h
	}
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service.
//
// Inputs:
//
//	cfg - Validated service settings. Must not be nil.
//	cat - The compiled pattern catalog. Must not be nil.
//	opts - Optional cache, history store and logger.
//
// Outputs:
//
//	*Service - The service.
//	error - Non-nil if cfg or cat is nil.
func NewService(cfg *config.ServiceConfig, cat *catalog.Catalog, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("NewService: config must not be nil")
	}
	if cat == nil {
		return nil, fmt.Errorf("NewService: catalog must not be nil")
	}

	s := &Service{
		cfg:     cfg,
		catalog: cat,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	analyzer, err := engine.NewAnalyzer(cat,
		engine.WithMaxSnippetBytes(cfg.MaxSnippetBytes),
		engine.WithMatchTimeout(cfg.MatchTimeout),
		engine.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("NewService: %w", err)
	}
	s.analyzer = analyzer

	return s, nil
}

// Config returns the service settings.
func (s *Service) Config() *config.ServiceConfig {
	return s.cfg
}

// Catalog returns the pattern catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// HistoryEnabled reports whether analyses are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// =============================================================================
// Analysis
// =============================================================================

// Analyze estimates the complexity of one snippet.
//
// Description:
//
//	Rejects blank snippets and unknown dialects, then serves the verdict
//	from the cache or runs the analyzer and caches the result. When
//	history is enabled the analysis is recorded; a failed history write
//	is logged and does not fail the request.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing. Must not be nil.
//	req - The request.
//
// Outputs:
//
//	*AnalyzeResponse - The verdict and metadata.
//	error - ErrEmptySnippet, engine.ErrInvalidInput (wrapping
//	  catalog.ErrUnknownDialect or engine.ErrSnippetTooLarge) or
//	  engine.ErrTimeout.
//
// Thread Safety: Safe for concurrent use.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "service.Analyze",
		trace.WithAttributes(
			attribute.String("dialect", req.Dialect),
			attribute.Int("snippet_bytes", len(req.Snippet)),
		),
	)
	defer span.End()

	resp, err := s.analyze(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("cached", resp.Cached),
		attribute.String("rule", resp.Rule),
	)
	return resp, nil
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if strings.TrimSpace(req.Snippet) == "" {
		return nil, ErrEmptySnippet
	}
	dialect, err := catalog.ParseDialect(req.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}
	if len(req.Snippet) > s.cfg.MaxSnippetBytes {
		return nil, fmt.Errorf("%w (%d > %d bytes)", engine.ErrSnippetTooLarge, len(req.Snippet), s.cfg.MaxSnippetBytes)
	}

	key := store.CacheKey(s.catalog.Version(), dialect, req.Snippet)

	var (
		resp     *AnalyzeResponse
		features []catalog.Feature
		duration time.Duration
	)

	if cached := s.lookupCache(ctx, key); cached != nil {
		features = cached.FeatureSet().Detected()
		resp = &AnalyzeResponse{
			Time:        cached.Verdict.Time,
			Space:       cached.Verdict.Space,
			Explanation: cached.Verdict.Explanation,
			Category:    cached.Verdict.Category,
			Dialect:     dialect,
			Rule:        cached.Rule,
			Cached:      true,
		}
	} else {
		analysis, err := s.analyzer.Analyze(ctx, req.Snippet, dialect)
		if err != nil {
			return nil, err
		}
		features = analysis.Features.Detected()
		duration = analysis.Duration
		resp = &AnalyzeResponse{
			Time:           analysis.Verdict.Time,
			Space:          analysis.Verdict.Space,
			Explanation:    analysis.Verdict.Explanation,
			Category:       analysis.Verdict.Category,
			Dialect:        dialect,
			Rule:           analysis.Rule,
			DurationMicros: duration.Microseconds(),
		}
		s.storeCache(ctx, key, store.CachedVerdict{
			Verdict:  analysis.Verdict,
			Rule:     analysis.Rule,
			Dialect:  dialect,
			Features: features,
		})
	}

	if req.IncludeFeatures {
		resp.Features = features
		if resp.Features == nil {
			resp.Features = []catalog.Feature{}
		}
	}

	if s.history != nil {
		rec, err := s.history.Save(ctx, store.Record{
			Dialect:        dialect,
			SnippetHash:    store.SnippetHash(req.Snippet),
			Preview:        req.Snippet,
			Verdict:        resp.Verdict(),
			Rule:           resp.Rule,
			CachedResult:   resp.Cached,
			DurationMicros: duration.Microseconds(),
		})
		if err != nil {
			s.logger.Warn("history write failed",
				slog.String("dialect", string(dialect)),
				slog.String("error", err.Error()),
			)
		} else {
			resp.HistoryID = rec.ID
		}
	}

	return resp, nil
}

// lookupCache returns the cached verdict for key, or nil. Storage errors
// are logged and treated as misses.
func (s *Service) lookupCache(ctx context.Context, key string) *store.CachedVerdict {
	if s.cache == nil {
		return nil
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("verdict cache read failed", slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return nil
	}
	return cached
}

func (s *Service) storeCache(ctx context.Context, key string, v store.CachedVerdict) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, v); err != nil {
		s.logger.Warn("verdict cache write failed", slog.String("error", err.Error()))
	}
}

// AnalyzeBatch analyzes several snippets with bounded concurrency.
//
// Description:
//
//	Items are analyzed independently; one failing item does not affect
//	the others. Results keep request order. At most BatchConcurrency
//	analyses run at once.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	reqs - The items. Between 1 and MaxBatchSize entries.
//
// Outputs:
//
//	*BatchAnalyzeResponse - One result per item.
//	error - ErrEmptyBatch or ErrBatchTooLarge. Item failures are reported
//	  per item, not here.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []AnalyzeRequest) (*BatchAnalyzeResponse, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(reqs) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w (%d > %d)", ErrBatchTooLarge, len(reqs), s.cfg.MaxBatchSize)
	}

	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "service.AnalyzeBatch",
		trace.WithAttributes(attribute.Int("items", len(reqs))),
	)
	defer span.End()

	results := make([]BatchItemResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			resp, err := s.Analyze(gctx, req)
			results[i] = BatchItemResult{Index: i, Result: resp}
			if err != nil {
				_, body := ErrorStatus(err)
				results[i].Error = &body
			}
			// Item errors are reported in place, never returned.
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchAnalyzeResponse{Results: results}
	for _, r := range results {
		if r.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}

	span.SetAttributes(
		attribute.Int("succeeded", out.Succeeded),
		attribute.Int("failed", out.Failed),
	)
	return out, nil
}

// ExtractFeatures returns the raw feature set for a snippet. Blank
// snippets are allowed here and detect nothing.
func (s *Service) ExtractFeatures(ctx context.Context, req AnalyzeRequest) (*FeaturesResponse, error) {
	dialect, err := catalog.ParseDialect(req.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}
	if len(req.Snippet) > s.cfg.MaxSnippetBytes {
		return nil, fmt.Errorf("%w (%d > %d bytes)", engine.ErrSnippetTooLarge, len(req.Snippet), s.cfg.MaxSnippetBytes)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.MatchTimeout)
	defer cancel()

	fs, err := engine.Extract(ctx, s.catalog, req.Snippet, dialect)
	if err != nil {
		return nil, err
	}
	return &FeaturesResponse{
		Dialect:  dialect,
		Features: fs,
		Detected: fs.Detected(),
	}, nil
}

// =============================================================================
// Reference Data
// =============================================================================

// Dialects lists the supported dialects with their accepted aliases.
func (s *Service) Dialects() DialectsResponse {
	aliases := map[catalog.Dialect][]string{
		catalog.DialectJavaScript: {"js"},
		catalog.DialectPython:     {"py"},
		catalog.DialectCPP:        {"c++"},
	}
	out := DialectsResponse{CatalogVersion: s.catalog.Version()}
	for _, d := range s.catalog.Dialects() {
		out.Dialects = append(out.Dialects, DialectInfo{
			Name:        d,
			DisplayName: d.DisplayName(),
			Aliases:     aliases[d],
		})
	}
	return out
}

// Rules lists the decision rules in priority order plus the feature names.
func (s *Service) Rules() RulesResponse {
	rules := engine.DecisionRules()
	out := RulesResponse{
		Rules:    make([]RuleInfo, len(rules)),
		Features: catalog.AllFeatures(),
	}
	for i, r := range rules {
		out.Rules[i] = RuleInfo{Priority: i + 1, Name: r.Name}
	}
	return out
}

// =============================================================================
// History
// =============================================================================

// ListHistory returns up to limit records, newest first. limit is clamped
// to the configured HistoryLimit.
func (s *Service) ListHistory(ctx context.Context, limit int) (*HistoryListResponse, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.history.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &HistoryListResponse{Records: records, Total: total}, nil
}

// GetHistory returns one record. Returns store.ErrNotFound if absent.
func (s *Service) GetHistory(ctx context.Context, id string) (*store.Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Get(ctx, id)
}

// DeleteHistory removes one record. Returns store.ErrNotFound if absent.
func (s *Service) DeleteHistory(ctx context.Context, id string) error {
	if s.history == nil {
		return ErrHistoryDisabled
	}
	return s.history.Delete(ctx, id)
}

// =============================================================================
// Health
// =============================================================================

// Health reports liveness. It never fails.
func (s *Service) Health() HealthResponse {
	resp := HealthResponse{
		Status:         "healthy",
		CatalogVersion: s.catalog.Version(),
		HistoryEnabled: s.history != nil,
	}
	if s.cache != nil {
		resp.CachedVerdicts = s.cache.Len()
	}
	return resp
}

// Ready reports whether the service can serve analyses, including a
// round trip to the history database when history is enabled.
func (s *Service) Ready(ctx context.Context) error {
	if s.history != nil {
		if _, err := s.history.Count(ctx); err != nil {
			return fmt.Errorf("history store: %w", err)
		}
	}
	return nil
}
