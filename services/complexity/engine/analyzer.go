// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// engineTracerName is the OTel tracer name for analysis spans.
	engineTracerName = "complexity.engine"

	// DefaultMaxSnippetBytes caps the snippet size accepted by Analyze.
	DefaultMaxSnippetBytes = 64 * 1024

	// DefaultMatchTimeout bounds feature extraction for one snippet.
	DefaultMatchTimeout = 2 * time.Second
)

// Analysis is the full outcome of one Analyze call.
type Analysis struct {
	// Verdict is the augmented classification.
	Verdict Verdict `json:"verdict"`

	// Features is the extracted feature set.
	Features FeatureSet `json:"features"`

	// Rule is the decision rule that produced the verdict.
	Rule string `json:"rule"`

	// Dialect is the dialect the snippet was analyzed as.
	Dialect catalog.Dialect `json:"dialect"`

	// Duration is the wall time spent in Analyze.
	Duration time.Duration `json:"duration"`
}

// Analyzer runs the extract, classify, augment pipeline against a catalog.
//
// Thread Safety: Safe for concurrent use. An Analyzer holds no mutable state.
type Analyzer struct {
	catalog         *catalog.Catalog
	maxSnippetBytes int
	matchTimeout    time.Duration
	logger          *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMaxSnippetBytes sets the snippet size limit. Values <= 0 disable it.
func WithMaxSnippetBytes(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxSnippetBytes = n
	}
}

// WithMatchTimeout sets the extraction deadline. Values <= 0 disable it.
func WithMatchTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.matchTimeout = d
	}
}

// WithLogger sets the analyzer's logger.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an Analyzer over cat.
//
// Inputs:
//
//	cat - The compiled catalog. Must not be nil.
//	opts - Optional settings.
//
// Outputs:
//
//	*Analyzer - The analyzer.
//	error - Non-nil if cat is nil.
func NewAnalyzer(cat *catalog.Catalog, opts ...AnalyzerOption) (*Analyzer, error) {
	if cat == nil {
		return nil, fmt.Errorf("NewAnalyzer: catalog must not be nil")
	}
	a := &Analyzer{
		catalog:         cat,
		maxSnippetBytes: DefaultMaxSnippetBytes,
		matchTimeout:    DefaultMatchTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Catalog returns the catalog the analyzer reads.
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// Analyze estimates the time and space complexity of snippet.
//
// Description:
//
//	Validates the dialect and snippet size, extracts features under the
//	match deadline, classifies the feature set and applies the
//	data-structure space correction. Either a complete Analysis or an
//	error is returned, never a partial verdict.
//
//	An empty snippet is legal and yields the default verdict.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing. Must not be nil.
//	snippet - Source text.
//	dialect - The declared dialect.
//
// Outputs:
//
//	Analysis - The verdict plus the features and rule behind it.
//	error - ErrInvalidInput (unknown dialect, oversize snippet) or
//	  ErrTimeout (extraction missed the deadline).
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) Analyze(ctx context.Context, snippet string, dialect catalog.Dialect) (Analysis, error) {
	if ctx == nil {
		return Analysis{}, fmt.Errorf("Analyze: ctx must not be nil")
	}

	ctx, span := otel.Tracer(engineTracerName).Start(ctx, "engine.Analyze",
		trace.WithAttributes(
			attribute.String("dialect", string(dialect)),
			attribute.Int("snippet_bytes", len(snippet)),
		),
	)
	defer span.End()

	start := time.Now()

	result, err := a.analyze(ctx, snippet, dialect)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errorType(err))
		recordAnalysisError(err)
		a.logger.Debug("complexity analysis failed",
			slog.String("dialect", string(dialect)),
			slog.Int("snippet_bytes", len(snippet)),
			slog.String("error_type", errorType(err)),
			slog.String("error", err.Error()),
		)
		return Analysis{}, err
	}

	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("rule", result.Rule),
		attribute.String("time", result.Verdict.Time),
		attribute.String("space", result.Verdict.Space),
		attribute.String("category", result.Verdict.Category),
	)
	recordAnalysis(dialect, result.Rule, result.Features, result.Duration)

	a.logger.Debug("complexity analysis completed",
		slog.String("dialect", string(dialect)),
		slog.String("rule", result.Rule),
		slog.String("time", result.Verdict.Time),
		slog.String("space", result.Verdict.Space),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, snippet string, dialect catalog.Dialect) (Analysis, error) {
	if !dialect.Valid() {
		return Analysis{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, catalog.ErrUnknownDialect, dialect)
	}
	if a.maxSnippetBytes > 0 && len(snippet) > a.maxSnippetBytes {
		return Analysis{}, fmt.Errorf("%w (%d > %d bytes)", ErrSnippetTooLarge, len(snippet), a.maxSnippetBytes)
	}

	fs, err := a.extractWithDeadline(ctx, snippet, dialect)
	if err != nil {
		return Analysis{}, err
	}

	verdict, rule := ClassifyWithRule(fs)
	return Analysis{
		Verdict:  Augment(verdict, fs),
		Features: fs,
		Rule:     rule,
		Dialect:  dialect,
	}, nil
}

// extractWithDeadline runs Extract in its own goroutine so a deadline is
// honored even while a single rule is being matched.
func (a *Analyzer) extractWithDeadline(ctx context.Context, snippet string, dialect catalog.Dialect) (FeatureSet, error) {
	if a.matchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.matchTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	type extractResult struct {
		fs  FeatureSet
		err error
	}
	done := make(chan extractResult, 1)
	go func() {
		fs, err := Extract(ctx, a.catalog, snippet, dialect)
		done <- extractResult{fs: fs, err: err}
	}()

	select {
	case r := <-done:
		return r.fs, r.err
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

// =============================================================================
// Package-level convenience
// =============================================================================

// Analyze runs a default Analyzer over the process-wide catalog and
// returns only the verdict.
func Analyze(ctx context.Context, snippet string, dialect catalog.Dialect) (Verdict, error) {
	a, err := NewAnalyzer(catalog.MustGetCatalog())
	if err != nil {
		return Verdict{}, err
	}
	result, err := a.Analyze(ctx, snippet, dialect)
	if err != nil {
		return Verdict{}, err
	}
	return result.Verdict, nil
}
