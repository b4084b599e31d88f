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
	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/engine"
	"github.com/AleutianAI/AleutianBigO/services/complexity/store"
)

// =============================================================================
// Requests
// =============================================================================

// AnalyzeRequest is the body of POST /v1/complexity/analyze.
type AnalyzeRequest struct {
	// Snippet is the source text to analyze.
	Snippet string `json:"snippet"`

	// Dialect is a dialect name or alias (javascript, js, python, py,
	// java, cpp, c++).
	Dialect string `json:"dialect"`

	// IncludeFeatures adds the detected feature list to the response.
	IncludeFeatures bool `json:"include_features,omitempty"`
}

// BatchAnalyzeRequest is the body of POST /v1/complexity/analyze/batch.
type BatchAnalyzeRequest struct {
	Items []AnalyzeRequest `json:"items" binding:"required,min=1"`
}

// =============================================================================
// Responses
// =============================================================================

// AnalyzeResponse is the result of one analysis.
type AnalyzeResponse struct {
	Time        string `json:"time"`
	Space       string `json:"space"`
	Explanation string `json:"explanation"`
	Category    string `json:"category"`

	Dialect catalog.Dialect `json:"dialect"`

	// Rule is the decision rule that produced the verdict.
	Rule string `json:"rule"`

	// Features is the list of detected features. Only set when requested.
	Features []catalog.Feature `json:"features,omitempty"`

	// Cached is true when the verdict came from the verdict cache.
	Cached bool `json:"cached"`

	// HistoryID identifies the stored history record, if one was written.
	HistoryID string `json:"history_id,omitempty"`

	// DurationMicros is the analysis time. Zero for cached results.
	DurationMicros int64 `json:"duration_micros"`
}

// Verdict returns the verdict portion of the response.
func (r *AnalyzeResponse) Verdict() engine.Verdict {
	return engine.Verdict{
		Time:        r.Time,
		Space:       r.Space,
		Explanation: r.Explanation,
		Category:    r.Category,
	}
}

// BatchItemResult is one entry of a batch response. Exactly one of Result
// and Error is set.
type BatchItemResult struct {
	Index  int              `json:"index"`
	Result *AnalyzeResponse `json:"result,omitempty"`
	Error  *ErrorResponse   `json:"error,omitempty"`
}

// BatchAnalyzeResponse preserves request order.
type BatchAnalyzeResponse struct {
	Results   []BatchItemResult `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// FeaturesResponse is the result of POST /v1/complexity/features.
type FeaturesResponse struct {
	Dialect  catalog.Dialect          `json:"dialect"`
	Features map[catalog.Feature]bool `json:"features"`
	Detected []catalog.Feature        `json:"detected"`
}

// DialectInfo describes one supported dialect.
type DialectInfo struct {
	Name        catalog.Dialect `json:"name"`
	DisplayName string          `json:"display_name"`
	Aliases     []string        `json:"aliases,omitempty"`
}

// DialectsResponse lists supported dialects.
type DialectsResponse struct {
	Dialects       []DialectInfo `json:"dialects"`
	CatalogVersion string        `json:"catalog_version"`
}

// ExampleResponse is a starter snippet for a dialect.
type ExampleResponse struct {
	Dialect catalog.Dialect `json:"dialect"`
	Snippet string          `json:"snippet"`
}

// RuleInfo describes one decision rule.
type RuleInfo struct {
	Priority int    `json:"priority"`
	Name     string `json:"name"`
}

// RulesResponse lists the decision rules in priority order.
type RulesResponse struct {
	Rules    []RuleInfo        `json:"rules"`
	Features []catalog.Feature `json:"features"`
}

// HistoryListResponse is a page of history records, newest first.
type HistoryListResponse struct {
	Records []*store.Record `json:"records"`
	Total   int             `json:"total"`
}

// HealthResponse is returned by the health and readiness endpoints.
type HealthResponse struct {
	Status         string `json:"status"`
	CatalogVersion string `json:"catalog_version,omitempty"`
	HistoryEnabled bool   `json:"history_enabled"`
	CachedVerdicts int    `json:"cached_verdicts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeEmptySnippet    = "EMPTY_SNIPPET"
	CodeInvalidDialect  = "INVALID_DIALECT"
	CodeSnippetTooLarge = "SNIPPET_TOO_LARGE"
	CodeBatchTooLarge   = "BATCH_TOO_LARGE"
	CodeTimeout         = "ANALYSIS_TIMEOUT"
	CodeNotFound        = "NOT_FOUND"
	CodeHistoryDisabled = "HISTORY_NOT_AVAILABLE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeCancelled       = "REQUEST_CANCELLED"
	CodeInternal        = "INTERNAL_ERROR"
)
