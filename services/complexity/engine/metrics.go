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
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the Analysis Engine
// =============================================================================

var (
	// analysesTotal counts completed analyses.
	// Labels: dialect, rule (decision rule that fired), status (success, error)
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complexity",
		Subsystem: "engine",
		Name:      "analyses_total",
		Help:      "Total analyses by dialect, decision rule and status",
	}, []string{"dialect", "rule", "status"})

	// analysisDurationSeconds measures extraction + classification time.
	// Labels: dialect
	analysisDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "complexity",
		Subsystem: "engine",
		Name:      "analysis_duration_seconds",
		Help:      "Time spent extracting features and classifying a snippet",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"dialect"})

	// featureHitsTotal counts detected features.
	// Labels: dialect, feature
	featureHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complexity",
		Subsystem: "engine",
		Name:      "feature_hits_total",
		Help:      "Detected features by dialect",
	}, []string{"dialect", "feature"})

	// analysisErrorsTotal counts failed analyses.
	// Labels: error_type (invalid_input, snippet_too_large, timeout, canceled, unknown)
	analysisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "complexity",
		Subsystem: "engine",
		Name:      "errors_total",
		Help:      "Failed analyses by error type",
	}, []string{"error_type"})
)

// recordAnalysis records metrics for a successful analysis.
func recordAnalysis(dialect catalog.Dialect, rule string, fs FeatureSet, duration time.Duration) {
	analysesTotal.WithLabelValues(dialect.String(), rule, "success").Inc()
	analysisDurationSeconds.WithLabelValues(dialect.String()).Observe(duration.Seconds())
	for _, f := range fs.Detected() {
		featureHitsTotal.WithLabelValues(dialect.String(), string(f)).Inc()
	}
}

// recordAnalysisError records metrics for a failed analysis. The dialect
// label is dropped because an invalid dialect would be unbounded.
func recordAnalysisError(err error) {
	analysisErrorsTotal.WithLabelValues(errorType(err)).Inc()
	analysesTotal.WithLabelValues("", "", "error").Inc()
}
