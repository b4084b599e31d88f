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

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
)

// FeatureSet maps each feature of a dialect to whether it was detected.
//
// A FeatureSet produced by Extract has exactly the dialect's feature names
// as keys. Missing keys read as false, which lets tests build partial sets.
type FeatureSet map[catalog.Feature]bool

// NewFeatureSet builds a FeatureSet with the given features set to true.
func NewFeatureSet(detected ...catalog.Feature) FeatureSet {
	fs := make(FeatureSet, len(detected))
	for _, f := range detected {
		fs[f] = true
	}
	return fs
}

// Has reports whether f was detected.
func (fs FeatureSet) Has(f catalog.Feature) bool {
	return fs[f]
}

// Detected returns the detected features in canonical order.
func (fs FeatureSet) Detected() []catalog.Feature {
	out := make([]catalog.Feature, 0, len(fs))
	for _, f := range catalog.AllFeatures() {
		if fs[f] {
			out = append(out, f)
		}
	}
	return out
}

// Extract evaluates every rule registered for dialect against snippet.
//
// Description:
//
//	Normalizes the snippet with catalog.NormalizeSnippet, then runs the
//	dialect's rules in catalog order and records one boolean per feature.
//	The catalog is read-only and nothing outside the returned map is
//	written, so concurrent calls need no coordination. ctx is checked
//	before each rule; a passed deadline aborts with ErrTimeout.
//
// Inputs:
//
//	ctx - Bounds the evaluation. Must not be nil.
//	cat - The compiled catalog. Must not be nil.
//	snippet - Source text. May be empty.
//	dialect - The declared dialect.
//
// Outputs:
//
//	FeatureSet - One entry per dialect feature.
//	error - ErrInvalidInput for an unknown dialect, ErrTimeout on deadline.
//
// Thread Safety: Safe for concurrent use.
func Extract(ctx context.Context, cat *catalog.Catalog, snippet string, dialect catalog.Dialect) (FeatureSet, error) {
	if cat == nil {
		return nil, fmt.Errorf("Extract: catalog must not be nil")
	}

	rules, err := cat.Rules(dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	snippet = catalog.NormalizeSnippet(snippet)
	fs := make(FeatureSet, len(rules))
	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err)
		}
		fs[r.Name] = r.Match(snippet)
	}
	return fs, nil
}
