// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Default Rules
// =============================================================================

//go:embed catalog_rules.yaml
var defaultCatalogRulesYAML []byte

// MaxYAMLFileSize bounds the size of a rules document accepted by LoadCatalog.
const MaxYAMLFileSize = 1 << 20

// catalogTracerName is the OTel tracer name for catalog loading.
const catalogTracerName = "complexity.catalog"

// =============================================================================
// Rule Types
// =============================================================================

// Pattern is the text-matching part of a FeatureRule.
type Pattern struct {
	// Expr is an RE2 regular expression.
	Expr string `yaml:"expr"`

	// CaseInsensitive makes the expression ignore letter case.
	CaseInsensitive bool `yaml:"case_insensitive"`

	// Multiline lets "." match newlines so a rule can span lines.
	Multiline bool `yaml:"multiline"`
}

// compiledExpr returns Expr prefixed with the RE2 flags the pattern asks for.
func (p Pattern) compiledExpr() string {
	flags := ""
	if p.CaseInsensitive {
		flags += "i"
	}
	if p.Multiline {
		flags += "s"
	}
	if flags == "" {
		return p.Expr
	}
	return "(?" + flags + ")" + p.Expr
}

// FeatureRule is a named, dialect-scoped text predicate.
//
// Description:
//
//	Rules are built once by LoadCatalog and never mutated. The compiled
//	regexp is safe for concurrent use, so FeatureRule values may be shared
//	freely across goroutines.
type FeatureRule struct {
	Name    Feature
	Dialect Dialect
	Pattern Pattern

	re *regexp.Regexp
}

// Match reports whether the rule fires on snippet.
func (r FeatureRule) Match(snippet string) bool {
	return r.re.MatchString(snippet)
}

// ruleEntry is the YAML shape of a single rule.
type ruleEntry struct {
	Feature         Feature `yaml:"feature"`
	Expr            string  `yaml:"expr"`
	CaseInsensitive bool    `yaml:"case_insensitive"`
	Multiline       bool    `yaml:"multiline"`
}

// rulesDocument is the YAML shape of the whole rules document.
type rulesDocument struct {
	SharedRules []ruleEntry             `yaml:"shared_rules"`
	Dialects    map[Dialect][]ruleEntry `yaml:"dialects"`
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog holds the ordered FeatureRules for every supported dialect.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Catalog struct {
	rules   map[Dialect][]FeatureRule
	version string
}

// Rules returns the ordered rules for a dialect.
//
// Outputs:
//
//	[]FeatureRule - A copy of the dialect's rules in canonical feature order.
//	error - Wraps ErrUnknownDialect if the dialect has no rules.
func (c *Catalog) Rules(d Dialect) ([]FeatureRule, error) {
	rules, ok := c.rules[d]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, d)
	}
	out := make([]FeatureRule, len(rules))
	copy(out, rules)
	return out, nil
}

// Rule returns a single rule by dialect and feature name.
func (c *Catalog) Rule(d Dialect, f Feature) (FeatureRule, bool) {
	for _, r := range c.rules[d] {
		if r.Name == f {
			return r, true
		}
	}
	return FeatureRule{}, false
}

// Dialects returns the dialects covered by the catalog, in display order.
func (c *Catalog) Dialects() []Dialect {
	out := make([]Dialect, 0, len(c.rules))
	for _, d := range allDialects {
		if _, ok := c.rules[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Version is a short content hash of the source rules document. It changes
// whenever any rule changes.
func (c *Catalog) Version() string {
	return c.version
}

// =============================================================================
// Singleton Catalog
// =============================================================================

var (
	catalogMu      sync.RWMutex
	catalogOnce    sync.Once
	cachedCatalog  *Catalog
	catalogLoadErr error
)

// GetCatalog returns the process-wide catalog built from the embedded rules.
//
// Description:
//
//	Loads and compiles the embedded rules on first call and caches the
//	result (or the load error) for all subsequent calls.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*Catalog - The loaded catalog. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func GetCatalog(ctx context.Context) (*Catalog, error) {
	if ctx == nil {
		return nil, fmt.Errorf("GetCatalog: ctx must not be nil")
	}

	catalogMu.RLock()
	if cachedCatalog != nil || catalogLoadErr != nil {
		c, err := cachedCatalog, catalogLoadErr
		catalogMu.RUnlock()
		return c, err
	}
	catalogMu.RUnlock()

	catalogMu.Lock()
	defer catalogMu.Unlock()

	catalogOnce.Do(func() {
		cachedCatalog, catalogLoadErr = LoadCatalog(ctx, defaultCatalogRulesYAML)
	})

	return cachedCatalog, catalogLoadErr
}

// MustGetCatalog is GetCatalog for program initialization. It panics if the
// embedded rules are invalid, which can only happen on a broken build.
func MustGetCatalog() *Catalog {
	c, err := GetCatalog(context.Background())
	if err != nil {
		panic(fmt.Sprintf("complexity catalog: %v", err))
	}
	return c
}

// ResetCatalog clears the cached catalog for testing.
//
// Thread Safety: Safe for concurrent use.
func ResetCatalog() {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	cachedCatalog = nil
	catalogLoadErr = nil
	catalogOnce = sync.Once{}
}

// =============================================================================
// Loading
// =============================================================================

// LoadCatalog parses, validates and compiles a rules document.
//
// Description:
//
//	Every dialect receives the shared rules followed by its own structural
//	rules. The merged list is ordered by the canonical feature order so
//	that every dialect exposes the same 17 features in the same sequence.
//
// Inputs:
//
//	ctx - Context for tracing.
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*Catalog - The compiled catalog.
//	error - Non-nil if parsing, validation or compilation fails.
func LoadCatalog(ctx context.Context, data []byte) (*Catalog, error) {
	_, span := otel.Tracer(catalogTracerName).Start(ctx, "catalog.Load")
	defer span.End()

	if len(data) == 0 {
		return nil, fmt.Errorf("LoadCatalog: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadCatalog: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var doc rulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("LoadCatalog: parsing YAML: %w", err)
	}

	c := &Catalog{
		rules:   make(map[Dialect][]FeatureRule, len(allDialects)),
		version: contentVersion(data),
	}

	for _, d := range allDialects {
		entries, ok := doc.Dialects[d]
		if !ok {
			return nil, fmt.Errorf("LoadCatalog: dialect %q has no rules", d)
		}
		merged := make([]ruleEntry, 0, len(doc.SharedRules)+len(entries))
		merged = append(merged, doc.SharedRules...)
		merged = append(merged, entries...)

		rules, err := compileRules(d, merged)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		c.rules[d] = rules
	}

	for d := range doc.Dialects {
		if !d.Valid() {
			return nil, fmt.Errorf("LoadCatalog: %w: %q", ErrUnknownDialect, d)
		}
	}

	total := 0
	for _, rules := range c.rules {
		total += len(rules)
	}
	span.SetAttributes(
		attribute.Int("dialects", len(c.rules)),
		attribute.Int("rules", total),
		attribute.String("version", c.version),
	)

	slog.Info("complexity catalog loaded",
		slog.Int("dialects", len(c.rules)),
		slog.Int("rules", total),
		slog.String("version", c.version),
	)

	return c, nil
}

// compileRules validates one dialect's merged rule list and compiles it.
func compileRules(d Dialect, entries []ruleEntry) ([]FeatureRule, error) {
	seen := make(map[Feature]bool, len(entries))
	rules := make([]FeatureRule, 0, len(entries))

	for i, rs := range entries {
		if rs.Feature == "" {
			return nil, fmt.Errorf("dialect %q rule[%d]: feature must not be empty", d, i)
		}
		if !rs.Feature.IsKnown() {
			return nil, fmt.Errorf("dialect %q rule[%d]: unknown feature %q", d, i, rs.Feature)
		}
		if seen[rs.Feature] {
			return nil, fmt.Errorf("dialect %q: duplicate rule for feature %q", d, rs.Feature)
		}
		if rs.Expr == "" {
			return nil, fmt.Errorf("dialect %q feature %q: expr must not be empty", d, rs.Feature)
		}
		seen[rs.Feature] = true

		p := Pattern{Expr: rs.Expr, CaseInsensitive: rs.CaseInsensitive, Multiline: rs.Multiline}
		re, err := regexp.Compile(p.compiledExpr())
		if err != nil {
			return nil, fmt.Errorf("dialect %q feature %q: compiling expr: %w", d, rs.Feature, err)
		}
		rules = append(rules, FeatureRule{Name: rs.Feature, Dialect: d, Pattern: p, re: re})
	}

	for _, f := range allFeatures {
		if !seen[f] {
			return nil, fmt.Errorf("dialect %q: missing rule for feature %q", d, f)
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return featureIndex(rules[i].Name) < featureIndex(rules[j].Name)
	})
	return rules, nil
}

func featureIndex(f Feature) int {
	for i, known := range allFeatures {
		if f == known {
			return i
		}
	}
	return len(allFeatures)
}

// contentVersion returns the first 16 hex characters of SHA256(data).
func contentVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
