// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the complexity service settings.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Defaults
// =============================================================================

//go:embed service_config.yaml
var defaultServiceConfigYAML []byte

// MaxYAMLFileSize is the maximum accepted config document size.
const MaxYAMLFileSize = 64 * 1024

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMPLEXITY_"

const configTracerName = "complexity.config"

// =============================================================================
// Service Configuration Types
// =============================================================================

// ServiceConfig holds the complexity service settings.
//
// Description:
//
//	Loaded from the embedded defaults, optionally replaced by a YAML file,
//	then overridden field by field from COMPLEXITY_* environment variables.
//	Every field is validated after overrides are applied.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type ServiceConfig struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// MaxSnippetBytes caps the accepted snippet size.
	MaxSnippetBytes int `yaml:"max_snippet_bytes" validate:"min=1,max=1048576"`

	// MatchTimeout bounds feature extraction for one snippet.
	MatchTimeout time.Duration `yaml:"match_timeout" validate:"gte=1ms,lte=1m"`

	// CacheSize is the in-memory verdict LRU capacity. 0 disables the LRU.
	CacheSize int `yaml:"cache_size" validate:"min=0,max=1000000"`

	// CacheTTL is how long persisted verdicts stay valid. 0 means forever.
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`

	// DataDir is the BadgerDB directory. Empty runs Badger in memory.
	DataDir string `yaml:"data_dir"`

	// SyncWrites fsyncs every Badger write. Ignored for in-memory stores.
	SyncWrites bool `yaml:"sync_writes"`

	// HistoryEnabled controls whether analyses are recorded.
	HistoryEnabled bool `yaml:"history_enabled"`

	// HistoryLimit is the largest page the history endpoint returns.
	HistoryLimit int `yaml:"history_limit" validate:"min=1,max=1000"`

	// RateLimitRPS is the sustained per-client request rate. 0 disables.
	RateLimitRPS float64 `yaml:"rate_limit_rps" validate:"gte=0"`

	// RateLimitBurst is the per-client burst size.
	RateLimitBurst int `yaml:"rate_limit_burst" validate:"gte=0"`

	// BatchConcurrency bounds parallel analyses within one batch request.
	BatchConcurrency int `yaml:"batch_concurrency" validate:"min=1,max=64"`

	// MaxBatchSize is the most snippets one batch request may carry.
	MaxBatchSize int `yaml:"max_batch_size" validate:"min=1,max=1000"`
}

// =============================================================================
// Singleton Service Config
// =============================================================================

var (
	serviceConfigMu      sync.RWMutex
	serviceConfigOnce    sync.Once
	cachedServiceConfig  *ServiceConfig
	serviceConfigLoadErr error
)

// GetServiceConfig returns the process-wide configuration.
//
// Description:
//
//	Loads the embedded defaults plus environment overrides on first call
//	and caches the result (or the error) for subsequent calls.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*ServiceConfig - The loaded configuration. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func GetServiceConfig(ctx context.Context) (*ServiceConfig, error) {
	if ctx == nil {
		return nil, fmt.Errorf("GetServiceConfig: ctx must not be nil")
	}

	serviceConfigMu.RLock()
	if cachedServiceConfig != nil || serviceConfigLoadErr != nil {
		cfg, err := cachedServiceConfig, serviceConfigLoadErr
		serviceConfigMu.RUnlock()
		return cfg, err
	}
	serviceConfigMu.RUnlock()

	serviceConfigMu.Lock()
	defer serviceConfigMu.Unlock()

	serviceConfigOnce.Do(func() {
		cachedServiceConfig, serviceConfigLoadErr = LoadServiceConfig(ctx, defaultServiceConfigYAML, os.LookupEnv)
	})

	return cachedServiceConfig, serviceConfigLoadErr
}

// ResetServiceConfig clears the cached config for testing.
//
// Thread Safety: Safe for concurrent use.
func ResetServiceConfig() {
	serviceConfigMu.Lock()
	defer serviceConfigMu.Unlock()
	cachedServiceConfig = nil
	serviceConfigLoadErr = nil
	serviceConfigOnce = sync.Once{}
}

// DefaultServiceConfig returns the embedded defaults without environment
// overrides.
func DefaultServiceConfig() *ServiceConfig {
	cfg, err := LoadServiceConfig(context.Background(), defaultServiceConfigYAML, nil)
	if err != nil {
		panic(fmt.Sprintf("embedded service config: %v", err))
	}
	return cfg
}

// LoadServiceConfigFile reads a YAML file and loads it like
// GetServiceConfig does, with environment overrides.
func LoadServiceConfigFile(ctx context.Context, path string) (*ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadServiceConfigFile: %w", err)
	}
	return LoadServiceConfig(ctx, data, os.LookupEnv)
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// LoadServiceConfig parses, overrides and validates a config document.
//
// Description:
//
//	Fields absent from data keep the embedded defaults, so a file only
//	needs the settings it changes.
//
// Inputs:
//
//	ctx - Context for tracing.
//	data - Raw YAML bytes.
//	lookup - Environment lookup. Nil skips environment overrides.
//
// Outputs:
//
//	*ServiceConfig - The validated configuration.
//	error - Non-nil if parsing, an override or validation fails.
func LoadServiceConfig(ctx context.Context, data []byte, lookup LookupEnvFunc) (*ServiceConfig, error) {
	_, span := otel.Tracer(configTracerName).Start(ctx, "config.LoadServiceConfig")
	defer span.End()

	if len(data) == 0 {
		return nil, fmt.Errorf("LoadServiceConfig: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadServiceConfig: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg ServiceConfig
	if err := yaml.Unmarshal(defaultServiceConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("LoadServiceConfig: parsing defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadServiceConfig: parsing YAML: %w", err)
	}

	if lookup != nil {
		if err := applyEnvOverrides(&cfg, lookup); err != nil {
			return nil, fmt.Errorf("LoadServiceConfig: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadServiceConfig: validation: %w", err)
	}

	span.SetAttributes(
		attribute.Int("port", cfg.Port),
		attribute.Int("max_snippet_bytes", cfg.MaxSnippetBytes),
		attribute.String("match_timeout", cfg.MatchTimeout.String()),
		attribute.Bool("persistent", cfg.DataDir != ""),
	)

	slog.Info("complexity service config loaded",
		slog.Int("port", cfg.Port),
		slog.Int("max_snippet_bytes", cfg.MaxSnippetBytes),
		slog.Duration("match_timeout", cfg.MatchTimeout),
		slog.Int("cache_size", cfg.CacheSize),
		slog.String("data_dir", cfg.DataDir),
	)

	return &cfg, nil
}

// =============================================================================
// Validation
// =============================================================================

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field against its bounds.
func (c *ServiceConfig) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return err
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return fmt.Errorf("rate_limit_burst must be positive when rate_limit_rps is set")
	}
	return nil
}

// =============================================================================
// Environment Overrides
// =============================================================================

// envBinding ties one environment variable to one config field.
type envBinding struct {
	name string
	set  func(cfg *ServiceConfig, value string) error
}

var envBindings = []envBinding{
	{"PORT", intSetter(func(c *ServiceConfig) *int { return &c.Port })},
	{"MAX_SNIPPET_BYTES", intSetter(func(c *ServiceConfig) *int { return &c.MaxSnippetBytes })},
	{"MATCH_TIMEOUT", durationSetter(func(c *ServiceConfig) *time.Duration { return &c.MatchTimeout })},
	{"CACHE_SIZE", intSetter(func(c *ServiceConfig) *int { return &c.CacheSize })},
	{"CACHE_TTL", durationSetter(func(c *ServiceConfig) *time.Duration { return &c.CacheTTL })},
	{"DATA_DIR", func(c *ServiceConfig, v string) error { c.DataDir = v; return nil }},
	{"SYNC_WRITES", boolSetter(func(c *ServiceConfig) *bool { return &c.SyncWrites })},
	{"HISTORY_ENABLED", boolSetter(func(c *ServiceConfig) *bool { return &c.HistoryEnabled })},
	{"HISTORY_LIMIT", intSetter(func(c *ServiceConfig) *int { return &c.HistoryLimit })},
	{"RATE_LIMIT_RPS", func(c *ServiceConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RateLimitRPS = f
		return nil
	}},
	{"RATE_LIMIT_BURST", intSetter(func(c *ServiceConfig) *int { return &c.RateLimitBurst })},
	{"BATCH_CONCURRENCY", intSetter(func(c *ServiceConfig) *int { return &c.BatchConcurrency })},
	{"MAX_BATCH_SIZE", intSetter(func(c *ServiceConfig) *int { return &c.MaxBatchSize })},
}

// EnvVars returns the names of all recognized environment overrides.
func EnvVars() []string {
	out := make([]string, len(envBindings))
	for i, b := range envBindings {
		out[i] = EnvPrefix + b.name
	}
	return out
}

func applyEnvOverrides(cfg *ServiceConfig, lookup LookupEnvFunc) error {
	for _, b := range envBindings {
		key := EnvPrefix + b.name
		v, ok := lookup(key)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
	}
	return nil
}

func intSetter(field func(*ServiceConfig) *int) func(*ServiceConfig, string) error {
	return func(c *ServiceConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*ServiceConfig) *bool) func(*ServiceConfig, string) error {
	return func(c *ServiceConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*ServiceConfig) *time.Duration) func(*ServiceConfig, string) error {
	return func(c *ServiceConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}
