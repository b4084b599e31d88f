// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/AleutianAI/AleutianBigO/services/complexity/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPort_LeavesSharedConfigAlone(t *testing.T) {
	config.ResetServiceConfig()
	t.Cleanup(config.ResetServiceConfig)

	shared, err := config.GetServiceConfig(context.Background())
	require.NoError(t, err)
	before := shared.Port

	got := withPort(shared, before+1)
	assert.Equal(t, before+1, got.Port)
	assert.NotSame(t, shared, got)

	again, err := config.GetServiceConfig(context.Background())
	require.NoError(t, err)
	assert.Same(t, shared, again)
	assert.Equal(t, before, again.Port)
}

func TestWithPort_NoOverride(t *testing.T) {
	cfg := config.DefaultServiceConfig()
	assert.Same(t, cfg, withPort(cfg, 0))
	assert.Same(t, cfg, withPort(cfg, cfg.Port))
}

func TestStoreConfig(t *testing.T) {
	cfg := config.DefaultServiceConfig()
	cfg.SyncWrites = true

	mem := storeConfig(cfg, slog.Default())
	assert.True(t, mem.InMemory)
	assert.False(t, mem.SyncWrites)

	cfg.DataDir = t.TempDir()
	disk := storeConfig(cfg, slog.Default())
	assert.False(t, disk.InMemory)
	assert.Equal(t, cfg.DataDir, disk.Path)
	assert.True(t, disk.SyncWrites)
	assert.NotNil(t, disk.Logger)
}
