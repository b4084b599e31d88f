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
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianBigO/services/complexity"
	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeForm stands in for the terminal form and records what it was given.
type fakeForm struct {
	calls       int
	gotDialect  string
	placeholder string
	snippet     string
	chosen      string
	err         error
}

func (f *fakeForm) prompt(ctx context.Context, _ io.Reader, _ io.Writer, b backend, dialect string) (string, string, error) {
	f.calls++
	f.gotDialect = dialect
	if f.err != nil {
		return "", "", f.err
	}
	example, err := b.Example(ctx, f.chosen)
	if err != nil {
		return "", "", err
	}
	f.placeholder = example.Snippet
	return f.snippet, f.chosen, nil
}

// useFakeForm makes analyze believe stdin is a terminal and routes the
// form to f.
func useFakeForm(t *testing.T, f *fakeForm) {
	t.Helper()
	prevPrompt, prevInteractive := promptSnippet, interactiveInput
	promptSnippet = f.prompt
	interactiveInput = func(io.Reader) bool { return true }
	t.Cleanup(func() {
		promptSnippet, interactiveInput = prevPrompt, prevInteractive
	})
}

func TestCLI_Analyze_InteractiveForm(t *testing.T) {
	form := &fakeForm{snippet: pyNestedLoops, chosen: "python"}
	useFakeForm(t, form)

	out, err := runCLI(t, "", "analyze", "--json")
	require.NoError(t, err)

	assert.Equal(t, 1, form.calls)
	assert.Empty(t, form.gotDialect, "picker shown when no --dialect")
	wantExample, _ := complexity.Example(catalog.DialectPython)
	assert.Equal(t, wantExample, form.placeholder)

	var resp complexity.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "O(n²)", resp.Time)
	assert.Equal(t, catalog.DialectPython, resp.Dialect)
}

func TestCLI_Analyze_InteractiveForm_PresetDialect(t *testing.T) {
	form := &fakeForm{snippet: jsBinarySearch, chosen: "js"}
	useFakeForm(t, form)

	out, err := runCLI(t, "", "analyze", "-d", "js")
	require.NoError(t, err)
	assert.Equal(t, "js", form.gotDialect)
	assert.Contains(t, out, "Binary Search")
}

func TestCLI_Analyze_InteractiveForm_Aborted(t *testing.T) {
	form := &fakeForm{err: errFormAborted}
	useFakeForm(t, form)

	_, err := runCLI(t, "", "analyze")
	assert.ErrorIs(t, err, errFormAborted)
}

func TestCLI_Analyze_FileArgSkipsForm(t *testing.T) {
	form := &fakeForm{}
	useFakeForm(t, form)

	path := filepath.Join(t.TempDir(), "search.js")
	require.NoError(t, os.WriteFile(path, []byte(jsBinarySearch), 0o644))

	out, err := runCLI(t, "", "analyze", path)
	require.NoError(t, err)
	assert.Zero(t, form.calls)
	assert.Contains(t, out, "O(log n)")
}

func TestInteractiveInput_NotATerminal(t *testing.T) {
	assert.False(t, interactiveInput(strings.NewReader("x")))
}

func TestDialectOptions(t *testing.T) {
	b, err := newLocalBackend(context.Background())
	require.NoError(t, err)
	resp, err := b.Dialects(context.Background())
	require.NoError(t, err)

	opts := dialectOptions(resp)
	require.Len(t, opts, len(catalog.AllDialects()))
	for i, d := range catalog.AllDialects() {
		assert.Equal(t, string(d), opts[i].Value)
		assert.Equal(t, d.DisplayName(), opts[i].Key)
	}
}

func TestValidateSnippet(t *testing.T) {
	assert.Error(t, validateSnippet(""))
	assert.Error(t, validateSnippet(" \n\t"))
	assert.NoError(t, validateSnippet("x = 1"))
}
