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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AleutianAI/AleutianBigO/services/complexity"
	"github.com/charmbracelet/huh"
)

// errFormAborted is returned when the user leaves the form with ctrl+c/esc.
var errFormAborted = errors.New("analysis aborted")

// snippetPrompter asks the user for a snippet and its dialect.
type snippetPrompter func(ctx context.Context, in io.Reader, out io.Writer, b backend, dialect string) (snippet, chosen string, err error)

// promptSnippet is swapped out in tests; the real form needs a terminal.
var promptSnippet snippetPrompter = runSnippetForm

// interactiveInput reports whether analyze should open the form instead of
// reading stdin.
var interactiveInput = func(in io.Reader) bool {
	return isTerminal(in)
}

// runSnippetForm shows the dialect picker (skipped when dialect is already
// set) and then a code editor whose placeholder is the dialect's example.
//
// The placeholder is never submitted: an untouched editor fails validation,
// matching the analyze button's no-op on empty input.
func runSnippetForm(ctx context.Context, in io.Reader, out io.Writer, b backend, dialect string) (string, string, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	if dialect == "" {
		resp, err := b.Dialects(ctx)
		if err != nil {
			return "", "", err
		}
		picker := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dialect").
				Options(dialectOptions(resp)...).
				Value(&dialect),
		)).
			WithInput(in).
			WithOutput(out).
			WithAccessible(accessible)
		if err := runForm(ctx, picker); err != nil {
			return "", "", err
		}
	}

	example, err := b.Example(ctx, dialect)
	if err != nil {
		return "", "", err
	}

	var snippet string
	editor := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Snippet").
			Description(fmt.Sprintf("Paste %s code to analyze.", example.Dialect.DisplayName())).
			Placeholder(example.Snippet).
			Lines(16).
			Value(&snippet).
			Validate(validateSnippet),
	)).
		WithInput(in).
		WithOutput(out).
		WithAccessible(accessible)
	if err := runForm(ctx, editor); err != nil {
		return "", "", err
	}
	return snippet, dialect, nil
}

func runForm(ctx context.Context, f *huh.Form) error {
	err := f.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return errFormAborted
	}
	return err
}

// dialectOptions turns the dialect listing into select options, labelled
// with display names.
func dialectOptions(resp *complexity.DialectsResponse) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(resp.Dialects))
	for _, d := range resp.Dialects {
		opts = append(opts, huh.NewOption(d.DisplayName, string(d.Name)))
	}
	return opts
}

func validateSnippet(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("enter a snippet to analyze")
	}
	return nil
}
