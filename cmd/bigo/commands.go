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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianBigO/services/complexity"
	"github.com/spf13/cobra"
)

// extensionDialects maps file extensions to dialect names for analyze.
var extensionDialects = map[string]string{
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".jsx":  "javascript",
	".py":   "python",
	".java": "java",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".hh":   "cpp",
}

// dialectForPath guesses a dialect from a file extension. Returns "" when
// the extension is unknown.
func dialectForPath(path string) string {
	return extensionDialects[strings.ToLower(filepath.Ext(path))]
}

func newAnalyzeCmd(opts func() cliOptions) *cobra.Command {
	var (
		dialect  string
		features bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Estimate the complexity of a snippet",
		Long: `Estimate the time and space complexity of a snippet read from a file, or
from stdin when the argument is "-" or omitted.

The dialect is taken from --dialect, or guessed from the file extension.
With no argument on an interactive terminal, a form asks for the dialect
and the snippet instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := opts()

			var (
				snippet string
				b       backend
				err     error
			)
			if len(args) == 0 && interactiveInput(cmd.InOrStdin()) {
				if b, err = newBackend(cmd.Context(), o); err != nil {
					return err
				}
				snippet, dialect, err = promptSnippet(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), b, dialect)
				if err != nil {
					return err
				}
			} else {
				path := "-"
				if len(args) == 1 {
					path = args[0]
				}
				if snippet, err = readSnippet(cmd.InOrStdin(), path); err != nil {
					return err
				}
				if dialect == "" && path != "-" {
					dialect = dialectForPath(path)
				}
				if dialect == "" {
					return fmt.Errorf("cannot tell the dialect of %q; pass --dialect", path)
				}
				if b, err = newBackend(cmd.Context(), o); err != nil {
					return err
				}
			}

			resp, err := b.Analyze(cmd.Context(), complexity.AnalyzeRequest{
				Snippet:         snippet,
				Dialect:         dialect,
				IncludeFeatures: features,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if o.json {
				return writeJSON(out, resp)
			}
			newRenderer(out, o.noColor).analysis(resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dialect, "dialect", "d", "", "snippet dialect: javascript (js), python (py), java, cpp (c++)")
	cmd.Flags().BoolVarP(&features, "features", "f", false, "list the detected features")
	return cmd
}

func newDialectsCmd(opts func() cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := opts()
			b, err := newBackend(cmd.Context(), o)
			if err != nil {
				return err
			}
			resp, err := b.Dialects(cmd.Context())
			if err != nil {
				return err
			}
			if o.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			newRenderer(cmd.OutOrStdout(), o.noColor).dialects(resp)
			return nil
		},
	}
}

func newExampleCmd(opts func() cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "example <dialect>",
		Short: "Print a starter snippet for a dialect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := opts()
			b, err := newBackend(cmd.Context(), o)
			if err != nil {
				return err
			}
			resp, err := b.Example(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if o.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			// Raw so it can be piped straight back into analyze.
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Snippet)
			return err
		},
	}
}

func newRulesCmd(opts func() cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the decision rules in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := opts()
			b, err := newBackend(cmd.Context(), o)
			if err != nil {
				return err
			}
			resp, err := b.Rules(cmd.Context())
			if err != nil {
				return err
			}
			if o.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			newRenderer(cmd.OutOrStdout(), o.noColor).rules(resp)
			return nil
		},
	}
}

func newHistoryCmd(opts func() cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analyses recorded by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := opts()
			if o.server == "" {
				return errServerRequired
			}
			b, err := newBackend(cmd.Context(), o)
			if err != nil {
				return err
			}
			resp, err := b.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if o.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			newRenderer(cmd.OutOrStdout(), o.noColor).history(resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records to show")
	return cmd
}

// readSnippet reads path, or in when path is "-".
func readSnippet(in io.Reader, path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(in)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading snippet: %w", err)
	}
	return string(raw), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
