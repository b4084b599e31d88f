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
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// renderer prints human-readable results. Colors are used only when the
// output is a terminal and --no-color is not set.
type renderer struct {
	w     io.Writer
	label lipgloss.Style
	value lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
	title lipgloss.Style
}

func newRenderer(w io.Writer, noColor bool) *renderer {
	r := &renderer{w: w}
	if noColor || !isTerminal(w) {
		plain := lipgloss.NewStyle()
		r.label, r.value, r.good, r.warn, r.bad, r.muted, r.title = plain, plain, plain, plain, plain, plain, plain
		return r
	}

	lr := lipgloss.NewRenderer(w)
	r.label = lr.NewStyle().Foreground(lipgloss.Color("7")).Width(10)
	r.value = lr.NewStyle().Bold(true)
	r.good = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	r.warn = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	r.bad = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	r.muted = lr.NewStyle().Foreground(lipgloss.Color("8"))
	r.title = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	return r
}

// isTerminal reports whether v is a terminal file (stdin or stdout).
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// complexityStyle colors a label by how expensive it is.
func (r *renderer) complexityStyle(label string) lipgloss.Style {
	switch label {
	case "O(1)", "O(log n)", "O(h)":
		return r.good
	case "O(n)", "O(n log n)":
		return r.warn
	default:
		return r.bad
	}
}

func (r *renderer) row(label, value string, style lipgloss.Style) {
	fmt.Fprintf(r.w, "%-10s %s\n", r.label.Render(label), style.Render(value))
}

func (r *renderer) analysis(resp *complexity.AnalyzeResponse) {
	r.row("Time", resp.Time, r.complexityStyle(resp.Time))
	r.row("Space", resp.Space, r.complexityStyle(resp.Space))
	r.row("Category", resp.Category, r.value)
	r.row("Dialect", resp.Dialect.DisplayName(), r.value)

	rule := resp.Rule
	if resp.Cached {
		rule += " (cached)"
	}
	r.row("Rule", rule, r.muted)

	if resp.Features != nil {
		detected := make([]string, len(resp.Features))
		for i, f := range resp.Features {
			detected[i] = string(f)
		}
		list := strings.Join(detected, ", ")
		if list == "" {
			list = "none"
		}
		r.row("Features", list, r.muted)
	}

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, resp.Explanation)
}

func (r *renderer) dialects(resp *complexity.DialectsResponse) {
	for _, d := range resp.Dialects {
		line := r.value.Render(string(d.Name)) + "  " + d.DisplayName
		if len(d.Aliases) > 0 {
			line += r.muted.Render("  (aliases: " + strings.Join(d.Aliases, ", ") + ")")
		}
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w, r.muted.Render("catalog "+resp.CatalogVersion))
}

func (r *renderer) rules(resp *complexity.RulesResponse) {
	fmt.Fprintln(r.w, r.title.Render("Decision rules (first match wins)"))
	for _, rule := range resp.Rules {
		fmt.Fprintf(r.w, "%3d. %s\n", rule.Priority, rule.Name)
	}
}

func (r *renderer) history(resp *complexity.HistoryListResponse) {
	if len(resp.Records) == 0 {
		fmt.Fprintln(r.w, r.muted.Render("No analyses recorded."))
		return
	}
	fmt.Fprintln(r.w, r.title.Render(fmt.Sprintf("Recent analyses (%d of %d)", len(resp.Records), resp.Total)))
	for _, rec := range resp.Records {
		when := time.UnixMilli(rec.CreatedAtMilli).Local().Format(time.DateTime)
		preview := strings.ReplaceAll(rec.Preview, "\n", " ")
		fmt.Fprintf(r.w, "%s  %s  %-10s %-12s %s\n",
			r.muted.Render(rec.ID[:min(8, len(rec.ID))]),
			r.muted.Render(when),
			r.complexityStyle(rec.Verdict.Time).Render(rec.Verdict.Time),
			string(rec.Dialect),
			preview,
		)
	}
}
