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

import "strings"

// Rule expressions assume "." stops at every line terminator and that \s
// covers Unicode spaces. They also assume case-insensitive matching never
// folds a non-ASCII rune onto an ASCII letter. RE2 differs on each point, so
// snippets are mapped onto equivalent runes before any rule runs.
var snippetNormalizer = strings.NewReplacer(
	// Line terminators other than \n.
	"\r", "\n",
	"\u2028", "\n",
	"\u2029", "\n",

	// Whitespace RE2's \s does not cover.
	"\v", " ",
	"\u00a0", " ",
	"\u1680", " ",
	"\u2000", " ",
	"\u2001", " ",
	"\u2002", " ",
	"\u2003", " ",
	"\u2004", " ",
	"\u2005", " ",
	"\u2006", " ",
	"\u2007", " ",
	"\u2008", " ",
	"\u2009", " ",
	"\u200a", " ",
	"\u202f", " ",
	"\u205f", " ",
	"\u3000", " ",
	"\ufeff", " ",

	// Runes RE2 (?i) folds onto "s" and "k".
	"\u017f", "\ufffd",
	"\u212a", "\ufffd",
)

// NormalizeSnippet rewrites the runes RE2 would match differently from
// what the rules assume. Every rule match in the engine runs on the normalized text.
//
// The mapping never turns a non-word rune into a word rune, so \w and \b
// behave as before, and it is idempotent.
func NormalizeSnippet(snippet string) string {
	return snippetNormalizer.Replace(snippet)
}
