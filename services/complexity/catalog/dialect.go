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
	"errors"
	"fmt"
	"strings"
)

// Dialect identifies one of the supported source-language surface syntaxes.
type Dialect string

const (
	DialectJavaScript Dialect = "javascript"
	DialectPython     Dialect = "python"
	DialectJava       Dialect = "java"
	DialectCPP        Dialect = "cpp"
)

// ErrUnknownDialect is returned when a dialect name is not supported.
var ErrUnknownDialect = errors.New("unknown dialect")

// allDialects is the fixed, ordered list of supported dialects.
var allDialects = []Dialect{DialectJavaScript, DialectPython, DialectJava, DialectCPP}

var dialectAliases = map[string]Dialect{
	"javascript": DialectJavaScript,
	"js":         DialectJavaScript,
	"python":     DialectPython,
	"py":         DialectPython,
	"java":       DialectJava,
	"cpp":        DialectCPP,
	"c++":        DialectCPP,
}

var dialectDisplayNames = map[Dialect]string{
	DialectJavaScript: "JavaScript",
	DialectPython:     "Python",
	DialectJava:       "Java",
	DialectCPP:        "C++",
}

// AllDialects returns the supported dialects in display order.
//
// The returned slice is a copy; callers may modify it.
func AllDialects() []Dialect {
	out := make([]Dialect, len(allDialects))
	copy(out, allDialects)
	return out
}

// ParseDialect resolves a user-supplied dialect name.
//
// Description:
//
//	Accepts the canonical names case-insensitively plus the short aliases
//	"js", "py" and "c++". Surrounding whitespace is ignored. There is no
//	fallback: anything else is an error.
//
// Inputs:
//
//	s - The dialect name.
//
// Outputs:
//
//	Dialect - The canonical dialect.
//	error - Wraps ErrUnknownDialect if s is not recognized.
func ParseDialect(s string) (Dialect, error) {
	d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
	return d, nil
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	_, ok := dialectDisplayNames[d]
	return ok
}

// DisplayName returns the human-readable language name.
func (d Dialect) DisplayName() string {
	if name, ok := dialectDisplayNames[d]; ok {
		return name
	}
	return string(d)
}

func (d Dialect) String() string {
	return string(d)
}
