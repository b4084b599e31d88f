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
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for an unsupported dialect or a snippet
	// that exceeds the configured size limit.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSnippetTooLarge is an ErrInvalidInput for oversize snippets.
	ErrSnippetTooLarge = fmt.Errorf("%w: snippet too large", ErrInvalidInput)

	// ErrTimeout is returned when feature extraction does not finish within
	// the analyzer's match deadline.
	ErrTimeout = errors.New("analysis timed out")
)

// errorType maps an analysis error to a label-safe string for metrics and
// logs. Returns "" for nil.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSnippetTooLarge):
		return "snippet_too_large"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}

// contextError converts a context error into the engine's error vocabulary.
// A passed deadline becomes ErrTimeout; cancellation is passed through.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("analysis cancelled: %w", err)
}
