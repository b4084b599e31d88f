// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package complexity

import (
	"context"
	"errors"
	"net/http"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/engine"
	"github.com/AleutianAI/AleutianBigO/services/complexity/store"
)

// ErrorStatus maps a service error to an HTTP status and response body.
//
// The checks run from most to least specific because several sentinels
// wrap engine.ErrInvalidInput.
func ErrorStatus(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, ErrEmptySnippet):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeEmptySnippet}
	case errors.Is(err, catalog.ErrUnknownDialect):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidDialect}
	case errors.Is(err, engine.ErrSnippetTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error(), Code: CodeSnippetTooLarge}
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error(), Code: CodeBatchTooLarge}
	case errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest}
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout, ErrorResponse{Error: err.Error(), Code: CodeTimeout}
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, ErrorResponse{Error: err.Error(), Code: CodeCancelled}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound}
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: CodeHistoryDisabled}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternal}
	}
}
