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
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// Handlers serves the complexity HTTP API.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	svc     *Service
	limiter *ClientRateLimiter
}

// NewHandlers creates handlers for svc. A per-client rate limiter is
// created when the service config sets RateLimitRPS.
func NewHandlers(svc *Service) *Handlers {
	h := &Handlers{svc: svc}
	if cfg := svc.Config(); cfg.RateLimitRPS > 0 {
		h.limiter = NewClientRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return h
}

// getOrCreateRequestID returns the caller's X-Request-ID or a new UUID,
// and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	id := c.GetHeader(RequestIDHeader)
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(RequestIDHeader, id)
	return id
}

// writeError maps err to a status and writes the error body.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, body := ErrorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		logger.Error("request failed", slog.String("error", err.Error()))
	} else {
		logger.Info("request rejected",
			slog.Int("status", status),
			slog.String("code", body.Code),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(status, body)
}

// =============================================================================
// Analysis Handlers
// =============================================================================

// HandleAnalyze handles POST /v1/complexity/analyze.
//
// Description:
//
//	Estimates time and space complexity for one snippet.
//
// Request Body:
//
//	AnalyzeRequest
//
// Response:
//
//	200 OK: AnalyzeResponse
//	400 Bad Request: Malformed body, empty snippet or unknown dialect
//	413 Request Entity Too Large: Snippet over the size limit
//	504 Gateway Timeout: Feature extraction missed its deadline
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  CodeInvalidRequest,
		})
		return
	}

	resp, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	logger.Info("analysis complete",
		slog.String("dialect", string(resp.Dialect)),
		slog.String("rule", resp.Rule),
		slog.Bool("cached", resp.Cached),
		slog.Int64("duration_micros", resp.DurationMicros),
	)

	c.JSON(http.StatusOK, resp)
}

// HandleAnalyzeBatch handles POST /v1/complexity/analyze/batch.
//
// Description:
//
//	Analyzes several snippets concurrently. Item failures are reported
//	per item; the request itself succeeds.
//
// Request Body:
//
//	BatchAnalyzeRequest
//
// Response:
//
//	200 OK: BatchAnalyzeResponse
//	400 Bad Request: Malformed body or no items
//	413 Request Entity Too Large: More items than MaxBatchSize
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleAnalyzeBatch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyzeBatch")

	var req BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  CodeInvalidRequest,
		})
		return
	}

	resp, err := h.svc.AnalyzeBatch(c.Request.Context(), req.Items)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	logger.Info("batch analysis complete",
		slog.Int("items", len(req.Items)),
		slog.Int("succeeded", resp.Succeeded),
		slog.Int("failed", resp.Failed),
	)

	c.JSON(http.StatusOK, resp)
}

// HandleFeatures handles POST /v1/complexity/features.
//
// Description:
//
//	Returns the raw feature set for a snippet without classifying it.
//	Used to debug why a snippet received its verdict.
//
// Response:
//
//	200 OK: FeaturesResponse
//	400 Bad Request: Malformed body or unknown dialect
//	413 Request Entity Too Large: Snippet over the size limit
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleFeatures(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleFeatures")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  CodeInvalidRequest,
		})
		return
	}

	resp, err := h.svc.ExtractFeatures(c.Request.Context(), req)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// =============================================================================
// Reference Handlers
// =============================================================================

// HandleDialects handles GET /v1/complexity/dialects.
func (h *Handlers) HandleDialects(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Dialects())
}

// HandleExample handles GET /v1/complexity/dialects/:dialect/example.
//
// Response:
//
//	200 OK: ExampleResponse
//	400 Bad Request: Unknown dialect
func (h *Handlers) HandleExample(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleExample")

	d, err := catalog.ParseDialect(c.Param("dialect"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	snippet, _ := Example(d)
	c.JSON(http.StatusOK, ExampleResponse{Dialect: d, Snippet: snippet})
}

// HandleRules handles GET /v1/complexity/rules.
func (h *Handlers) HandleRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Rules())
}

// =============================================================================
// History Handlers
// =============================================================================

// HandleListHistory handles GET /v1/complexity/history.
//
// Query Parameters:
//
//	limit: Maximum results, default and maximum HistoryLimit
//
// Response:
//
//	200 OK: HistoryListResponse
//	503 Service Unavailable: History not enabled
func (h *Handlers) HandleListHistory(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleListHistory")

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	resp, err := h.svc.ListHistory(c.Request.Context(), limit)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGetHistory handles GET /v1/complexity/history/:id.
//
// Response:
//
//	200 OK: store.Record
//	404 Not Found: No record with that ID
//	503 Service Unavailable: History not enabled
func (h *Handlers) HandleGetHistory(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetHistory")

	rec, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleDeleteHistory handles DELETE /v1/complexity/history/:id.
//
// Response:
//
//	204 No Content: Deleted
//	404 Not Found: No record with that ID
//	503 Service Unavailable: History not enabled
func (h *Handlers) HandleDeleteHistory(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteHistory")

	id := c.Param("id")
	if err := h.svc.DeleteHistory(c.Request.Context(), id); err != nil {
		writeError(c, logger, err)
		return
	}

	logger.Info("history record deleted", slog.String("id", id))
	c.Status(http.StatusNoContent)
}

// =============================================================================
// Health Handlers
// =============================================================================

// HandleHealth handles GET /v1/complexity/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Health())
}

// HandleReady handles GET /v1/complexity/ready.
//
// Response:
//
//	200 OK: HealthResponse with status "ready"
//	503 Service Unavailable: A dependency is not reachable
func (h *Handlers) HandleReady(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReady")

	if err := h.svc.Ready(c.Request.Context()); err != nil {
		logger.Warn("not ready", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_READY",
		})
		return
	}
	resp := h.svc.Health()
	resp.Status = "ready"
	c.JSON(http.StatusOK, resp)
}
