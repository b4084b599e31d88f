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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all complexity routes with the router.
//
// Description:
//
//	Registers all /v1/complexity/* endpoints with the given Gin router
//	group. Analysis endpoints are rate limited per client when the
//	handlers carry a limiter.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Analysis Endpoints:
//
//	POST /v1/complexity/analyze - Analyze one snippet
//	POST /v1/complexity/analyze/batch - Analyze several snippets
//	POST /v1/complexity/features - Extract features only
//
// Reference Endpoints:
//
//	GET  /v1/complexity/dialects - List dialects
//	GET  /v1/complexity/dialects/:dialect/example - Starter snippet
//	GET  /v1/complexity/rules - Decision rules in priority order
//
// History Endpoints:
//
//	GET    /v1/complexity/history - Recent analyses
//	GET    /v1/complexity/history/:id - One analysis
//	DELETE /v1/complexity/history/:id - Delete an analysis
//
// Health Endpoints:
//
//	GET  /v1/complexity/health - Health check
//	GET  /v1/complexity/ready - Readiness check
//
// Example:
//
//	svc, _ := complexity.NewService(cfg, catalog.MustGetCatalog())
//	handlers := complexity.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	complexity.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	cx := rg.Group("/complexity")
	{
		analyze := cx.Group("")
		if handlers.limiter != nil {
			analyze.Use(RateLimitMiddleware(handlers.limiter))
		}
		analyze.POST("/analyze", handlers.HandleAnalyze)
		analyze.POST("/analyze/batch", handlers.HandleAnalyzeBatch)
		analyze.POST("/features", handlers.HandleFeatures)

		// Reference data
		cx.GET("/dialects", handlers.HandleDialects)
		cx.GET("/dialects/:dialect/example", handlers.HandleExample)
		cx.GET("/rules", handlers.HandleRules)

		// History
		cx.GET("/history", handlers.HandleListHistory)
		cx.GET("/history/:id", handlers.HandleGetHistory)
		cx.DELETE("/history/:id", handlers.HandleDeleteHistory)

		// Health checks
		cx.GET("/health", handlers.HandleHealth)
		cx.GET("/ready", handlers.HandleReady)
	}
}
