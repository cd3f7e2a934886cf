// Package handler contains HTTP handlers for the API.
package handler

import (
	"net/http"
	"time"

	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/domain"
	"github.com/ai-error-analysis/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyzeHandler handles build failure analysis requests.
type AnalyzeHandler struct {
	analyzer *service.Analyzer
	logger   *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzer *service.Analyzer, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		logger:   logger.Named("analyze_handler"),
	}
}

// Handle processes POST /api/v1/analyze requests.
func (h *AnalyzeHandler) Handle(c *gin.Context) {
	startTime := time.Now()
	logger := h.logger.With(zap.String("request_id", c.GetString("request_id")))
	logger.Debug("received analysis request")

	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.AnalysisResponse{
			Success:     false,
			Error:       "Invalid request body: " + err.Error(),
			ProcessedAt: time.Now(),
		})
		return
	}

	response, err := h.analyzer.Analyze(c.Request.Context(), &req)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, domain.AnalysisResponse{
			Success:     false,
			Error:       "Internal error during analysis",
			ProcessedAt: time.Now(),
		})
		return
	}

	logger.Info("analysis completed",
		zap.Bool("success", response.Success),
		zap.String("source", response.Source),
		zap.Duration("duration", time.Since(startTime)),
	)

	if response.Success {
		c.JSON(http.StatusOK, response)
	} else {
		c.JSON(http.StatusUnprocessableEntity, response)
	}
}

// ModelsHandler exposes the supported provider and model catalog.
type ModelsHandler struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewModelsHandler creates a new ModelsHandler.
func NewModelsHandler(c *catalog.Catalog, logger *zap.Logger) *ModelsHandler {
	return &ModelsHandler{
		catalog: c,
		logger:  logger.Named("models_handler"),
	}
}

// Handle processes GET /api/v1/models requests. An optional "provider"
// query parameter narrows the listing.
func (h *ModelsHandler) Handle(c *gin.Context) {
	if providerID := c.Query("provider"); providerID != "" {
		models, err := h.catalog.Models(providerID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		def, _ := h.catalog.DefaultModel(providerID)
		c.JSON(http.StatusOK, gin.H{
			"provider":      providerID,
			"default_model": def,
			"models":        models,
		})
		return
	}

	out := make(map[string]any)
	for _, providerID := range h.catalog.Providers() {
		models, err := h.catalog.Models(providerID)
		if err != nil {
			continue
		}
		def, _ := h.catalog.DefaultModel(providerID)
		out[providerID] = gin.H{
			"default_model": def,
			"models":        models,
		}
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler handles readiness check requests.
type ReadyHandler struct {
	logger *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler.
func NewReadyHandler(logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		logger: logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. Readiness is configuration-only;
// no provider call is made here.
func (h *ReadyHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// generateRequestID creates a simple unique request ID.
func generateRequestID() string {
	return time.Now().Format("20060102150405.000000")
}
