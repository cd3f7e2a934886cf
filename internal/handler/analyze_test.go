package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ai-error-analysis/internal/analyzer"
	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/domain"
	"github.com/ai-error-analysis/internal/extract"
	"github.com/ai-error-analysis/internal/prompt"
	"github.com/ai-error-analysis/internal/provider"
	"github.com/ai-error-analysis/internal/rules"
	"github.com/ai-error-analysis/internal/service"
	"github.com/ai-error-analysis/pkg/redact"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	prompts, err := prompt.NewBuilder(prompt.DefaultLogBudget)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	// Mock provider; no network calls happen in these tests.
	factory := func(catalog.Entry, provider.Config, *zap.Logger) (provider.Client, error) {
		return provider.NewMock(logger), nil
	}
	modelCatalog := catalog.New()
	core := analyzer.NewWithFactory(
		modelCatalog, prompts, extract.NewExtractor(logger),
		factory, provider.Config{APIKey: "test-key"}, logger,
	)
	svc := service.NewAnalyzer(
		core,
		rules.NewEngine(rules.DefaultRules(), 0.8, logger),
		redact.New(50000),
		service.AnalyzerConfig{DefaultProvider: "openai", EnableRules: true},
		logger,
	)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/health", NewHealthHandler(logger).Handle)
	router.GET("/ready", NewReadyHandler(logger).Handle)
	v1 := router.Group("/api/v1")
	v1.POST("/analyze", NewAnalyzeHandler(svc, logger).Handle)
	v1.GET("/models", NewModelsHandler(modelCatalog, logger).Handle)
	return router
}

func TestAnalyzeEndpoint_Success(t *testing.T) {
	router := newTestRouter(t)

	body := `{"provider":"openai","context":{"pipeline":"web-ci","branch":"main","log_excerpt":"npm ERR! missing script: build"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp domain.AnalysisResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Errorf("Success = false, error = %q", resp.Error)
	}
	if resp.Result == nil || resp.Result.RootCause == "" {
		t.Error("Result missing root cause")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestAnalyzeEndpoint_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAnalyzeEndpoint_EmptyLog(t *testing.T) {
	router := newTestRouter(t)

	body := `{"context":{"log_excerpt":""}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestModelsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/models?provider=anthropic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Provider     string          `json:"provider"`
		DefaultModel string          `json:"default_model"`
		Models       []catalog.Entry `json:"models"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DefaultModel != "claude-3-5-sonnet-20241022" {
		t.Errorf("default_model = %q", resp.DefaultModel)
	}
	if len(resp.Models) == 0 {
		t.Error("models list is empty")
	}
}

func TestModelsEndpoint_UnknownProvider(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/models?provider=cohere", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, w.Code)
		}
	}
}
