// AI Error Analysis - Server Entry Point
//
// Starts the HTTP API that analyzes failed CI builds with an AI provider
// and returns a structured verdict.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ai-error-analysis/internal/analyzer"
	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/config"
	"github.com/ai-error-analysis/internal/extract"
	"github.com/ai-error-analysis/internal/handler"
	"github.com/ai-error-analysis/internal/logger"
	"github.com/ai-error-analysis/internal/prompt"
	"github.com/ai-error-analysis/internal/provider"
	"github.com/ai-error-analysis/internal/rules"
	"github.com/ai-error-analysis/internal/service"
	"github.com/ai-error-analysis/pkg/redact"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	isDev := os.Getenv("GIN_MODE") != "release"

	zapLogger, err := logger.New(isDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting AI error analysis service",
		zap.Bool("development", isDev),
	)

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
		zap.Bool("mock_mode", cfg.AI.MockMode),
		zap.Bool("rules_enabled", cfg.Processing.EnableRules),
	)

	modelCatalog := catalog.New()

	promptBuilder, err := prompt.NewBuilder(cfg.Processing.LogBudget)
	if err != nil {
		zapLogger.Fatal("failed to create prompt builder", zap.Error(err))
	}

	clientConf := provider.Config{
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		MaxTokens: cfg.AI.MaxTokens,
		Timeout:   cfg.AI.Timeout,
	}

	var core *analyzer.Orchestrator
	if cfg.AI.MockMode {
		zapLogger.Warn("running in mock mode - AI responses are simulated")
		factory := func(catalog.Entry, provider.Config, *zap.Logger) (provider.Client, error) {
			return provider.NewMock(zapLogger), nil
		}
		core = analyzer.NewWithFactory(
			modelCatalog, promptBuilder, extract.NewExtractor(zapLogger),
			factory, clientConf, zapLogger,
		)
	} else {
		core = analyzer.New(
			modelCatalog, promptBuilder, extract.NewExtractor(zapLogger),
			clientConf, zapLogger,
		)
	}

	ruleEngine := rules.NewEngine(
		rules.DefaultRules(),
		cfg.Processing.RuleConfidenceThreshold,
		zapLogger,
	)

	redactor := redact.New(cfg.Processing.MaxLogSize)

	analyzerSvc := service.NewAnalyzer(
		core,
		ruleEngine,
		redactor,
		service.AnalyzerConfig{
			DefaultProvider: cfg.AI.Provider,
			DefaultModel:    cfg.AI.Model,
			EnableRules:     cfg.Processing.EnableRules,
		},
		zapLogger,
	)

	analyzeHandler := handler.NewAnalyzeHandler(analyzerSvc, zapLogger)
	modelsHandler := handler.NewModelsHandler(modelCatalog, zapLogger)
	healthHandler := handler.NewHealthHandler(zapLogger)
	readyHandler := handler.NewReadyHandler(zapLogger)

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(handler.RecoveryMiddleware(zapLogger))
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.LoggingMiddleware(zapLogger))
	router.Use(handler.CORSMiddleware())

	router.GET("/health", healthHandler.Handle)
	router.GET("/ready", readyHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", analyzeHandler.Handle)
		v1.GET("/models", modelsHandler.Handle)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
