package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"helpdesk-triage/internal/api"
	"helpdesk-triage/internal/api/handlers"
	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/repository"
	"helpdesk-triage/internal/service"
	"helpdesk-triage/pkg/auth"
	"helpdesk-triage/pkg/config"
	"helpdesk-triage/pkg/logger"
	"helpdesk-triage/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting help desk triage service")

	// Fail fast on configuration errors
	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Optional audit database
	var triageRepo *repository.TriageRepository
	if cfg.Database.Enabled {
		db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		triageRepo = repository.NewTriageRepository(db, appLogger)
		if err := triageRepo.Migrate(ctx); err != nil {
			appLogger.Fatal("Failed to migrate audit schema", zap.Error(err))
		}
	}

	// Embedding and generation provider
	llmService, err := service.NewLLMService(ctx, &cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	// Load static corpora and build the process-wide read-only state
	loader := corpus.NewLoader(&cfg.Data, appLogger)
	catalog, err := loader.LoadCatalog()
	if err != nil {
		appLogger.Fatal("Failed to load category catalog", zap.Error(err))
	}
	entries, err := loader.LoadEntries()
	if err != nil {
		appLogger.Fatal("Failed to load knowledge corpus", zap.Error(err))
	}

	classifier, err := service.NewClassifier(ctx, llmService, catalog, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize classifier", zap.Error(err))
	}

	index, err := service.BuildKnowledgeIndex(ctx, llmService, entries, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to build knowledge index", zap.Error(err))
	}
	retriever := service.NewKnowledgeRetriever(llmService, index, &cfg.Triage, appLogger)

	escalation, err := service.NewEscalationEngine(ctx, llmService, catalog, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize escalation engine", zap.Error(err))
	}

	responder := service.NewResponder(llmService, appLogger)

	var audit service.AuditSink
	if triageRepo != nil {
		audit = triageRepo
	}
	pipeline := service.NewPipeline(classifier, retriever, escalation, responder, audit, appLogger)

	// Initialize handlers and router
	var auditReader handlers.AuditReader
	if triageRepo != nil {
		auditReader = triageRepo
	}
	supportHandler := handlers.NewSupportHandler(pipeline, classifier.CategoryOrder(), auditReader, appLogger)

	var jwtManager *auth.JWTManager
	if cfg.Auth.Enabled {
		jwtManager = auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Auth.Expiration)
	}

	app := api.SetupRouter(supportHandler, jwtManager, triageRepo != nil, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
