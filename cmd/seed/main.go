// Command seed validates the static corpora and prepares the optional
// audit database. It loads the category catalog and all four knowledge
// sources exactly the way the service does at startup, prints per-category
// entry counts, and creates the audit schema when a database is configured.
package main

import (
	"context"
	"log"

	"helpdesk-triage/internal/corpus"
	"helpdesk-triage/internal/models"
	"helpdesk-triage/internal/repository"
	"helpdesk-triage/pkg/config"
	"helpdesk-triage/pkg/logger"
	"helpdesk-triage/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	loader := corpus.NewLoader(&cfg.Data, appLogger)

	catalog, err := loader.LoadCatalog()
	if err != nil {
		appLogger.Fatal("Category catalog is invalid", zap.Error(err))
	}

	entries, err := loader.LoadEntries()
	if err != nil {
		appLogger.Fatal("Knowledge corpus is invalid", zap.Error(err))
	}

	counts := make(map[models.RequestCategory]int)
	triggers := 0
	for _, entry := range entries {
		counts[entry.Category]++
	}
	for _, info := range catalog {
		triggers += len(info.EscalationTriggers)
	}

	for _, category := range models.Categories {
		appLogger.Info("Corpus entries",
			zap.String("category", string(category)),
			zap.Int("count", counts[category]),
		)
	}
	appLogger.Info("Corpus summary",
		zap.Int("entries", len(entries)),
		zap.Int("categories", len(catalog)),
		zap.Int("escalation_triggers", triggers),
	)

	if !cfg.Database.Enabled {
		appLogger.Info("No audit database configured, skipping schema setup")
		return
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	triageRepo := repository.NewTriageRepository(db, appLogger)
	if err := triageRepo.Migrate(ctx); err != nil {
		appLogger.Fatal("Failed to create audit schema", zap.Error(err))
	}
	appLogger.Info("Audit schema ready")
}
