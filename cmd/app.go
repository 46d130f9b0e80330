package cmd

import (
	"fmt"

	"inventory-sync/core/config"
	"inventory-sync/core/database"
	"inventory-sync/core/logger"
	"inventory-sync/core/reconcile"
	"inventory-sync/core/storage"
	"inventory-sync/feature/inventory"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds what every command builds from configuration.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	storage storage.Client
	service *inventory.Service
}

// bootstrap loads configuration and connects the selected backend.
// The database and the storage client are only opened when the backend needs them.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg}

	switch cfg.Sync.Backend {
	case reconcile.BackendSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database connection required for the sql backend: %w", err)
		}
		rt.db = db
		rt.logger = rt.logger.With(zap.String("database", cfg.Database.Name))
	case reconcile.BackendObject:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		rt.storage = client
	}

	backend, err := inventory.NewBackend(cfg.Sync, inventory.BackendDeps{
		DB:      rt.db,
		Storage: rt.storage,
		Config:  cfg.Storage,
	})
	if err != nil {
		return nil, err
	}

	rt.logger = rt.logger.With(zap.String("backend", backend.Name()), zap.String("sheet", cfg.Sync.Sheet))
	rt.service = inventory.NewService(backend, cfg.Sync.Options(), cfg.Server.ViewCacheTTL(), rt.logger)
	return rt, nil
}
