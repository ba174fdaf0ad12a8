package main

import (
	"context"
	"fmt"

	"github.com/Beka01247/shopbuilder/internal/repo"
	"github.com/Beka01247/shopbuilder/internal/store/memory"
	"github.com/Beka01247/shopbuilder/internal/store/mongo"
	"github.com/Beka01247/shopbuilder/internal/store/postgres"
	"go.uber.org/zap"
)

type stores struct {
	storage     storage
	projects    repo.ProjectRepository
	revisions   repo.RevisionRepository
	importTasks repo.ImportTaskRepository
}

type postgresStorage struct {
	*postgres.Storage
}

func (s postgresStorage) Close(context.Context) error {
	s.Storage.Close()
	return nil
}

type memoryStorage struct {
	*memory.Storage
}

func (memoryStorage) Close(context.Context) error { return nil }

func openStores(ctx context.Context, cfg config, logger *zap.SugaredLogger) (*stores, error) {
	switch cfg.storeDriver {
	case "mongo":
		storage, err := mongo.New(mongo.Config{
			URI:      cfg.mongo.URI,
			Database: cfg.mongo.Database,
			Timeout:  cfg.mongo.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}

		logger.Info("connected to MongoDB")

		if err := storage.CreateIndexes(ctx); err != nil {
			logger.Warnw("failed to create indexes", "error", err)
		} else {
			logger.Info("MongoDB indexes created successfully")
		}

		return &stores{
			storage:     storage,
			projects:    storage.Projects(),
			revisions:   storage.Revisions(),
			importTasks: storage.ImportTasks(),
		}, nil

	case "postgres":
		storage, err := postgres.New(postgres.Config{
			URL:     cfg.postgres.URL,
			Timeout: cfg.postgres.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}

		logger.Info("connected to Postgres")

		if err := storage.EnsureSchema(ctx); err != nil {
			storage.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}

		return &stores{
			storage:     postgresStorage{storage},
			projects:    storage.Projects(),
			revisions:   storage.Revisions(),
			importTasks: storage.ImportTasks(),
		}, nil

	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")

		storage := memory.New()
		return &stores{
			storage:     memoryStorage{storage},
			projects:    storage.Projects(),
			revisions:   storage.Revisions(),
			importTasks: storage.ImportTasks(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.storeDriver)
	}
}
