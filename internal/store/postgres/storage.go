// Package postgres stores projects, revisions and import tasks in PostgreSQL,
// with each configuration kept in a JSONB column.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	URL     string
	Timeout time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Projects() *ProjectRepository {
	return &ProjectRepository{pool: s.pool}
}

func (s *Storage) Revisions() *RevisionRepository {
	return &RevisionRepository{pool: s.pool}
}

func (s *Storage) ImportTasks() *ImportTaskRepository {
	return &ImportTaskRepository{pool: s.pool}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		config JSONB NOT NULL DEFAULT '{}'::jsonb,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user_updated ON projects (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS config_revisions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		config JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_revisions_project_saved ON config_revisions (project_id, saved_at DESC)`,
	`CREATE TABLE IF NOT EXISTS import_tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		spreadsheet_id TEXT NOT NULL,
		status TEXT NOT NULL,
		categories INTEGER NOT NULL DEFAULT 0,
		products INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_import_tasks_project ON import_tasks (project_id)`,
}

// EnsureSchema creates the tables and indexes when they are missing.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func encodeConfig(cfg domain.Configuration) (string, error) {
	if cfg == nil {
		return "{}", nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
