package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const revisionColumns = `id, project_id, event_type, fingerprint, config, saved_at`

type RevisionRepository struct {
	pool *pgxpool.Pool
}

func (r *RevisionRepository) Create(ctx context.Context, revision *domain.ConfigRevision) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if revision.ID == "" {
		revision.ID = uuid.NewString()
	}
	if revision.SavedAt.IsZero() {
		revision.SavedAt = time.Now()
	}

	cfg, err := encodeConfig(revision.Config)
	if err != nil {
		return fmt.Errorf("failed to create config revision: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO config_revisions (`+revisionColumns+`) VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		revision.ID, revision.ProjectID, revision.EventType, revision.Fingerprint, cfg, revision.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create config revision: %w", err)
	}

	return nil
}

func (r *RevisionRepository) Latest(ctx context.Context, projectID string) (*domain.ConfigRevision, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rev, err := scanRevision(r.pool.QueryRow(ctx,
		`SELECT `+revisionColumns+` FROM config_revisions WHERE project_id = $1 ORDER BY saved_at DESC LIMIT 1`, projectID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrRevisionNotFound
		}
		return nil, fmt.Errorf("failed to get latest config revision: %w", err)
	}

	return rev, nil
}

func (r *RevisionRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]domain.ConfigRevision, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+revisionColumns+` FROM config_revisions WHERE project_id = $1 ORDER BY saved_at DESC LIMIT $2`,
		projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get config revisions: %w", err)
	}
	defer rows.Close()

	revisions := []domain.ConfigRevision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config revisions: %w", err)
		}
		revisions = append(revisions, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get config revisions: %w", err)
	}

	return revisions, nil
}

func (r *RevisionRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM config_revisions WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete config revisions: %w", err)
	}

	return nil
}

func scanRevision(row pgx.Row) (*domain.ConfigRevision, error) {
	var (
		rev domain.ConfigRevision
		raw []byte
	)
	if err := row.Scan(&rev.ID, &rev.ProjectID, &rev.EventType, &rev.Fingerprint, &raw, &rev.SavedAt); err != nil {
		return nil, err
	}

	cfg, err := domain.ParseConfiguration(raw)
	if err != nil {
		return nil, err
	}
	rev.Config = cfg

	return &rev, nil
}
