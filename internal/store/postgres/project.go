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

const projectColumns = `id, user_id, slug, name, config, status, created_at, updated_at`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt

	cfg, err := encodeConfig(project.Config)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)`,
		project.ID, project.UserID, project.Slug, project.Name, cfg, string(project.Status), project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug))
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	return scanProject(r.pool.QueryRow(ctx,
		`UPDATE projects SET name = COALESCE($2, name), status = COALESCE($3, status), updated_at = $4
		 WHERE id = $1 RETURNING `+projectColumns,
		id, update.Name, status, time.Now(),
	))
}

func (r *ProjectRepository) UpdateConfig(ctx context.Context, id string, cfg domain.Configuration) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	data, err := encodeConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to update project config: %w", err)
	}

	return scanProject(r.pool.QueryRow(ctx,
		`UPDATE projects SET config = $2::jsonb, updated_at = $3 WHERE id = $1 RETURNING `+projectColumns,
		id, data, time.Now(),
	))
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}

	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p      domain.Project
		raw    []byte
		status string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Slug, &p.Name, &raw, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	cfg, err := domain.ParseConfiguration(raw)
	if err != nil {
		return nil, err
	}
	p.Config = cfg
	p.Status = domain.ProjectStatus(status)

	return &p, nil
}
