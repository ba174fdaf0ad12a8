package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ImportTaskRepository struct {
	pool *pgxpool.Pool
}

func (r *ImportTaskRepository) Create(ctx context.Context, task *domain.ImportTask) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	_, err := r.pool.Exec(ctx,
		`INSERT INTO import_tasks (id, project_id, user_id, spreadsheet_id, status, categories, products, error_message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.ProjectID, task.UserID, task.SpreadsheetID, string(task.Status),
		task.Categories, task.Products, task.ErrorMessage, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import task: %w", err)
	}

	return nil
}

func (r *ImportTaskRepository) GetByID(ctx context.Context, id string) (*domain.ImportTask, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		task   domain.ImportTask
		status string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, user_id, spreadsheet_id, status, categories, products, error_message, created_at, updated_at
		 FROM import_tasks WHERE id = $1`, id,
	).Scan(&task.ID, &task.ProjectID, &task.UserID, &task.SpreadsheetID, &status,
		&task.Categories, &task.Products, &task.ErrorMessage, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get import task: %w", err)
	}
	task.Status = domain.ImportTaskStatus(status)

	return &task, nil
}

func (r *ImportTaskRepository) UpdateStatus(ctx context.Context, id string, status domain.ImportTaskStatus, errorMsg string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE import_tasks SET status = $2, error_message = CASE WHEN $3::text = '' THEN error_message ELSE $3::text END, updated_at = $4
		 WHERE id = $1`,
		id, string(status), errorMsg, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func (r *ImportTaskRepository) Complete(ctx context.Context, id string, categories, products int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE import_tasks SET status = $2, categories = $3, products = $4, updated_at = $5 WHERE id = $1`,
		id, string(domain.ImportCompleted), categories, products, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to complete import task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}
