package repo

import (
	"context"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

type ImportTaskRepository interface {
	Create(ctx context.Context, task *domain.ImportTask) error
	GetByID(ctx context.Context, id string) (*domain.ImportTask, error)
	UpdateStatus(ctx context.Context, id string, status domain.ImportTaskStatus, errorMsg string) error
	Complete(ctx context.Context, id string, categories, products int) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
