package repo

import (
	"context"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

type RevisionRepository interface {
	Create(ctx context.Context, revision *domain.ConfigRevision) error
	Latest(ctx context.Context, projectID string) (*domain.ConfigRevision, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]domain.ConfigRevision, error)
	DeleteByProject(ctx context.Context, projectID string) error
}
