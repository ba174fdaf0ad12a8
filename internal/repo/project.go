package repo

import (
	"context"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Project, error)
	Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error)
	UpdateConfig(ctx context.Context, id string, cfg domain.Configuration) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}
