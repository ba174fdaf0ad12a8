package gateway

import (
	"context"
	"fmt"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/repo"
)

// RecordBackend reads and writes project records directly.
type RecordBackend struct {
	projects repo.ProjectRepository
}

func NewRecordBackend(projects repo.ProjectRepository) *RecordBackend {
	return &RecordBackend{projects: projects}
}

// Load returns the config of the project with that slug. Missing and
// inactive projects are both reported as not found.
func (b *RecordBackend) Load(ctx context.Context, slug string) (domain.Configuration, error) {
	project, err := b.projects.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !project.IsActive() {
		return nil, fmt.Errorf("%w: %s (%w)", domain.ErrProjectNotFound, slug, domain.ErrProjectInactive)
	}

	if project.Config == nil {
		return nil, fmt.Errorf("%w: %s has no config", domain.ErrProjectNotFound, slug)
	}

	return project.Config, nil
}

// Save replaces the config of the project with that id and bumps updated_at.
func (b *RecordBackend) Save(ctx context.Context, id string, cfg domain.Configuration) (*domain.Project, error) {
	return b.projects.UpdateConfig(ctx, id, cfg)
}
