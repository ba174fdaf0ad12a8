package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/repo"
	"go.uber.org/zap"
)

const (
	DefaultRevisionLimit = 20
	MaxRevisionLimit     = 100
)

type RevisionService struct {
	projects  repo.ProjectRepository
	revisions repo.RevisionRepository
	logger    *zap.SugaredLogger
}

func NewRevisionService(
	projects repo.ProjectRepository,
	revisions repo.RevisionRepository,
	logger *zap.SugaredLogger,
) *RevisionService {
	return &RevisionService{
		projects:  projects,
		revisions: revisions,
		logger:    logger,
	}
}

// ProcessConfigSavedEvent records the project's stored configuration as a
// revision unless it matches the latest one.
func (s *RevisionService) ProcessConfigSavedEvent(ctx context.Context, event domain.ConfigSavedEvent) error {
	project, err := s.projects.GetByID(ctx, event.ProjectID)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			s.logger.Warnw("dropping revision for deleted project", "project_id", event.ProjectID)
			return nil
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	fingerprint, err := domain.Fingerprint(project.Config)
	if err != nil {
		return fmt.Errorf("failed to fingerprint config: %w", err)
	}

	latest, err := s.revisions.Latest(ctx, project.ID)
	switch {
	case err == nil && latest.Fingerprint == fingerprint:
		s.logger.Debugw("config unchanged since last revision", "project_id", project.ID)
		return nil
	case err != nil && !errors.Is(err, domain.ErrRevisionNotFound):
		return fmt.Errorf("failed to get latest revision: %w", err)
	}

	revision := &domain.ConfigRevision{
		ProjectID:   project.ID,
		EventType:   event.EventType,
		Fingerprint: fingerprint,
		Config:      project.Config,
		SavedAt:     project.UpdatedAt,
	}

	if err := s.revisions.Create(ctx, revision); err != nil {
		s.logger.Errorw("failed to create revision", "project_id", project.ID, "error", err)
		return fmt.Errorf("failed to create revision: %w", err)
	}

	s.logger.Infow("config revision recorded", "project_id", project.ID, "revision_id", revision.ID)

	return nil
}

func (s *RevisionService) List(ctx context.Context, userID, projectID string, limit int) ([]domain.ConfigRevision, error) {
	if _, err := ownedProject(ctx, s.projects, userID, projectID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultRevisionLimit
	}
	if limit > MaxRevisionLimit {
		limit = MaxRevisionLimit
	}

	revisions, err := s.revisions.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get revisions: %w", err)
	}

	return revisions, nil
}
