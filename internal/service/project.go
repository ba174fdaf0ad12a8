package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/gateway"
	"github.com/Beka01247/shopbuilder/internal/repo"
	"go.uber.org/zap"
)

type ProjectService struct {
	projects  repo.ProjectRepository
	revisions repo.RevisionRepository
	records   *gateway.RecordBackend
	editor    *EditorService
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewProjectService(
	projects repo.ProjectRepository,
	revisions repo.RevisionRepository,
	editor *EditorService,
	logger *zap.SugaredLogger,
) *ProjectService {
	return &ProjectService{
		projects:  projects,
		revisions: revisions,
		records:   gateway.NewRecordBackend(projects),
		editor:    editor,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ProjectService) Create(ctx context.Context, userID, name string, cfg domain.Configuration) (*domain.Project, error) {
	if cfg == nil {
		cfg = domain.DefaultConfiguration(name)
	}

	project := &domain.Project{
		UserID: userID,
		Slug:   Slugify(name, s.now()),
		Name:   name,
		Config: cfg,
		Status: domain.ProjectActive,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Infow("project created", "project_id", project.ID, "slug", project.Slug, "user_id", userID)

	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	return ownedProject(ctx, s.projects, userID, id)
}

// Update changes name and status. A new config goes through the editor
// session so it is autosaved and pushed like any other edit.
func (s *ProjectService) Update(ctx context.Context, userID, id string, update domain.ProjectUpdate, cfg domain.Configuration) (*domain.Project, error) {
	if _, err := ownedProject(ctx, s.projects, userID, id); err != nil {
		return nil, err
	}

	project, err := s.projects.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if cfg != nil {
		current, err := s.editor.Set(ctx, userID, id, cfg)
		if err != nil {
			return nil, err
		}
		project.Config = current
	}

	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := ownedProject(ctx, s.projects, userID, id); err != nil {
		return err
	}

	s.editor.Discard(id)

	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if err := s.revisions.DeleteByProject(ctx, id); err != nil {
		s.logger.Warnw("failed to delete project revisions", "project_id", id, "error", err)
	}

	s.logger.Infow("project deleted", "project_id", id)

	return nil
}

// PublicConfig returns the configuration of an active project by slug.
func (s *ProjectService) PublicConfig(ctx context.Context, slug string) (domain.Configuration, error) {
	return s.records.Load(ctx, slug)
}

// Slugify derives a unique-ish slug from a project name and its creation time.
func Slugify(name string, at time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	base := strings.Trim(b.String(), "-")
	suffix := strconv.FormatInt(at.UnixMilli(), 36)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
