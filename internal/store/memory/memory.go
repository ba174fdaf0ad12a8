// Package memory keeps projects, revisions and import tasks in process memory.
// It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/google/uuid"
)

type Storage struct {
	mu        sync.RWMutex
	projects  map[string]domain.Project
	revisions map[string][]domain.ConfigRevision
	tasks     map[string]domain.ImportTask
	now       func() time.Time
}

func New() *Storage {
	return &Storage{
		projects:  make(map[string]domain.Project),
		revisions: make(map[string][]domain.ConfigRevision),
		tasks:     make(map[string]domain.ImportTask),
		now:       time.Now,
	}
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) Projects() *ProjectRepository { return &ProjectRepository{s} }

func (s *Storage) Revisions() *RevisionRepository { return &RevisionRepository{s} }

func (s *Storage) ImportTasks() *ImportTaskRepository { return &ImportTaskRepository{s} }

type ProjectRepository struct{ s *Storage }

func (r *ProjectRepository) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	for _, p := range r.s.projects {
		if p.Slug == project.Slug {
			return fmt.Errorf("failed to create project: slug %q already exists", project.Slug)
		}
	}
	now := r.s.now()
	project.CreatedAt = now
	project.UpdatedAt = now

	r.s.projects[project.ID] = copyProject(*project)
	return nil
}

func (r *ProjectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	out := copyProject(p)
	return &out, nil
}

func (r *ProjectRepository) GetBySlug(_ context.Context, slug string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.projects {
		if p.Slug == slug {
			out := copyProject(p)
			return &out, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r *ProjectRepository) ListByUser(_ context.Context, userID string) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Project{}
	for _, p := range r.s.projects {
		if p.UserID == userID {
			out = append(out, copyProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *ProjectRepository) Update(_ context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	p.UpdatedAt = r.s.now()
	r.s.projects[id] = p

	out := copyProject(p)
	return &out, nil
}

func (r *ProjectRepository) UpdateConfig(_ context.Context, id string, cfg domain.Configuration) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p.Config = cfg.Clone()
	p.UpdatedAt = r.s.now()
	r.s.projects[id] = p

	out := copyProject(p)
	return &out, nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, id)
	return nil
}

type RevisionRepository struct{ s *Storage }

func (r *RevisionRepository) Create(_ context.Context, rev *domain.ConfigRevision) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.SavedAt.IsZero() {
		rev.SavedAt = r.s.now()
	}
	stored := *rev
	stored.Config = rev.Config.Clone()
	r.s.revisions[rev.ProjectID] = append(r.s.revisions[rev.ProjectID], stored)
	return nil
}

func (r *RevisionRepository) Latest(_ context.Context, projectID string) (*domain.ConfigRevision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	revs := r.s.revisions[projectID]
	if len(revs) == 0 {
		return nil, domain.ErrRevisionNotFound
	}
	latest := revs[len(revs)-1]
	return &latest, nil
}

func (r *RevisionRepository) ListByProject(_ context.Context, projectID string, limit int) ([]domain.ConfigRevision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	revs := r.s.revisions[projectID]
	out := make([]domain.ConfigRevision, 0, len(revs))
	for i := len(revs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, revs[i])
	}
	return out, nil
}

func (r *RevisionRepository) DeleteByProject(_ context.Context, projectID string) error {
	r.s.mu.Lock()
	delete(r.s.revisions, projectID)
	r.s.mu.Unlock()
	return nil
}

type ImportTaskRepository struct{ s *Storage }

func (r *ImportTaskRepository) Create(_ context.Context, task *domain.ImportTask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := r.s.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *ImportTaskRepository) GetByID(_ context.Context, id string) (*domain.ImportTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *ImportTaskRepository) UpdateStatus(_ context.Context, id string, status domain.ImportTaskStatus, errorMsg string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.Status = status
	if errorMsg != "" {
		task.ErrorMessage = errorMsg
	}
	task.UpdatedAt = r.s.now()
	r.s.tasks[id] = task
	return nil
}

func (r *ImportTaskRepository) Complete(_ context.Context, id string, categories, products int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.Status = domain.ImportCompleted
	task.Categories = categories
	task.Products = products
	task.UpdatedAt = r.s.now()
	r.s.tasks[id] = task
	return nil
}

func copyProject(p domain.Project) domain.Project {
	p.Config = p.Config.Clone()
	return p
}
