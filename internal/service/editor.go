package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Beka01247/shopbuilder/internal/autosave"
	"github.com/Beka01247/shopbuilder/internal/configstore"
	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/livechannel"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/repo"
	"go.uber.org/zap"
)

type EditorOptions struct {
	AutosaveDelay   time.Duration
	AutosaveTimeout time.Duration
	PreviewDelay    time.Duration
	Reporter        autosave.Reporter
}

const DefaultPreviewDelay = 100 * time.Millisecond

// Session is one open editor: the project's live configuration, the
// autosave pipeline persisting it and the preview pushing it to storefronts.
type Session struct {
	ProjectID string
	Slug      string

	store       *configstore.Store
	autosave    *autosave.Pipeline
	preview     *livechannel.Preview
	unsubscribe []func()
}

type SessionState struct {
	ProjectID string               `json:"project_id"`
	Slug      string               `json:"slug"`
	Config    domain.Configuration `json:"config"`
	Autosave  string               `json:"autosave"`
}

func (s *Session) State() SessionState {
	return SessionState{
		ProjectID: s.ProjectID,
		Slug:      s.Slug,
		Config:    s.store.Get(),
		Autosave:  s.autosave.State().String(),
	}
}

func (s *Session) close(ctx context.Context) error {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.preview.Flush()
	s.preview.Stop()
	return s.autosave.Close(ctx)
}

type EditorService struct {
	projects  repo.ProjectRepository
	saver     autosave.Saver
	publisher *livechannel.Publisher
	broker    queue.Broker
	opts      EditorOptions
	logger    *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewEditorService(
	projects repo.ProjectRepository,
	saver autosave.Saver,
	broker queue.Broker,
	opts EditorOptions,
	logger *zap.SugaredLogger,
) *EditorService {
	if opts.PreviewDelay <= 0 {
		opts.PreviewDelay = DefaultPreviewDelay
	}

	return &EditorService{
		projects:  projects,
		saver:     saver,
		publisher: livechannel.NewPublisher(broker, logger),
		broker:    broker,
		opts:      opts,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Open returns the editor session of a project, creating it on first use.
func (s *EditorService) Open(ctx context.Context, userID, projectID string) (*Session, error) {
	project, err := ownedProject(ctx, s.projects, userID, projectID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[projectID]; ok {
		return session, nil
	}

	session := s.newSession(project)
	s.sessions[projectID] = session

	s.logger.Infow("editor session opened", "project_id", projectID, "slug", project.Slug)

	return session, nil
}

func (s *EditorService) newSession(project *domain.Project) *Session {
	store := configstore.New()
	if project.Config != nil {
		store.Set(project.Config)
	}

	pipeline := autosave.New(project.ID, s.saver, autosave.Options{
		Delay:    s.opts.AutosaveDelay,
		Timeout:  s.opts.AutosaveTimeout,
		Reporter: s.opts.Reporter,
		OnSaved:  s.publishSaved(project.Slug),
	}, s.logger)
	pipeline.Seed(project.Config)

	preview := livechannel.NewPreview(s.publisher, project.Slug, s.opts.PreviewDelay)

	return &Session{
		ProjectID: project.ID,
		Slug:      project.Slug,
		store:     store,
		autosave:  pipeline,
		preview:   preview,
		unsubscribe: []func(){
			store.Subscribe(pipeline.Observe),
			store.Subscribe(preview.Observe),
		},
	}
}

// publishSaved queues a config.saved event so the revision worker can record it.
func (s *EditorService) publishSaved(slug string) func(*domain.Project) {
	return func(project *domain.Project) {
		fingerprint, err := domain.Fingerprint(project.Config)
		if err != nil {
			s.logger.Warnw("failed to fingerprint saved config", "project_id", project.ID, "error", err)
			return
		}

		event := domain.ConfigSavedEvent{
			EventType:   domain.EventConfigSaved,
			ProjectID:   project.ID,
			Slug:        slug,
			Fingerprint: fingerprint,
			Timestamp:   project.UpdatedAt,
		}

		eventBytes, err := json.Marshal(event)
		if err != nil {
			s.logger.Warnw("failed to marshal config saved event", "project_id", project.ID, "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.broker.Publish(ctx, queue.QueueConfigSaved, eventBytes); err != nil {
			s.logger.Errorw("failed to publish config saved event", "project_id", project.ID, "error", err)
		}
	}
}

func (s *EditorService) Current(ctx context.Context, userID, projectID string) (SessionState, error) {
	session, err := s.Open(ctx, userID, projectID)
	if err != nil {
		return SessionState{}, err
	}
	return session.State(), nil
}

// Set replaces the project's configuration wholesale.
func (s *EditorService) Set(ctx context.Context, userID, projectID string, cfg domain.Configuration) (domain.Configuration, error) {
	return s.edit(ctx, userID, projectID, func(store *configstore.Store) error {
		store.Set(cfg)
		return nil
	})
}

func (s *EditorService) Patch(ctx context.Context, userID, projectID string, partial domain.PartialConfiguration) (domain.Configuration, error) {
	return s.edit(ctx, userID, projectID, func(store *configstore.Store) error {
		store.Patch(partial)
		return nil
	})
}

func (s *EditorService) PatchTheme(ctx context.Context, userID, projectID string, partial map[string]any) (domain.Configuration, error) {
	return s.edit(ctx, userID, projectID, func(store *configstore.Store) error {
		store.PatchTheme(partial)
		return nil
	})
}

func (s *EditorService) PatchBrand(ctx context.Context, userID, projectID string, partial map[string]any) (domain.Configuration, error) {
	return s.edit(ctx, userID, projectID, func(store *configstore.Store) error {
		store.PatchBrand(partial)
		return nil
	})
}

// ApplyPreset merges a predefined theme into the project's theme.
func (s *EditorService) ApplyPreset(ctx context.Context, userID, projectID, presetID string) (domain.Configuration, error) {
	preset, ok := domain.FindThemePreset(presetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, presetID)
	}

	return s.edit(ctx, userID, projectID, func(store *configstore.Store) error {
		store.PatchTheme(preset.Theme.Map())
		return nil
	})
}

func (s *EditorService) edit(ctx context.Context, userID, projectID string, fn func(store *configstore.Store) error) (domain.Configuration, error) {
	session, err := s.Open(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if err := fn(session.store); err != nil {
		return nil, err
	}

	return session.store.Get(), nil
}

// Close flushes the pending save of a session and forgets it.
func (s *EditorService) Close(ctx context.Context, userID, projectID string) error {
	if _, err := ownedProject(ctx, s.projects, userID, projectID); err != nil {
		return err
	}

	s.mu.Lock()
	session, ok := s.sessions[projectID]
	delete(s.sessions, projectID)
	s.mu.Unlock()

	if !ok {
		return nil
	}

	s.logger.Infow("editor session closed", "project_id", projectID)

	return session.close(ctx)
}

// Discard drops a session without saving, for projects being deleted.
func (s *EditorService) Discard(projectID string) {
	s.mu.Lock()
	session, ok := s.sessions[projectID]
	delete(s.sessions, projectID)
	s.mu.Unlock()

	if !ok {
		return
	}

	for _, unsubscribe := range session.unsubscribe {
		unsubscribe()
	}
	session.preview.Stop()
	session.autosave.Discard()
}

// Shutdown flushes and closes every open session.
func (s *EditorService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	var firstErr error
	for id, session := range sessions {
		if err := session.close(ctx); err != nil {
			s.logger.Errorw("failed to flush editor session", "project_id", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
