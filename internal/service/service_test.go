package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/gateway"
	"github.com/Beka01247/shopbuilder/internal/livechannel"
	"github.com/Beka01247/shopbuilder/internal/parser"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nop = zap.NewNop().Sugar()

type fixture struct {
	storage   *memory.Storage
	broker    *queue.MemoryBroker
	editor    *EditorService
	projects  *ProjectService
	revisions *RevisionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	storage := memory.New()
	broker := queue.NewMemoryBroker(0)
	saver := gateway.New(gateway.NewRecordBackend(storage.Projects()), nop)

	editor := NewEditorService(storage.Projects(), saver, broker, EditorOptions{
		AutosaveDelay: 30 * time.Millisecond,
		PreviewDelay:  5 * time.Millisecond,
	}, nop)
	t.Cleanup(func() { _ = editor.Shutdown(context.Background()) })

	return &fixture{
		storage:   storage,
		broker:    broker,
		editor:    editor,
		projects:  NewProjectService(storage.Projects(), storage.Revisions(), editor, nop),
		revisions: NewRevisionService(storage.Projects(), storage.Revisions(), nop),
	}
}

func (f *fixture) stored(t *testing.T, id string) *domain.Project {
	t.Helper()
	p, err := f.storage.Projects().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestSlugify(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	suffix := "loyw3v28"

	tests := []struct {
		name string
		want string
	}{
		{"My Shop", "my-shop-" + suffix},
		{"  Tea & Coffee!! ", "tea-coffee-" + suffix},
		{"Café 42", "caf-42-" + suffix},
		{"!!!", suffix},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name, at), tt.name)
	}
}

func TestCreateProjectUsesScaffold(t *testing.T) {
	f := newFixture(t)

	project, err := f.projects.Create(context.Background(), "user-1", "Tea Shop", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ProjectActive, project.Status)
	assert.Regexp(t, `^tea-shop-[0-9a-z]+$`, project.Slug)
	assert.Equal(t, "Tea Shop", domain.DecodeBrand(project.Config["brand"]).Name)
	assert.Equal(t, domain.PresetOcean, domain.DecodeTheme(project.Config["theme"]).ID)
}

func TestProjectOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	_, err = f.projects.Get(ctx, "intruder", project.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.editor.Open(ctx, "intruder", project.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, f.projects.Delete(ctx, "intruder", project.ID), domain.ErrForbidden)

	_, err = f.projects.Get(ctx, "owner", "missing")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestPublicConfigRequiresActiveProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	cfg, err := f.projects.PublicConfig(ctx, project.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Shop", domain.DecodeBrand(cfg["brand"]).Name)

	inactive := domain.ProjectInactive
	_, err = f.projects.Update(ctx, "owner", project.ID, domain.ProjectUpdate{Status: &inactive}, nil)
	require.NoError(t, err)

	_, err = f.projects.PublicConfig(ctx, project.Slug)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestEditorAutosavesAndRecordsRevision(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []domain.ConfigSavedEvent
	require.NoError(t, f.broker.Subscribe(ctx, queue.QueueConfigSaved, func(ctx context.Context, msg []byte) error {
		var event domain.ConfigSavedEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			return err
		}
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
		return f.revisions.ProcessConfigSavedEvent(ctx, event)
	}))

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	for _, color := range []string{"#111111", "#222222", "#112233"} {
		_, err := f.editor.PatchTheme(ctx, "owner", project.ID, map[string]any{"primaryColor": color})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		f.broker.Drain()
		mu.Lock()
		defer mu.Unlock()
		return len(events) > 0
	}, time.Second, 5*time.Millisecond)
	f.broker.Drain()
	assert.Equal(t, "#112233", domain.DecodeTheme(f.stored(t, project.ID).Config["theme"]).PrimaryColor)

	mu.Lock()
	require.Len(t, events, 1)
	assert.Equal(t, project.ID, events[0].ProjectID)
	assert.Equal(t, project.Slug, events[0].Slug)
	mu.Unlock()

	revisions, err := f.revisions.List(ctx, "owner", project.ID, 0)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "#112233", domain.DecodeTheme(revisions[0].Config["theme"]).PrimaryColor)

	// the same event again adds nothing
	require.NoError(t, f.revisions.ProcessConfigSavedEvent(ctx, events[0]))
	revisions, err = f.revisions.List(ctx, "owner", project.ID, 0)
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestEditorPushesPreviewToStorefront(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	var mu sync.Mutex
	var received []domain.Configuration
	sub := livechannel.NewSubscriber(f.broker, nop)
	require.NoError(t, sub.OnUpdate(ctx, project.Slug, func(cfg domain.Configuration) {
		mu.Lock()
		received = append(received, cfg)
		mu.Unlock()
	}))

	_, err = f.editor.PatchBrand(ctx, "owner", project.ID, map[string]any{"name": "Renamed"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		f.broker.Drain()
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Renamed", domain.DecodeBrand(received[0]["brand"]).Name)
	assert.NotNil(t, received[0]["theme"], "push carries the full configuration")
}

func TestApplyPreset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	cfg, err := f.editor.ApplyPreset(ctx, "owner", project.ID, domain.PresetNeoBrutalist)
	require.NoError(t, err)

	th := domain.DecodeTheme(cfg["theme"])
	assert.Equal(t, domain.PresetNeoBrutalist, th.ID)
	assert.Equal(t, "#000000", th.PrimaryColor)
	assert.NotEmpty(t, th.CustomColors["backgroundGradient"])

	_, err = f.editor.ApplyPreset(ctx, "owner", project.ID, "vaporwave")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestCloseFlushesPendingSave(t *testing.T) {
	storage := memory.New()
	broker := queue.NewMemoryBroker(0)
	saver := gateway.New(gateway.NewRecordBackend(storage.Projects()), nop)
	editor := NewEditorService(storage.Projects(), saver, broker, EditorOptions{AutosaveDelay: time.Hour}, nop)
	projects := NewProjectService(storage.Projects(), storage.Revisions(), editor, nop)
	ctx := context.Background()

	project, err := projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	_, err = editor.Set(ctx, "owner", project.ID, domain.Configuration{"brand": map[string]any{"name": "Replaced"}})
	require.NoError(t, err)

	state, err := editor.Current(ctx, "owner", project.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", state.Autosave)

	require.NoError(t, editor.Close(ctx, "owner", project.ID))

	stored, err := storage.Projects().GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Configuration{"brand": map[string]any{"name": "Replaced"}}, stored.Config)
}

func TestDeleteDiscardsSessionAndRevisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)
	require.NoError(t, f.storage.Revisions().Create(ctx, &domain.ConfigRevision{ProjectID: project.ID}))

	_, err = f.editor.Open(ctx, "owner", project.ID)
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(ctx, "owner", project.ID))

	_, err = f.storage.Projects().GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	_, err = f.storage.Revisions().Latest(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrRevisionNotFound)
}

type fakeParser struct {
	catalog *parser.Catalog
	err     error
}

func (p *fakeParser) ParseCatalog(context.Context, string) (*parser.Catalog, error) {
	return p.catalog, p.err
}

func TestImportTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	catalog := &parser.Catalog{
		Categories: []any{map[string]any{"id": "tea", "label": "Tea"}},
		Products:   []any{map[string]any{"id": "t1", "category": "tea"}, map[string]any{"id": "t2", "category": "tea"}},
	}
	imports := NewImportService(f.storage.ImportTasks(), f.storage.Projects(), f.editor, &fakeParser{catalog: catalog}, f.broker, nop)

	var mu sync.Mutex
	var messages []domain.ImportMessage
	require.NoError(t, f.broker.Subscribe(ctx, queue.QueueCatalogImport, func(_ context.Context, msg []byte) error {
		var m domain.ImportMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			return err
		}
		mu.Lock()
		messages = append(messages, m)
		mu.Unlock()
		return nil
	}))

	task, err := imports.CreateTask(ctx, "owner", project.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportQueued, task.Status)

	f.broker.Drain()
	mu.Lock()
	require.Len(t, messages, 1)
	assert.Equal(t, task.ID, messages[0].TaskID)
	mu.Unlock()

	require.NoError(t, imports.ProcessImportTask(ctx, task.ID))

	done, err := imports.GetTask(ctx, "owner", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportCompleted, done.Status)
	assert.Equal(t, 1, done.Categories)
	assert.Equal(t, 2, done.Products)

	state, err := f.editor.Current(ctx, "owner", project.ID)
	require.NoError(t, err)
	assert.Len(t, state.Config.Array(domain.KeyProducts), 2)

	_, err = imports.GetTask(ctx, "intruder", task.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestImportFailureMarksTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "owner", "Shop", nil)
	require.NoError(t, err)

	imports := NewImportService(f.storage.ImportTasks(), f.storage.Projects(), f.editor,
		&fakeParser{err: errors.New("no data found in spreadsheet")}, f.broker, nop)

	task, err := imports.CreateTask(ctx, "owner", project.ID, "sheet-1")
	require.NoError(t, err)

	assert.Error(t, imports.ProcessImportTask(ctx, task.ID))

	failed, err := imports.GetTask(ctx, "owner", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportFailed, failed.Status)
	assert.Equal(t, "no data found in spreadsheet", failed.ErrorMessage)
}

func TestImportDisabledWithoutParser(t *testing.T) {
	f := newFixture(t)

	imports := NewImportService(f.storage.ImportTasks(), f.storage.Projects(), f.editor, nil, f.broker, nop)

	_, err := imports.CreateTask(context.Background(), "owner", "p", "sheet")
	assert.ErrorIs(t, err, ErrImportUnavailable)
	assert.False(t, imports.Enabled())
}
