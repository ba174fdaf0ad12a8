package worker

import (
	"context"
	"testing"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/gateway"
	"github.com/Beka01247/shopbuilder/internal/parser"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/service"
	"github.com/Beka01247/shopbuilder/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nop = zap.NewNop().Sugar()

type staticParser struct{ catalog *parser.Catalog }

func (p staticParser) ParseCatalog(context.Context, string) (*parser.Catalog, error) {
	return p.catalog, nil
}

func newEditor(storage *memory.Storage, broker queue.Broker) *service.EditorService {
	saver := gateway.New(gateway.NewRecordBackend(storage.Projects()), nop)
	return service.NewEditorService(storage.Projects(), saver, broker, service.EditorOptions{AutosaveDelay: time.Millisecond}, nop)
}

func TestConfigRevisionWorker(t *testing.T) {
	storage := memory.New()
	broker := queue.NewMemoryBroker(0)
	ctx := context.Background()

	project := &domain.Project{UserID: "u", Slug: "shop", Status: domain.ProjectActive, Config: domain.Configuration{"brand": map[string]any{"name": "A"}}}
	require.NoError(t, storage.Projects().Create(ctx, project))

	w := NewConfigRevisionWorker(service.NewRevisionService(storage.Projects(), storage.Revisions(), nop), broker, nop)
	require.NoError(t, w.Start())
	defer w.Stop()

	event, err := json.Marshal(domain.ConfigSavedEvent{EventType: domain.EventConfigSaved, ProjectID: project.ID})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, queue.QueueConfigSaved, event))
	require.NoError(t, broker.Publish(ctx, queue.QueueConfigSaved, event))
	broker.Drain()

	revisions, err := storage.Revisions().ListByProject(ctx, project.ID, 10)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, domain.EventConfigSaved, revisions[0].EventType)
}

func TestConfigRevisionWorkerDeadLettersGarbage(t *testing.T) {
	storage := memory.New()
	broker := queue.NewMemoryBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewConfigRevisionWorker(service.NewRevisionService(storage.Projects(), storage.Revisions(), nop), broker, nop)
	require.NoError(t, w.Start())
	defer w.Stop()

	dead := make(chan []byte, 1)
	require.NoError(t, broker.Subscribe(ctx, queue.QueueConfigSavedDLQ, func(_ context.Context, msg []byte) error {
		dead <- msg
		return nil
	}))

	require.NoError(t, broker.Publish(ctx, queue.QueueConfigSaved, []byte("not json")))

	select {
	case msg := <-dead:
		assert.Equal(t, "not json", string(msg))
	case <-time.After(time.Second):
		t.Fatal("message was not dead-lettered")
	}
}

func TestCatalogImportWorker(t *testing.T) {
	storage := memory.New()
	broker := queue.NewMemoryBroker(0)
	ctx := context.Background()

	project := &domain.Project{UserID: "u", Slug: "shop", Status: domain.ProjectActive, Config: domain.DefaultConfiguration("Shop")}
	require.NoError(t, storage.Projects().Create(ctx, project))

	editor := newEditor(storage, broker)
	defer editor.Shutdown(ctx)

	catalog := &parser.Catalog{
		Categories: []any{map[string]any{"id": "tea", "label": "Tea"}},
		Products:   []any{map[string]any{"id": "t1", "category": "tea"}},
	}
	imports := service.NewImportService(storage.ImportTasks(), storage.Projects(), editor, staticParser{catalog}, broker, nop)

	w := NewCatalogImportWorker(imports, broker, nop)
	require.NoError(t, w.Start())
	defer w.Stop()

	task, err := imports.CreateTask(ctx, "u", project.ID, "sheet")
	require.NoError(t, err)
	broker.Drain()

	done, err := imports.GetTask(ctx, "u", task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportCompleted, done.Status)

	require.NoError(t, editor.Close(ctx, "u", project.ID))
	stored, err := storage.Projects().GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Config.Array(domain.KeyProducts), 1)
}
