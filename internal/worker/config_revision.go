package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/service"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ConfigRevisionWorker struct {
	revisionService *service.RevisionService
	broker          queue.Broker
	logger          *zap.SugaredLogger
	ctx             context.Context
	cancel          context.CancelFunc
}

func NewConfigRevisionWorker(
	revisionService *service.RevisionService,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *ConfigRevisionWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &ConfigRevisionWorker{
		revisionService: revisionService,
		broker:          broker,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}
}

func (w *ConfigRevisionWorker) Start() error {
	w.logger.Info("starting config revision worker")

	return w.broker.Subscribe(w.ctx, queue.QueueConfigSaved, w.handleMessage)
}

func (w *ConfigRevisionWorker) Stop() {
	w.logger.Info("stopping config revision worker")
	w.cancel()
}

func (w *ConfigRevisionWorker) handleMessage(ctx context.Context, message []byte) error {
	var event domain.ConfigSavedEvent
	if err := json.Unmarshal(message, &event); err != nil {
		w.logger.Errorw("failed to unmarshal event", "error", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	w.logger.Infow("processing config saved event", "project_id", event.ProjectID, "event_type", event.EventType)

	if err := w.revisionService.ProcessConfigSavedEvent(ctx, event); err != nil {
		w.logger.Errorw("failed to process config saved event", "project_id", event.ProjectID, "error", err)
		return err
	}

	return nil
}
