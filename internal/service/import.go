package service

import (
	"context"
	"fmt"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/parser"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/repo"
	"go.uber.org/zap"
)

type CatalogParser interface {
	ParseCatalog(ctx context.Context, spreadsheetID string) (*parser.Catalog, error)
}

type ImportService struct {
	tasks    repo.ImportTaskRepository
	projects repo.ProjectRepository
	editor   *EditorService
	parser   CatalogParser
	broker   queue.Broker
	logger   *zap.SugaredLogger
}

// NewImportService builds the import service. A nil parser disables imports.
func NewImportService(
	tasks repo.ImportTaskRepository,
	projects repo.ProjectRepository,
	editor *EditorService,
	parser CatalogParser,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *ImportService {
	return &ImportService{
		tasks:    tasks,
		projects: projects,
		editor:   editor,
		parser:   parser,
		broker:   broker,
		logger:   logger,
	}
}

func (s *ImportService) Enabled() bool {
	return s.parser != nil
}

func (s *ImportService) CreateTask(ctx context.Context, userID, projectID, spreadsheetID string) (*domain.ImportTask, error) {
	if !s.Enabled() {
		return nil, ErrImportUnavailable
	}
	if _, err := ownedProject(ctx, s.projects, userID, projectID); err != nil {
		return nil, err
	}

	// create import task
	task := &domain.ImportTask{
		ProjectID:     projectID,
		UserID:        userID,
		SpreadsheetID: spreadsheetID,
		Status:        domain.ImportQueued,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create import task: %w", err)
	}

	// publish message to queue
	message := domain.ImportMessage{
		TaskID:        task.ID,
		ProjectID:     projectID,
		SpreadsheetID: spreadsheetID,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.broker.Publish(ctx, queue.QueueCatalogImport, messageBytes); err != nil {
		// update task status to failed
		_ = s.tasks.UpdateStatus(ctx, task.ID, domain.ImportFailed, err.Error())
		return nil, fmt.Errorf("failed to publish message: %w", err)
	}

	s.logger.Infow("import task created", "task_id", task.ID, "project_id", projectID, "spreadsheet_id", spreadsheetID)

	return task, nil
}

func (s *ImportService) GetTask(ctx context.Context, userID, taskID string) (*domain.ImportTask, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrForbidden
	}

	return task, nil
}

// ProcessImportTask parses the sheet and replaces the project's categories
// and products through its editor session.
func (s *ImportService) ProcessImportTask(ctx context.Context, taskID string) error {
	if !s.Enabled() {
		return ErrImportUnavailable
	}

	// get task
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	// update status to processing
	if err := s.tasks.UpdateStatus(ctx, taskID, domain.ImportProcessing, ""); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	s.logger.Infow("processing import task", "task_id", taskID)

	catalog, err := s.parser.ParseCatalog(ctx, task.SpreadsheetID)
	if err != nil {
		s.logger.Errorw("failed to parse catalog", "task_id", taskID, "error", err)
		_ = s.tasks.UpdateStatus(ctx, taskID, domain.ImportFailed, err.Error())
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	patch := domain.PartialConfiguration{
		domain.KeyCategories: catalog.Categories,
		domain.KeyProducts:   catalog.Products,
	}
	if _, err := s.editor.Patch(ctx, task.UserID, task.ProjectID, patch); err != nil {
		s.logger.Errorw("failed to apply catalog", "task_id", taskID, "error", err)
		_ = s.tasks.UpdateStatus(ctx, taskID, domain.ImportFailed, err.Error())
		return fmt.Errorf("failed to apply catalog: %w", err)
	}

	if err := s.tasks.Complete(ctx, taskID, len(catalog.Categories), len(catalog.Products)); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("import task completed", "task_id", taskID,
		"categories", len(catalog.Categories), "products", len(catalog.Products))

	return nil
}
