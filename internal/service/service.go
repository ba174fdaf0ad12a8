package service

import (
	"context"
	"errors"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/repo"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrPresetNotFound    = errors.New("theme preset not found")
	ErrImportUnavailable = errors.New("catalog import is not configured")
)

// ownedProject loads a project and checks that userID owns it.
func ownedProject(ctx context.Context, projects repo.ProjectRepository, userID, id string) (*domain.Project, error) {
	project, err := projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}
