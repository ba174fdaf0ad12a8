package main

import (
	"net/http"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/go-chi/chi"
)

type CreateProjectRequest struct {
	Name   string               `json:"name" validate:"required,max=100"`
	Config domain.Configuration `json:"config,omitempty"`
}

type UpdateProjectRequest struct {
	Name   *string              `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Status *string              `json:"status,omitempty" validate:"omitempty,oneof=active inactive draft"`
	Config domain.Configuration `json:"config,omitempty"`
}

// listProjectsHandler godoc
//
//	@Summary		List projects
//	@Description	Lists the caller's projects, most recently updated first
//	@Tags			projects
//	@Produce		json
//	@Success		200	{array}		domain.Project
//	@Failure		401	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects [get]
func (app *application) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := app.projectService.List(r.Context(), getUserFromContext(r))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, projects); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createProjectHandler godoc
//
//	@Summary		Create project
//	@Description	Creates a project; the configuration defaults to the scaffold
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProjectRequest	true	"Project"
//	@Success		201		{object}	domain.Project
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects [post]
func (app *application) createProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	project, err := app.projectService.Create(r.Context(), getUserFromContext(r), req.Name, req.Config)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, project); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getProjectHandler godoc
//
//	@Summary		Get project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	domain.Project
//	@Failure		403	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id} [get]
func (app *application) getProjectHandler(w http.ResponseWriter, r *http.Request) {
	project, err := app.projectService.Get(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, project); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProjectHandler godoc
//
//	@Summary		Update project
//	@Description	Updates name and status; a config replaces the live configuration and is autosaved
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project ID"
//	@Param			request	body		UpdateProjectRequest	true	"Fields to change"
//	@Success		200		{object}	domain.Project
//	@Failure		400		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id} [put]
func (app *application) updateProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	update := domain.ProjectUpdate{Name: req.Name}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		update.Status = &status
	}

	project, err := app.projectService.Update(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), update, req.Config)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, project); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteProjectHandler godoc
//
//	@Summary		Delete project
//	@Description	Deletes a project, its open editor session and its revisions
//	@Tags			projects
//	@Param			id	path	string	true	"Project ID"
//	@Success		204
//	@Failure		403	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id} [delete]
func (app *application) deleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.projectService.Delete(r.Context(), getUserFromContext(r), chi.URLParam(r, "id")); err != nil {
		app.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
