package main

import (
	"net/http"

	"github.com/go-chi/chi"
)

type CreateImportRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" validate:"required"`
}

// createImportHandler godoc
//
//	@Summary		Import catalog
//	@Description	Queues an import of categories and products from a Google Sheet
//	@Tags			imports
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project ID"
//	@Param			request	body		CreateImportRequest	true	"Import request"
//	@Success		202		{object}	domain.ImportTask
//	@Failure		400		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		503		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/import [post]
func (app *application) createImportHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateImportRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	task, err := app.importService.CreateTask(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), req.SpreadsheetID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusAccepted, task); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getImportHandler godoc
//
//	@Summary		Get import task
//	@Tags			imports
//	@Produce		json
//	@Param			task_id	path		string	true	"Task ID"
//	@Success		200		{object}	domain.ImportTask
//	@Failure		400		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/imports/{task_id} [get]
func (app *application) getImportHandler(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		app.badRequestResponse(w, r, ErrInvalidID)
		return
	}

	task, err := app.importService.GetTask(r.Context(), getUserFromContext(r), taskID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, task); err != nil {
		app.internalServerError(w, r, err)
	}
}
