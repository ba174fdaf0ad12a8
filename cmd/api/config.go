package main

import (
	"net/http"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/go-chi/chi"
)

type ReplaceConfigRequest struct {
	ProjectID string               `json:"projectId" validate:"required"`
	Config    domain.Configuration `json:"config" validate:"required"`
}

// getPublicConfigHandler godoc
//
//	@Summary		Public storefront configuration
//	@Description	Returns the configuration of an active project; inactive projects are not found
//	@Tags			config
//	@Produce		json
//	@Param			slug	path		string	true	"Project slug"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		404		{object}	map[string]string
//	@Router			/config/{slug} [get]
func (app *application) getPublicConfigHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	cfg, err := app.projectService.PublicConfig(r.Context(), slug)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store")
	if err := app.jsonResponse(w, http.StatusOK, cfg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// replaceConfigHandler godoc
//
//	@Summary		Replace configuration
//	@Description	Replaces a project's configuration wholesale through its editor session
//	@Tags			config
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ReplaceConfigRequest	true	"Configuration"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/config [put]
func (app *application) replaceConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req ReplaceConfigRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	cfg, err := app.editorService.Set(r.Context(), getUserFromContext(r), req.ProjectID, req.Config)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, cfg); err != nil {
		app.internalServerError(w, r, err)
	}
}
