package main

import (
	"errors"
	"net/http"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/go-chi/chi"
)

type ApplyPresetRequest struct {
	PresetID string `json:"presetId" validate:"required"`
}

var errEmptyPatch = errors.New("patch must contain at least one key")

// openSessionHandler godoc
//
//	@Summary		Open editor session
//	@Description	Opens the editor session of a project; opening twice returns the same session
//	@Tags			editor
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	service.SessionState
//	@Failure		403	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/session [post]
func (app *application) openSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := app.editorService.Open(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session.State()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getSessionHandler godoc
//
//	@Summary		Current editor state
//	@Description	Returns the in-memory configuration and the autosave state
//	@Tags			editor
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	service.SessionState
//	@Failure		403	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/session [get]
func (app *application) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	state, err := app.editorService.Current(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, state); err != nil {
		app.internalServerError(w, r, err)
	}
}

// closeSessionHandler godoc
//
//	@Summary		Close editor session
//	@Description	Flushes the pending save and closes the session
//	@Tags			editor
//	@Param			id	path	string	true	"Project ID"
//	@Success		204
//	@Failure		403	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/session [delete]
func (app *application) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.editorService.Close(r.Context(), getUserFromContext(r), chi.URLParam(r, "id")); err != nil {
		app.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// patchConfigHandler godoc
//
//	@Summary		Patch configuration
//	@Description	Merges top-level keys: objects are shallow-merged, arrays and scalars replaced
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project ID"
//	@Param			request	body		map[string]interface{}	true	"Partial configuration"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/config [patch]
func (app *application) patchConfigHandler(w http.ResponseWriter, r *http.Request) {
	partial, ok := app.readPatch(w, r)
	if !ok {
		return
	}

	cfg, err := app.editorService.Patch(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), partial)
	app.writeEdit(w, r, cfg, err)
}

// patchThemeHandler godoc
//
//	@Summary		Patch theme
//	@Description	Merges fields into the theme; a no-op before the configuration exists
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project ID"
//	@Param			request	body		map[string]interface{}	true	"Theme fields"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/config/theme [patch]
func (app *application) patchThemeHandler(w http.ResponseWriter, r *http.Request) {
	partial, ok := app.readPatch(w, r)
	if !ok {
		return
	}

	cfg, err := app.editorService.PatchTheme(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), partial)
	app.writeEdit(w, r, cfg, err)
}

// patchBrandHandler godoc
//
//	@Summary		Patch brand
//	@Description	Merges fields into the brand; a no-op before the configuration exists
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project ID"
//	@Param			request	body		map[string]interface{}	true	"Brand fields"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/config/brand [patch]
func (app *application) patchBrandHandler(w http.ResponseWriter, r *http.Request) {
	partial, ok := app.readPatch(w, r)
	if !ok {
		return
	}

	cfg, err := app.editorService.PatchBrand(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), partial)
	app.writeEdit(w, r, cfg, err)
}

// applyPresetHandler godoc
//
//	@Summary		Apply theme preset
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project ID"
//	@Param			request	body		ApplyPresetRequest	true	"Preset"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/config/theme/preset [post]
func (app *application) applyPresetHandler(w http.ResponseWriter, r *http.Request) {
	var req ApplyPresetRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	cfg, err := app.editorService.ApplyPreset(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), req.PresetID)
	app.writeEdit(w, r, cfg, err)
}

func (app *application) readPatch(w http.ResponseWriter, r *http.Request) (domain.PartialConfiguration, bool) {
	var partial domain.PartialConfiguration
	if err := readJson(w, r, &partial); err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	if len(partial) == 0 {
		app.badRequestResponse(w, r, errEmptyPatch)
		return nil, false
	}

	return partial, true
}

func (app *application) writeEdit(w http.ResponseWriter, r *http.Request, cfg domain.Configuration, err error) {
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, cfg); err != nil {
		app.internalServerError(w, r, err)
	}
}
