package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// listRevisionsHandler godoc
//
//	@Summary		List config revisions
//	@Description	Lists saved configuration revisions, newest first
//	@Tags			revisions
//	@Produce		json
//	@Param			id		path		string	true	"Project ID"
//	@Param			limit	query		int		false	"Maximum revisions (default 20, max 100)"
//	@Success		200		{array}		domain.ConfigRevision
//	@Failure		400		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/projects/{id}/revisions [get]
func (app *application) listRevisionsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			app.badRequestResponse(w, r, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	revisions, err := app.revisionService.List(r.Context(), getUserFromContext(r), chi.URLParam(r, "id"), limit)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, revisions); err != nil {
		app.internalServerError(w, r, err)
	}
}
