package main

import (
	"net/http"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

// listThemesHandler godoc
//
//	@Summary		List theme presets
//	@Tags			themes
//	@Produce		json
//	@Success		200	{array}	domain.ThemePreset
//	@Router			/themes [get]
func (app *application) listThemesHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, domain.ThemePresets); err != nil {
		app.internalServerError(w, r, err)
	}
}
