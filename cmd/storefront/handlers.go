package main

import (
	"errors"
	"net/http"

	"github.com/Beka01247/shopbuilder/internal/derive"
	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/loader"
	"github.com/Beka01247/shopbuilder/internal/storefront"
	"github.com/go-chi/chi"
)

// resolveKey maps "/{slug}/..." to slug; the root documents use the keyless runtime.
func resolveKey(r *http.Request) string {
	if chi.URLParam(r, "slug") == "" {
		return ""
	}
	return loader.ResolveKey(r.URL.Path)
}

// snapshot boots the runtime of the request's key and returns its state.
// A boot failure is answered with 503 and the raw reason.
func (app *application) snapshot(w http.ResponseWriter, r *http.Request) (storefront.Snapshot, bool) {
	key := resolveKey(r)

	rt, err := app.registry.Get(key)
	if errors.Is(err, domain.ErrInvalidSlug) {
		writeJsonError(w, http.StatusNotFound, "not found")
		return storefront.Snapshot{}, false
	}
	if err != nil {
		app.logger.Errorw("failed to create storefront runtime", "key", key, "error", err)
		writeJsonError(w, http.StatusServiceUnavailable, err.Error())
		return storefront.Snapshot{}, false
	}

	if err := rt.Boot(r.Context()); err != nil {
		app.logger.Warnw("storefront unavailable", "key", key, "state", rt.State().String(), "error", err)
		writeJsonError(w, http.StatusServiceUnavailable, err.Error())
		return storefront.Snapshot{}, false
	}

	return rt.Snapshot(), true
}

func (app *application) configHandler(w http.ResponseWriter, r *http.Request) {
	snap, ok := app.snapshot(w, r)
	if !ok {
		return
	}

	noCache(w)
	if err := writeJson(w, http.StatusOK, snap.Config); err != nil {
		app.logger.Errorw("failed to write config", "key", snap.Key, "error", err)
	}
}

func (app *application) themeHandler(w http.ResponseWriter, r *http.Request) {
	snap, ok := app.snapshot(w, r)
	if !ok {
		return
	}

	noCache(w)
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if snap.ThemeID != "" {
		w.Header().Set("X-Theme", snap.ThemeID)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(snap.CSS))
}

type catalogResponse struct {
	Theme string `json:"theme,omitempty"`
	derive.Data
}

// catalogHandler serves the derived storefront data; ?category= narrows the products.
func (app *application) catalogHandler(w http.ResponseWriter, r *http.Request) {
	snap, ok := app.snapshot(w, r)
	if !ok {
		return
	}

	data := snap.Data
	if category := r.URL.Query().Get("category"); category != "" {
		data.Products = derive.FilterByCategory(data.Products, category)
	}

	noCache(w)
	if err := writeJson(w, http.StatusOK, catalogResponse{Theme: snap.ThemeID, Data: data}); err != nil {
		app.logger.Errorw("failed to write catalog", "key", snap.Key, "error", err)
	}
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Runtimes map[string]string `json:"runtimes"`
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	runtimes := make(map[string]string)
	for _, key := range app.registry.Keys() {
		rt, ok := app.registry.Peek(key)
		if !ok {
			continue
		}
		name := key
		if name == "" {
			name = "/"
		}
		runtimes[name] = rt.State().String()
	}

	response := HealthResponse{
		Status:   "healthy",
		Version:  version,
		Runtimes: runtimes,
	}

	if err := writeJson(w, http.StatusOK, response); err != nil {
		app.logger.Errorw("failed to write health", "error", err)
	}
}
