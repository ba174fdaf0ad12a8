package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Beka01247/shopbuilder/internal/auth"
	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/gateway"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/ratelimiter"
	"github.com/Beka01247/shopbuilder/internal/service"
	"github.com/Beka01247/shopbuilder/internal/staticfile"
	"github.com/Beka01247/shopbuilder/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApplication(t *testing.T, cfg config) *application {
	t.Helper()

	logger := zap.NewNop().Sugar()
	store := memory.New()
	broker := queue.NewMemoryBroker(0)

	editor := service.NewEditorService(
		store.Projects(),
		gateway.New(gateway.NewRecordBackend(store.Projects()), logger),
		broker,
		service.EditorOptions{AutosaveDelay: 10 * time.Millisecond, PreviewDelay: 5 * time.Millisecond},
		logger,
	)
	t.Cleanup(func() { _ = editor.Shutdown(context.Background()) })

	return &application{
		config:          cfg,
		logger:          logger,
		rateLimiter:     ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
		authenticator:   auth.NewJWTAuthenticator("test-secret", "shopbuilder"),
		storage:         memoryStorage{store},
		broker:          broker,
		projectService:  service.NewProjectService(store.Projects(), store.Revisions(), editor, logger),
		editorService:   editor,
		revisionService: service.NewRevisionService(store.Projects(), store.Revisions(), logger),
		importService:   service.NewImportService(store.ImportTasks(), store.Projects(), editor, nil, broker, logger),
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func (app *application) request(t *testing.T, method, path, userID, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if userID != "" {
		token, err := app.authenticator.GenerateToken(userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope.Data
}

func createProject(t *testing.T, app *application, mux http.Handler, userID, name string) domain.Project {
	t.Helper()

	rr := executeRequest(app.request(t, http.MethodPost, "/api/v1/projects", userID, `{"name":"`+name+`"}`), mux)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeData[domain.Project](t, rr)
}

func TestHealth(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	for _, path := range []string{"/health", "/api/v1/health"} {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, path, nil), mux)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Body.String(), `"healthy"`)
	}
}

func TestAuthRequired(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), mux)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, executeRequest(req, mux).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, executeRequest(req, mux).Code)
}

func TestProjectCRUD(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	project := createProject(t, app, mux, "owner", "Tea Shop")
	assert.Equal(t, domain.ProjectActive, project.Status)
	assert.Equal(t, "Tea Shop", domain.DecodeBrand(project.Config["brand"]).Name)

	rr := executeRequest(app.request(t, http.MethodGet, "/api/v1/projects", "owner", ""), mux)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeData[[]domain.Project](t, rr), 1)

	rr = executeRequest(app.request(t, http.MethodGet, "/api/v1/projects/"+project.ID, "intruder", ""), mux)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = executeRequest(app.request(t, http.MethodGet, "/api/v1/projects/missing", "owner", ""), mux)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPut, "/api/v1/projects/"+project.ID, "owner", `{"status":"closed"}`), mux)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPut, "/api/v1/projects/"+project.ID, "owner", `{"status":"inactive","name":"Renamed"}`), mux)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeData[domain.Project](t, rr)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, domain.ProjectInactive, updated.Status)

	rr = executeRequest(app.request(t, http.MethodDelete, "/api/v1/projects/"+project.ID, "owner", ""), mux)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = executeRequest(app.request(t, http.MethodGet, "/api/v1/projects/"+project.ID, "owner", ""), mux)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateProjectValidation(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	for _, body := range []string{`{}`, `{"name":""}`, `{"name":"x","unknown":1}`, `not json`} {
		rr := executeRequest(app.request(t, http.MethodPost, "/api/v1/projects", "owner", body), mux)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestEditingReachesPublicConfig(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	project := createProject(t, app, mux, "owner", "Shop")
	base := "/api/v1/projects/" + project.ID

	rr := executeRequest(app.request(t, http.MethodPost, base+"/session", "owner", ""), mux)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPatch, base+"/config/theme", "owner", `{"primaryColor":"#112233"}`), mux)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cfg := decodeData[domain.Configuration](t, rr)
	assert.Equal(t, "#112233", domain.DecodeTheme(cfg["theme"]).PrimaryColor)

	rr = executeRequest(app.request(t, http.MethodPatch, base+"/config/brand", "owner", `{"slogan":"fresh"}`), mux)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPatch, base+"/config", "owner", `{"currency":"EUR"}`), mux)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(app.request(t, http.MethodGet, base+"/session", "owner", ""), mux)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decodeData[service.SessionState](t, rr)
	assert.Equal(t, "EUR", state.Config["currency"])
	assert.Equal(t, "fresh", domain.DecodeBrand(state.Config["brand"]).Slogan)

	rr = executeRequest(app.request(t, http.MethodDelete, base+"/session", "owner", ""), mux)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/config/"+project.Slug, nil), mux)
	require.Equal(t, http.StatusOK, rr.Code)
	public := decodeData[domain.Configuration](t, rr)
	assert.Equal(t, "#112233", domain.DecodeTheme(public["theme"]).PrimaryColor)
	assert.Equal(t, "EUR", public["currency"])
}

func TestReplaceConfig(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	project := createProject(t, app, mux, "owner", "Shop")

	body := `{"projectId":"` + project.ID + `","config":{"brand":{"name":"Replaced"}}}`
	rr := executeRequest(app.request(t, http.MethodPut, "/api/v1/config", "intruder", body), mux)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPut, "/api/v1/config", "owner", body), mux)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.Configuration{"brand": map[string]any{"name": "Replaced"}}, decodeData[domain.Configuration](t, rr))

	rr = executeRequest(app.request(t, http.MethodPut, "/api/v1/config", "owner", `{"projectId":"`+project.ID+`"}`), mux)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPublicConfigHidesInactiveProjects(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	project := createProject(t, app, mux, "owner", "Shop")
	rr := executeRequest(app.request(t, http.MethodPut, "/api/v1/projects/"+project.ID, "owner", `{"status":"inactive"}`), mux)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/config/"+project.Slug, nil), mux)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rr.Body.String())
}

func TestEditorRejectsBadInput(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	project := createProject(t, app, mux, "owner", "Shop")
	base := "/api/v1/projects/" + project.ID

	rr := executeRequest(app.request(t, http.MethodPatch, base+"/config", "owner", `{}`), mux)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPost, base+"/config/theme/preset", "owner", `{"presetId":"vaporwave"}`), mux)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app.request(t, http.MethodPost, base+"/config/theme/preset", "owner", `{"presetId":"forest"}`), mux)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PresetForest, domain.DecodeTheme(decodeData[domain.Configuration](t, rr)["theme"]).ID)

	rr = executeRequest(app.request(t, http.MethodGet, base+"/revisions?limit=zero", "owner", ""), mux)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app.request(t, http.MethodGet, base+"/revisions?limit=5", "owner", ""), mux)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestImportUnavailableWithoutParser(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	project := createProject(t, app, mux, "owner", "Shop")

	rr := executeRequest(app.request(t, http.MethodPost, "/api/v1/projects/"+project.ID+"/import", "owner", `{"spreadsheet_id":"sheet"}`), mux)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = executeRequest(app.request(t, http.MethodGet, "/api/v1/imports/unknown", "owner", ""), mux)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListThemes(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/themes", nil), mux)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeData[[]domain.ThemePreset](t, rr), len(domain.ThemePresets))
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t, config{
		rateLimiter: ratelimiter.Config{RequestsPerTimeFrame: 2, TimeFrame: time.Minute, Enabled: true},
	})
	mux := app.mount()

	for i := 0; i < 2; i++ {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/themes", nil), mux)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/themes", nil), mux)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestStaticConfigEndpoint(t *testing.T) {
	app := newTestApplication(t, config{})

	file, err := staticfile.Open(filepath.Join(t.TempDir(), "config.json"), app.logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	app.staticConfig = file

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/config.json", nil), app.mount())
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "{}", rr.Body.String())
	assert.Equal(t, "no-cache, no-store", rr.Header().Get("Cache-Control"))
}
