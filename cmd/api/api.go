package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Beka01247/shopbuilder/internal/auth"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/ratelimiter"
	"github.com/Beka01247/shopbuilder/internal/service"
	"github.com/Beka01247/shopbuilder/internal/staticfile"
	"github.com/Beka01247/shopbuilder/internal/worker"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

type application struct {
	config          config
	logger          *zap.SugaredLogger
	rateLimiter     ratelimiter.Limiter
	authenticator   *auth.JWTAuthenticator
	storage         storage
	broker          queue.Broker
	staticConfig    *staticfile.File
	projectService  *service.ProjectService
	editorService   *service.EditorService
	revisionService *service.RevisionService
	importService   *service.ImportService
	revisionWorker  *worker.ConfigRevisionWorker
	importWorker    *worker.CatalogImportWorker
}

type config struct {
	addr        string
	env         string
	logLevel    string
	logFile     string
	storeDriver string
	rateLimiter ratelimiter.Config
	mongo       mongoConfig
	postgres    postgresConfig
	rabbitMQ    rabbitMQConfig
	auth        authConfig
	editor      editorConfig
	staticPath  string
	googleCreds string
}

type mongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type postgresConfig struct {
	URL     string
	Timeout time.Duration
}

type rabbitMQConfig struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

type authConfig struct {
	secret string
	issuer string
}

type editorConfig struct {
	autosaveDelay   time.Duration
	autosaveTimeout time.Duration
	previewDelay    time.Duration
}

// storage is the part of a store backend the application manages directly.
type storage interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", app.healthCheckHandler)
	if app.staticConfig != nil {
		r.Get("/config.json", app.staticConfig.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(app.RateLimiterMiddleware)

		r.Get("/health", app.healthCheckHandler)
		r.Get("/themes", app.listThemesHandler)
		r.Get("/config/{slug}", app.getPublicConfigHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Put("/config", app.replaceConfigHandler)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", app.listProjectsHandler)
				r.Post("/", app.createProjectHandler)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", app.getProjectHandler)
					r.Put("/", app.updateProjectHandler)
					r.Delete("/", app.deleteProjectHandler)

					r.Post("/session", app.openSessionHandler)
					r.Get("/session", app.getSessionHandler)
					r.Delete("/session", app.closeSessionHandler)

					r.Patch("/config", app.patchConfigHandler)
					r.Patch("/config/theme", app.patchThemeHandler)
					r.Patch("/config/brand", app.patchBrandHandler)
					r.Post("/config/theme/preset", app.applyPresetHandler)

					r.Get("/revisions", app.listRevisionsHandler)
					r.Post("/import", app.createImportHandler)
				})
			})

			r.Get("/imports/{task_id}", app.getImportHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// workers
	if app.revisionWorker != nil {
		if err := app.revisionWorker.Start(); err != nil {
			return err
		}
	}
	if app.importWorker != nil {
		if err := app.importWorker.Start(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		err := srv.Shutdown(ctx)

		// pending edits are saved before the workers and stores go away
		if flushErr := app.editorService.Shutdown(ctx); flushErr != nil {
			app.logger.Errorw("failed to flush editor sessions", "error", flushErr)
		}

		if app.revisionWorker != nil {
			app.revisionWorker.Stop()
		}
		if app.importWorker != nil {
			app.importWorker.Stop()
		}

		if app.staticConfig != nil {
			_ = app.staticConfig.Close()
		}

		if app.broker != nil {
			if err := app.broker.Close(); err != nil {
				app.logger.Errorw("error closing broker", "error", err)
			} else {
				app.logger.Info("broker closed gracefully")
			}
		}

		if app.storage != nil {
			if err := app.storage.Close(ctx); err != nil {
				app.logger.Errorw("error closing storage", "error", err)
			} else {
				app.logger.Info("storage closed gracefully")
			}
		}

		shutdown <- err
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
