package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/storefront"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

type application struct {
	config   config
	logger   *zap.SugaredLogger
	broker   queue.Broker
	registry *storefront.Registry
	// stop ends every live subscription held by the registry.
	stop context.CancelFunc
}

type config struct {
	addr        string
	env         string
	logLevel    string
	logFile     string
	rabbitMQ    rabbitMQConfig
	maxRuntimes int
	remoteURL   string
	remoteWait  time.Duration
	fileURL     string
	fileRetry   fileRetryConfig
}

type rabbitMQConfig struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

type fileRetryConfig struct {
	attempts int
	delay    time.Duration
	timeout  time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", app.healthCheckHandler)

	r.Get("/config.json", app.configHandler)
	r.Get("/theme.css", app.themeHandler)
	r.Get("/catalog", app.catalogHandler)

	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/config.json", app.configHandler)
		r.Get("/theme.css", app.themeHandler)
		r.Get("/catalog", app.catalogHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
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

		app.stop()

		if app.broker != nil {
			if err := app.broker.Close(); err != nil {
				app.logger.Errorw("error closing broker", "error", err)
			} else {
				app.logger.Info("broker closed gracefully")
			}
		}

		shutdown <- err
	}()

	app.logger.Infow("storefront have started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("storefront has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
