package main

import (
	"context"
	"time"

	"github.com/Beka01247/shopbuilder/internal/env"
	"github.com/Beka01247/shopbuilder/internal/gateway"
	"github.com/Beka01247/shopbuilder/internal/livechannel"
	"github.com/Beka01247/shopbuilder/internal/logger"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/Beka01247/shopbuilder/internal/storefront"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	cfg := config{
		addr:     env.GetString("ADDR", ":8081"),
		env:      env.GetString("ENV", "development"),
		logLevel: env.GetString("LOG_LEVEL", "info"),
		logFile:  env.GetString("LOG_FILE", ""),
		rabbitMQ: rabbitMQConfig{
			URL:           env.GetString("RABBITMQ_URL", ""),
			MaxRetries:    env.GetInt("RABBITMQ_MAX_RETRIES", 3),
			RetryDelay:    time.Second * 2,
			PrefetchCount: env.GetInt("RABBITMQ_PREFETCH_COUNT", 10),
		},
		maxRuntimes: env.GetInt("STOREFRONT_MAX_RUNTIMES", storefront.DefaultCapacity),
		remoteURL:   env.GetString("REMOTE_CONFIG_URL", "http://localhost:8080/api/v1/config"),
		remoteWait:  env.GetDuration("REMOTE_CONFIG_TIMEOUT", 10*time.Second),
		fileURL:     env.GetString("FILE_CONFIG_URL", "http://localhost:8080/config.json"),
		fileRetry: fileRetryConfig{
			attempts: env.GetInt("FILE_RETRY_ATTEMPTS", gateway.DefaultFileRetry.Attempts),
			delay:    env.GetDuration("FILE_RETRY_DELAY", gateway.DefaultFileRetry.Delay),
			timeout:  env.GetDuration("FILE_ATTEMPT_TIMEOUT", gateway.DefaultFileRetry.Timeout),
		},
	}

	// logger
	logger, err := logger.New(logger.Config{Env: cfg.env, Level: cfg.logLevel, File: cfg.logFile})
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("failed to build logger", "error", err)
	}
	defer logger.Sync()

	// broker
	var broker queue.Broker
	if cfg.rabbitMQ.URL != "" {
		broker, err = queue.NewRabbitMQBroker(queue.Config{
			URL:           cfg.rabbitMQ.URL,
			MaxRetries:    cfg.rabbitMQ.MaxRetries,
			RetryDelay:    cfg.rabbitMQ.RetryDelay,
			PrefetchCount: cfg.rabbitMQ.PrefetchCount,
		})
		if err != nil {
			logger.Fatalw("failed to connect to RabbitMQ", "error", err)
		}
		logger.Info("connected to RabbitMQ")
	} else {
		broker = queue.NewMemoryBroker(cfg.rabbitMQ.MaxRetries)
		logger.Warn("RabbitMQ URL not provided, live updates from the editor are disabled")
	}

	// remote record first, then the static file
	source := gateway.New(nil, logger,
		gateway.Attempt{
			Name:   "remote",
			Source: gateway.NewAPIBackend(cfg.remoteURL, cfg.remoteWait),
			Keyed:  true,
		},
		gateway.Attempt{
			Name: "file",
			Source: gateway.NewFileBackend(cfg.fileURL, gateway.RetryPolicy{
				Attempts: cfg.fileRetry.attempts,
				Delay:    cfg.fileRetry.delay,
				Timeout:  cfg.fileRetry.timeout,
			}, logger),
		},
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app := &application{
		config:   cfg,
		logger:   logger,
		broker:   broker,
		registry: storefront.NewRegistry(ctx, source, livechannel.NewSubscriber(broker, logger), cfg.maxRuntimes, logger),
		stop:     stop,
	}

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
