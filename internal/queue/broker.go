package queue

import (
	"context"
	"errors"
)

// Broker carries two kinds of traffic: durable work queues consumed by
// workers (Publish/Subscribe) and transient fan-out topics consumed by every
// live listener (Broadcast/Listen).
type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Subscribe(ctx context.Context, queueName string, handler MessageHandler) error
	Broadcast(ctx context.Context, topic string, message []byte) error
	Listen(ctx context.Context, topic string, handler MessageHandler) error
	Close() error
}

type MessageHandler func(ctx context.Context, message []byte) error

var ErrClosed = errors.New("broker is closed")

const (
	QueueCatalogImport    = "catalog-import"
	QueueConfigSaved      = "config-saved"
	QueueCatalogImportDLQ = "catalog-import-dlq"
	QueueConfigSavedDLQ   = "config-saved-dlq"

	// ExchangeLive is the topic exchange live configuration pushes travel on.
	ExchangeLive = "config.live"
)
