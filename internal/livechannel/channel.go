package livechannel

import (
	"context"
	"errors"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"go.uber.org/zap"
)

// Publisher is the editor side of the live channel.
type Publisher struct {
	broker queue.Broker
	logger *zap.SugaredLogger
}

func NewPublisher(broker queue.Broker, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{
		broker: broker,
		logger: logger,
	}
}

// Push sends cfg to every storefront listening on key. There is no
// acknowledgement and no retry; failures are only logged.
func (p *Publisher) Push(ctx context.Context, key string, cfg domain.Configuration) {
	topic, err := Topic(key)
	if err != nil {
		p.logger.Warnw("live update not pushed", "key", key, "error", err)
		return
	}

	data, err := Encode(ConfigUpdate{Config: cfg})
	if err != nil {
		p.logger.Warnw("failed to encode live update", "key", key, "error", err)
		return
	}

	if err := p.broker.Broadcast(ctx, topic, data); err != nil {
		p.logger.Warnw("failed to push live update", "key", key, "error", err)
		return
	}

	p.logger.Debugw("live update pushed", "key", key, "bytes", len(data))
}

type UpdateHandler func(cfg domain.Configuration)

// Subscriber is the storefront side of the live channel.
type Subscriber struct {
	broker queue.Broker
	logger *zap.SugaredLogger
}

func NewSubscriber(broker queue.Broker, logger *zap.SugaredLogger) *Subscriber {
	return &Subscriber{
		broker: broker,
		logger: logger,
	}
}

// OnUpdate delivers every config update for key to handler until ctx is done.
func (s *Subscriber) OnUpdate(ctx context.Context, key string, handler UpdateHandler) error {
	topic, err := Topic(key)
	if err != nil {
		return err
	}

	return s.broker.Listen(ctx, topic, func(ctx context.Context, data []byte) error {
		msg, err := Decode(data)
		if errors.Is(err, ErrUnknownMessage) {
			s.logger.Debugw("dropping unknown live message", "key", key)
			return nil
		}
		if err != nil {
			s.logger.Warnw("failed to decode live message", "key", key, "error", err)
			return err
		}

		switch m := msg.(type) {
		case ConfigUpdate:
			handler(m.Config)
		}

		return nil
	})
}
