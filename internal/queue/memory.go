package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
)

// MemoryBroker is an in-process Broker for single-node deployments and tests.
// Each topic has one bus handler dispatching to its listeners one message at
// a time, in publish order. A listener is removed when its context ends, and
// the bus handler with the last one.
type MemoryBroker struct {
	bus        EventBus.Bus
	maxRetries int
	closed     atomic.Bool

	mu     sync.Mutex
	topics map[string]*listeners
}

type listeners struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]func(msg []byte)
}

func (l *listeners) dispatch(msg []byte) {
	l.mu.Lock()
	fns := make([]func(msg []byte), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}

func NewMemoryBroker(maxRetries int) *MemoryBroker {
	return &MemoryBroker{
		bus:        EventBus.New(),
		maxRetries: maxRetries,
		topics:     make(map[string]*listeners),
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, queueName string, message []byte) error {
	return b.emit(queueTopic(queueName), message)
}

func (b *MemoryBroker) Subscribe(ctx context.Context, queueName string, handler MessageHandler) error {
	return b.attach(ctx, queueTopic(queueName), func(msg []byte) {
		var err error
		for attempt := 0; attempt <= b.maxRetries; attempt++ {
			if err = handler(ctx, msg); err == nil {
				return
			}
		}
		// retries exhausted
		_ = b.emit(queueTopic(queueName+"-dlq"), msg)
	})
}

func (b *MemoryBroker) Broadcast(ctx context.Context, topic string, message []byte) error {
	return b.emit(liveTopic(topic), message)
}

func (b *MemoryBroker) Listen(ctx context.Context, topic string, handler MessageHandler) error {
	return b.attach(ctx, liveTopic(topic), func(msg []byte) {
		_ = handler(ctx, msg)
	})
}

// Drain blocks until every delivered message has been handled.
func (b *MemoryBroker) Drain() {
	b.bus.WaitAsync()
}

func (b *MemoryBroker) Close() error {
	b.closed.Store(true)
	b.bus.WaitAsync()
	return nil
}

func (b *MemoryBroker) emit(topic string, message []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}

	body := make([]byte, len(message))
	copy(body, message)
	b.bus.Publish(topic, body)

	return nil
}

func (b *MemoryBroker) attach(ctx context.Context, topic string, fn func(msg []byte)) error {
	if b.closed.Load() {
		return ErrClosed
	}

	b.mu.Lock()
	l, ok := b.topics[topic]
	if !ok {
		l = &listeners{fns: make(map[uint64]func(msg []byte))}
		if err := b.bus.SubscribeAsync(topic, l.dispatch, true); err != nil {
			b.mu.Unlock()
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		b.topics[topic] = l
	}

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	l.mu.Unlock()
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.detach(topic, id)
		}()
	}

	return nil
}

func (b *MemoryBroker) detach(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.topics[topic]
	if !ok {
		return
	}

	l.mu.Lock()
	delete(l.fns, id)
	empty := len(l.fns) == 0
	l.mu.Unlock()

	if empty {
		delete(b.topics, topic)
		// one handler per topic, so the method value identifies it
		_ = b.bus.Unsubscribe(topic, l.dispatch)
	}
}

func queueTopic(name string) string { return "queue:" + name }

func liveTopic(name string) string { return "live:" + name }
