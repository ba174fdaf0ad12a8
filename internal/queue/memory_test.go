package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) handle(_ context.Context, msg []byte) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, string(msg))
	r.mu.Unlock()
	return nil
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestMemoryBrokerBroadcastKeepsOrder(t *testing.T) {
	b := NewMemoryBroker(0)
	ctx := context.Background()

	var first, second recorder
	require.NoError(t, b.Listen(ctx, "config.updates.shop", first.handle))
	require.NoError(t, b.Listen(ctx, "config.updates.shop", second.handle))

	for _, m := range []string{"1", "2", "3", "4"} {
		require.NoError(t, b.Broadcast(ctx, "config.updates.shop", []byte(m)))
	}
	require.NoError(t, b.Broadcast(ctx, "config.updates.other", []byte("x")))
	b.Drain()

	assert.Equal(t, []string{"1", "2", "3", "4"}, first.all())
	assert.Equal(t, []string{"1", "2", "3", "4"}, second.all())
}

func TestMemoryBrokerRetriesThenDeadLetters(t *testing.T) {
	b := NewMemoryBroker(2)
	ctx := context.Background()

	var mu sync.Mutex
	attempts := 0
	require.NoError(t, b.Subscribe(ctx, QueueConfigSaved, func(context.Context, []byte) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("fail")
	}))

	var dead recorder
	require.NoError(t, b.Subscribe(ctx, QueueConfigSavedDLQ, dead.handle))

	require.NoError(t, b.Publish(ctx, QueueConfigSaved, []byte("evt")))
	b.Drain()
	b.Drain()

	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
	assert.Equal(t, []string{"evt"}, dead.all())
}

func TestMemoryBrokerCancelledListenerStops(t *testing.T) {
	b := NewMemoryBroker(0)
	ctx, cancel := context.WithCancel(context.Background())

	var rec recorder
	require.NoError(t, b.Listen(ctx, "t", rec.handle))
	require.NoError(t, b.Broadcast(context.Background(), "t", []byte("a")))
	b.Drain()
	assert.Equal(t, []string{"a"}, rec.all())

	cancel()
	assert.Eventually(t, func() bool {
		before := len(rec.all())
		_ = b.Broadcast(context.Background(), "t", []byte("b"))
		b.Drain()
		return len(rec.all()) == before
	}, time.Second, 10*time.Millisecond)
}

func (b *MemoryBroker) listening(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.topics[topic]
	if !ok {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

func TestMemoryBrokerReleasesCancelledListeners(t *testing.T) {
	b := NewMemoryBroker(0)
	ctx := context.Background()

	var cancels []context.CancelFunc
	for i := 0; i < 3; i++ {
		lctx, cancel := context.WithCancel(ctx)
		cancels = append(cancels, cancel)
		require.NoError(t, b.Listen(lctx, "t", func(context.Context, []byte) error { return nil }))
	}
	assert.Equal(t, 3, b.listening("t"))
	assert.True(t, b.bus.HasCallback(liveTopic("t")))

	cancels[0]()
	assert.Eventually(t, func() bool { return b.listening("t") == 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, b.bus.HasCallback(liveTopic("t")))

	cancels[1]()
	cancels[2]()
	assert.Eventually(t, func() bool {
		return b.listening("t") == 0 && !b.bus.HasCallback(liveTopic("t"))
	}, time.Second, 5*time.Millisecond)

	// the topic can be listened on again
	var rec recorder
	require.NoError(t, b.Listen(ctx, "t", rec.handle))
	require.NoError(t, b.Broadcast(ctx, "t", []byte("again")))
	b.Drain()
	assert.Equal(t, []string{"again"}, rec.all())
}

func TestMemoryBrokerClosed(t *testing.T) {
	b := NewMemoryBroker(0)
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Publish(context.Background(), QueueConfigSaved, nil), ErrClosed)
	assert.ErrorIs(t, b.Listen(context.Background(), "t", func(context.Context, []byte) error { return nil }), ErrClosed)
}
