package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/livechannel"
	"github.com/Beka01247/shopbuilder/internal/loader"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// DefaultCapacity bounds how many keyed runtimes stay resident.
const DefaultCapacity = 1024

type entry struct {
	runtime *Runtime
	cancel  context.CancelFunc
}

// Registry keeps one Runtime per resolved key. The least recently used
// runtime is dropped, and its live subscription ended, once capacity is reached.
type Registry struct {
	ctx        context.Context
	source     loader.Source
	subscriber *livechannel.Subscriber
	logger     *zap.SugaredLogger

	mu       sync.Mutex
	runtimes *lru.Cache
}

// NewRegistry creates runtimes bound to ctx; their live subscriptions end with it.
func NewRegistry(ctx context.Context, source loader.Source, subscriber *livechannel.Subscriber, capacity int, logger *zap.SugaredLogger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	runtimes, err := lru.NewWithEvict(capacity, func(key, value interface{}) {
		value.(*entry).cancel()
		logger.Infow("storefront runtime evicted", "key", key)
	})
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}

	return &Registry{
		ctx:        ctx,
		source:     source,
		subscriber: subscriber,
		logger:     logger,
		runtimes:   runtimes,
	}
}

// Get returns the runtime for key, creating it and subscribing it to live
// updates on first use. The keyless runtime has no live channel. A key that
// is not a valid slug gets domain.ErrInvalidSlug and no runtime.
func (g *Registry) Get(key string) (*Runtime, error) {
	if key != "" && !domain.ValidSlug(key) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSlug, key)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if v, ok := g.runtimes.Get(key); ok {
		return v.(*entry).runtime, nil
	}

	ctx, cancel := context.WithCancel(g.ctx)
	rt := NewRuntime(key, g.source, g.logger)
	if key != "" && g.subscriber != nil {
		if err := g.subscriber.OnUpdate(ctx, key, rt.Apply); err != nil {
			cancel()
			return nil, err
		}
	}

	g.runtimes.Add(key, &entry{runtime: rt, cancel: cancel})
	g.logger.Infow("storefront runtime created", "key", key)
	return rt, nil
}

// Keys lists the keys with a resident runtime, least recently used first.
func (g *Registry) Keys() []string {
	raw := g.runtimes.Keys()
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, k.(string))
	}
	return keys
}

// Peek returns a resident runtime without creating it or refreshing its recency.
func (g *Registry) Peek(key string) (*Runtime, bool) {
	v, ok := g.runtimes.Peek(key)
	if !ok {
		return nil, false
	}
	return v.(*entry).runtime, true
}
