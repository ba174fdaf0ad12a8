package storefront

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/livechannel"
	"github.com/Beka01247/shopbuilder/internal/loader"
	"github.com/Beka01247/shopbuilder/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nop = zap.NewNop().Sugar()

type sourceFunc func(ctx context.Context, key string) (domain.Configuration, error)

func (f sourceFunc) Load(ctx context.Context, key string) (domain.Configuration, error) {
	return f(ctx, key)
}

func staticSource(cfg domain.Configuration) sourceFunc {
	return func(context.Context, string) (domain.Configuration, error) {
		return cfg.Clone(), nil
	}
}

func TestBootProjectsAndDerives(t *testing.T) {
	cfg := domain.DefaultConfiguration("Shop")
	cfg["products"] = []any{map[string]any{"id": "p1", "category": "tea"}}

	rt := NewRuntime("shop", staticSource(cfg), nop)
	require.NoError(t, rt.Boot(context.Background()))

	snap := rt.Snapshot()
	assert.Equal(t, loader.StateReady, rt.State())
	assert.Equal(t, "Shop", domain.DecodeBrand(snap.Config["brand"]).Name)
	assert.Equal(t, domain.PresetOcean, snap.ThemeID)
	require.Len(t, snap.Data.Products, 1)
	assert.Equal(t, []string{}, snap.Data.Products[0].Media)
	assert.Contains(t, snap.CSS, "--color-primary:")
}

func TestBootFailureIsRecorded(t *testing.T) {
	rt := NewRuntime("", sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		return nil, errors.New("failed to load config.json after 3 attempts: HTTP 404")
	}), nop)

	err := rt.Boot(context.Background())
	require.Error(t, err)
	assert.Equal(t, loader.StateFailed, rt.State())
	assert.Nil(t, rt.Snapshot().Config)
	assert.EqualError(t, rt.store.Err(), "failed to load config.json after 3 attempts: HTTP 404")
}

func TestApplyReplacesWholesale(t *testing.T) {
	rt := NewRuntime("shop", staticSource(domain.Configuration{
		"brand":    map[string]any{"name": "Old", "slogan": "keep?"},
		"products": []any{map[string]any{"id": "a"}, map[string]any{"id": "b"}},
	}), nop)
	require.NoError(t, rt.Boot(context.Background()))

	rt.Apply(domain.Configuration{"brand": map[string]any{"name": "New"}})

	snap := rt.Snapshot()
	assert.Equal(t, map[string]any{"name": "New"}, snap.Config["brand"])
	assert.Empty(t, snap.Data.Products)
	assert.Equal(t, loader.StateReady, rt.State())
}

func TestLiveUpdateDuringBootWins(t *testing.T) {
	release := make(chan struct{})
	source := sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		<-release
		return domain.Configuration{"brand": map[string]any{"name": "Boot"}}, nil
	})

	rt := NewRuntime("shop", source, nop)

	done := make(chan error, 1)
	go func() { done <- rt.Boot(context.Background()) }()

	rt.Apply(domain.Configuration{"brand": map[string]any{"name": "Live"}})
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "Live", domain.DecodeBrand(rt.Snapshot().Config["brand"]).Name)
}

func TestLiveUpdateEndToEnd(t *testing.T) {
	broker := queue.NewMemoryBroker(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initial := domain.Configuration{
		"theme":    map[string]any{"primaryColor": "#000000"},
		"products": []any{map[string]any{"id": "old", "category": "tea"}},
	}
	registry := NewRegistry(ctx, staticSource(initial), livechannel.NewSubscriber(broker, nop), 0, nop)

	rt, err := registry.Get("shop")
	require.NoError(t, err)
	require.NoError(t, rt.Boot(ctx))

	same, err := registry.Get("shop")
	require.NoError(t, err)
	assert.Same(t, rt, same)

	update := domain.Configuration{
		"theme": map[string]any{"primaryColor": "#112233"},
		"products": []any{
			map[string]any{"id": "n1", "category": "coffee"},
			map[string]any{"id": "n2", "category": "coffee"},
		},
	}
	livechannel.NewPublisher(broker, nop).Push(ctx, "shop", update)
	broker.Drain()

	primary, _ := rt.Property("--color-primary")
	rgb, _ := rt.Property("--color-primary-rgb")
	assert.Equal(t, "#112233", primary)
	assert.Equal(t, "17, 34, 51", rgb)

	snap := rt.Snapshot()
	require.Len(t, snap.Data.Products, 2)
	assert.Equal(t, "n1", snap.Data.Products[0].ID)
	assert.Equal(t, update, snap.Config)
}

func TestKeylessRuntimeIgnoresLiveChannel(t *testing.T) {
	broker := queue.NewMemoryBroker(0)
	ctx := context.Background()

	registry := NewRegistry(ctx, staticSource(domain.Configuration{"brand": map[string]any{"name": "File"}}), livechannel.NewSubscriber(broker, nop), 0, nop)
	rt, err := registry.Get("")
	require.NoError(t, err)
	require.NoError(t, rt.Boot(ctx))

	livechannel.NewPublisher(broker, nop).Push(ctx, "", domain.Configuration{"brand": map[string]any{"name": "Live"}})
	broker.Drain()

	assert.Equal(t, "File", domain.DecodeBrand(rt.Snapshot().Config["brand"]).Name)
	assert.ElementsMatch(t, []string{""}, registry.Keys())
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	broker := queue.NewMemoryBroker(0)
	ctx := context.Background()

	registry := NewRegistry(ctx, staticSource(domain.Configuration{}), livechannel.NewSubscriber(broker, nop), 2, nop)

	a, err := registry.Get("a")
	require.NoError(t, err)
	_, err = registry.Get("b")
	require.NoError(t, err)

	// touching a makes b the eviction candidate
	_, err = registry.Get("a")
	require.NoError(t, err)
	_, err = registry.Get("c")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "c"}, registry.Keys())
	_, ok := registry.Peek("b")
	assert.False(t, ok)

	again, err := registry.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, again)
}

func TestLiveUpdateAfterFailedBootIsServed(t *testing.T) {
	var calls atomic.Int32
	rt := NewRuntime("shop", sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		calls.Add(1)
		return nil, errors.New("backend down")
	}), nop)

	require.Error(t, rt.Boot(context.Background()))
	assert.Equal(t, loader.StateFailed, rt.State())

	rt.Apply(domain.Configuration{"brand": map[string]any{"name": "Live"}})

	require.NoError(t, rt.Boot(context.Background()))
	assert.Equal(t, loader.StateReady, rt.State())
	assert.NoError(t, rt.store.Err())
	assert.Equal(t, "Live", domain.DecodeBrand(rt.Snapshot().Config["brand"]).Name)
	assert.Equal(t, int32(1), calls.Load(), "a live runtime is not booted again")
}

func TestRegistryRejectsNonSlugKeys(t *testing.T) {
	broker := queue.NewMemoryBroker(0)
	registry := NewRegistry(context.Background(), staticSource(domain.Configuration{}), livechannel.NewSubscriber(broker, nop), 0, nop)

	for _, key := range []string{"#", "*", "a.b", "Shop", "shop.#"} {
		rt, err := registry.Get(key)
		assert.ErrorIs(t, err, domain.ErrInvalidSlug, key)
		assert.Nil(t, rt)
	}
	assert.Empty(t, registry.Keys())
}
