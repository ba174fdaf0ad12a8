package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nop = zap.NewNop().Sugar()

type sourceFunc func(ctx context.Context, key string) (domain.Configuration, error)

func (f sourceFunc) Load(ctx context.Context, key string) (domain.Configuration, error) {
	return f(ctx, key)
}

func TestResolveKey(t *testing.T) {
	tests := map[string]string{
		"/":                   "",
		"":                    "",
		"/my-shop":            "my-shop",
		"/my-shop/":           "my-shop",
		"/my-shop/products/1": "my-shop",
		"my-shop/catalog":     "my-shop",
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolveKey(in), in)
	}
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	source := sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		calls.Add(1)
		<-release
		return domain.Configuration{"brand": map[string]any{"name": "X"}}, nil
	})

	l := New("shop", source, nil, nop)

	var wg sync.WaitGroup
	results := make([]domain.Configuration, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := l.Load(context.Background())
			assert.NoError(t, err)
			results[i] = cfg
		}(i)
	}

	require.Eventually(t, func() bool { return l.State() == StateLoading && calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, cfg := range results {
		assert.Equal(t, "X", domain.DecodeBrand(cfg["brand"]).Name)
	}
	assert.Equal(t, StateReady, l.State())
}

func TestReadyIsCached(t *testing.T) {
	var calls atomic.Int32
	source := sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		calls.Add(1)
		return domain.Configuration{}, nil
	})

	applied := 0
	l := New("shop", source, func(cfg domain.Configuration) domain.Configuration {
		applied++
		return cfg
	}, nop)

	for i := 0; i < 3; i++ {
		_, err := l.Load(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, applied)
}

func TestFallbackChainResolvesToFilePayload(t *testing.T) {
	remote := sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		return nil, errors.New("remote rejected")
	})
	file := sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		return domain.Configuration{"brand": map[string]any{"name": "X"}}, nil
	})
	g := gateway.New(nil, nop,
		gateway.Attempt{Name: "remote", Source: remote, Keyed: true},
		gateway.Attempt{Name: "file", Source: file},
	)

	cfg, err := New("shop", g, nil, nop).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Configuration{"brand": map[string]any{"name": "X"}}, cfg)
}

func TestFailedStateSurfacesReasonAndAllowsRetry(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	source := sourceFunc(func(context.Context, string) (domain.Configuration, error) {
		if fail.Load() {
			return nil, errors.New("failed to load config.json after 3 attempts: HTTP 404")
		}
		return domain.Configuration{}, nil
	})

	l := New("shop", source, nil, nop)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, l.State())
	assert.Contains(t, l.Err().Error(), "HTTP 404")

	fail.Store(false)
	_, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, l.State())
	assert.NoError(t, l.Err())
}

func TestCallerCancellationDoesNotAbortBoot(t *testing.T) {
	release := make(chan struct{})
	source := sourceFunc(func(ctx context.Context, _ string) (domain.Configuration, error) {
		<-release
		return domain.Configuration{}, ctx.Err()
	})

	l := New("shop", source, nil, nop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	_, err = l.Load(context.Background())
	require.NoError(t, err)
}
