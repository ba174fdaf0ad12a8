package loader

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Source is the persistence chain the loader boots from.
type Source interface {
	Load(ctx context.Context, key string) (domain.Configuration, error)
}

// ApplyFunc installs a freshly loaded configuration (store, theme, derived
// data) and returns the configuration the runtime ended up with.
type ApplyFunc func(cfg domain.Configuration) domain.Configuration

const DefaultTimeout = 30 * time.Second

// Loader performs the cold boot of one storefront. Concurrent Load calls
// share a single fetch; a successful result is kept for the loader's lifetime.
type Loader struct {
	key     string
	source  Source
	apply   ApplyFunc
	timeout time.Duration
	logger  *zap.SugaredLogger

	group singleflight.Group

	mu    sync.RWMutex
	state State
	cfg   domain.Configuration
	err   error
}

func New(key string, source Source, apply ApplyFunc, logger *zap.SugaredLogger) *Loader {
	return &Loader{
		key:     key,
		source:  source,
		apply:   apply,
		timeout: DefaultTimeout,
		logger:  logger,
	}
}

func (l *Loader) Key() string { return l.key }

func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the failure of the last load, if it failed.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Load returns the booted configuration, fetching it on first use.
// A failed boot is retried on the next call.
func (l *Loader) Load(ctx context.Context) (domain.Configuration, error) {
	l.mu.RLock()
	if l.state == StateReady {
		cfg := l.cfg
		l.mu.RUnlock()
		return cfg.Clone(), nil
	}
	l.mu.RUnlock()

	ch := l.group.DoChan("boot", func() (any, error) {
		return l.boot()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.Configuration).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// boot runs detached from any caller so one impatient caller cannot fail the others.
func (l *Loader) boot() (domain.Configuration, error) {
	l.mu.Lock()
	if l.state == StateReady {
		cfg := l.cfg
		l.mu.Unlock()
		return cfg, nil
	}
	l.state = StateLoading
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	l.logger.Infow("loading storefront configuration", "key", l.key)

	cfg, err := l.source.Load(ctx, l.key)
	if err != nil {
		l.mu.Lock()
		l.state = StateFailed
		l.err = err
		l.mu.Unlock()

		l.logger.Errorw("storefront configuration unavailable", "key", l.key, "error", err)
		return nil, err
	}

	if l.apply != nil {
		cfg = l.apply(cfg)
	}

	l.mu.Lock()
	l.state = StateReady
	l.cfg = cfg
	l.err = nil
	l.mu.Unlock()

	return cfg, nil
}

// ResolveKey returns the first segment of a URL path, or "" when there is none.
func ResolveKey(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
