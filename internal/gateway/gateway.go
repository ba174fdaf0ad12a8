package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrNoKey           = errors.New("no persistence key")
	ErrSaveUnsupported = errors.New("no persistence backend accepts saves")
)

// Source loads a configuration by key. Keyless sources ignore the key.
type Source interface {
	Load(ctx context.Context, key string) (domain.Configuration, error)
}

// Saver persists a configuration for the project identified by key and
// returns the stored record.
type Saver interface {
	Save(ctx context.Context, key string, cfg domain.Configuration) (*domain.Project, error)
}

// Attempt is one step of the load fallback chain.
type Attempt struct {
	Name   string
	Source Source
	// Keyed attempts are skipped when no key was resolved.
	Keyed bool
}

// Gateway loads through an ordered list of attempts, stopping at the first
// success, and saves through a single remote saver.
type Gateway struct {
	attempts []Attempt
	saver    Saver
	logger   *zap.SugaredLogger
}

func New(saver Saver, logger *zap.SugaredLogger, attempts ...Attempt) *Gateway {
	return &Gateway{
		attempts: attempts,
		saver:    saver,
		logger:   logger,
	}
}

func (g *Gateway) Load(ctx context.Context, key string) (domain.Configuration, error) {
	var errs []error

	for _, a := range g.attempts {
		if a.Keyed && key == "" {
			continue
		}

		cfg, err := a.Source.Load(ctx, key)
		if err == nil {
			g.logger.Infow("configuration loaded", "source", a.Name, "key", key)
			return cfg, nil
		}

		g.logger.Warnw("configuration source failed, falling back", "source", a.Name, "key", key, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("failed to load configuration: no source available for key %q", key)
	}

	return nil, fmt.Errorf("failed to load configuration: %w", errors.Join(errs...))
}

func (g *Gateway) Save(ctx context.Context, key string, cfg domain.Configuration) (*domain.Project, error) {
	if key == "" {
		return nil, ErrNoKey
	}
	if g.saver == nil {
		return nil, ErrSaveUnsupported
	}

	project, err := g.saver.Save(ctx, key, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	return project, nil
}
