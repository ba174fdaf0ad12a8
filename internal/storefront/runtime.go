package storefront

import (
	"context"
	"sync"

	"github.com/Beka01247/shopbuilder/internal/configstore"
	"github.com/Beka01247/shopbuilder/internal/derive"
	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/Beka01247/shopbuilder/internal/loader"
	"github.com/Beka01247/shopbuilder/internal/theme"
	"go.uber.org/zap"
)

// Snapshot is one consistent view of a storefront: the configuration, the
// theme it projected and the data derived from it all come from the same update.
type Snapshot struct {
	Key     string
	Config  domain.Configuration
	Data    derive.Data
	CSS     string
	ThemeID string
}

// Runtime is the storefront side of one key: the store, the style scope
// the projector writes into and the derived data, kept in lock step.
type Runtime struct {
	key       string
	store     *configstore.Store
	sheet     *theme.StyleSheet
	projector *theme.Projector
	loader    *loader.Loader
	logger    *zap.SugaredLogger

	mu   sync.RWMutex
	data derive.Data
	live bool
}

func NewRuntime(key string, source loader.Source, logger *zap.SugaredLogger) *Runtime {
	sheet := theme.NewStyleSheet()
	r := &Runtime{
		key:       key,
		store:     configstore.New(),
		sheet:     sheet,
		projector: theme.NewProjector(sheet),
		logger:    logger,
	}
	r.loader = loader.New(key, source, r.applyBoot, logger)
	return r
}

func (r *Runtime) Key() string { return r.key }

// State is the loader state, except that a runtime holding a live update
// is ready whatever its boot did.
func (r *Runtime) State() loader.State {
	if r.isLive() {
		return loader.StateReady
	}
	return r.loader.State()
}

// Boot runs the cold boot once. A failure is recorded on the store and
// returned; the next Boot tries again. Once a live update is installed
// there is nothing left to boot.
func (r *Runtime) Boot(ctx context.Context) error {
	if r.isLive() {
		return nil
	}

	if _, err := r.loader.Load(ctx); err != nil {
		// a live update may have landed while the boot was failing
		if r.isLive() {
			return nil
		}
		if ctx.Err() == nil {
			r.store.SetError(err)
		}
		return err
	}
	return nil
}

// Apply installs a live update. The payload replaces the configuration
// wholesale; the theme and derived data follow before any reader sees it.
func (r *Runtime) Apply(cfg domain.Configuration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.live = true
	r.applyLocked(cfg)

	r.logger.Debugw("live update applied", "key", r.key)
}

func (r *Runtime) isLive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// applyBoot installs the cold boot result unless a live update got there first.
func (r *Runtime) applyBoot(cfg domain.Configuration) domain.Configuration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live {
		r.logger.Infow("discarding boot result superseded by live update", "key", r.key)
		return r.store.Get()
	}

	r.applyLocked(cfg)
	return cfg
}

func (r *Runtime) applyLocked(cfg domain.Configuration) {
	r.store.Set(cfg)
	r.projector.ProjectConfig(cfg)
	r.data = derive.All(cfg)
}

// Snapshot returns the current consistent state. Config is nil until the
// runtime has booted or received a live update.
func (r *Runtime) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, _ := r.sheet.Attribute(theme.AttrTheme)
	return Snapshot{
		Key:     r.key,
		Config:  r.store.Get(),
		Data:    r.data,
		CSS:     r.sheet.CSS(),
		ThemeID: id,
	}
}

// Property exposes one projected style variable.
func (r *Runtime) Property(name string) (string, bool) {
	return r.sheet.Property(name)
}
