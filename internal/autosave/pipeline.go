package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StatePending
	StateSaving
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	default:
		return "idle"
	}
}

type Saver interface {
	Save(ctx context.Context, key string, cfg domain.Configuration) (*domain.Project, error)
}

const (
	DefaultDelay   = 300 * time.Millisecond
	DefaultTimeout = 10 * time.Second
)

type Options struct {
	Delay    time.Duration
	Timeout  time.Duration
	Reporter Reporter
	// OnSaved runs after every successful save, outside the pipeline lock.
	OnSaved func(project *domain.Project)
}

// Pipeline persists the configurations it observes. Bursts collapse into the
// last state after a quiet window, content equal to the last submitted save is
// skipped, and at most one save runs at a time with at most one waiting.
type Pipeline struct {
	key      string
	saver    Saver
	delay    time.Duration
	timeout  time.Duration
	reporter Reporter
	onSaved  func(*domain.Project)
	logger   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	warn   sync.Once

	mu            sync.Mutex
	pending       domain.Configuration
	pendingFP     string
	due           bool
	saving        bool
	lastSubmitted string
	timer         *time.Timer
	seq           uint64
	busy          bool
	idle          chan struct{}
	closed        bool
}

func New(key string, saver Saver, opts Options, logger *zap.SugaredLogger) *Pipeline {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Reporter == nil {
		opts.Reporter = NewLogReporter(logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	return &Pipeline{
		key:      key,
		saver:    saver,
		delay:    opts.Delay,
		timeout:  opts.Timeout,
		reporter: opts.Reporter,
		onSaved:  opts.OnSaved,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		idle:     idle,
	}
}

// Seed records cfg as already persisted so that observing it again is a no-op.
func (p *Pipeline) Seed(cfg domain.Configuration) {
	fp, err := domain.Fingerprint(cfg)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.lastSubmitted = fp
	p.mu.Unlock()
}

// Observe is the store listener driving the pipeline.
func (p *Pipeline) Observe(cfg domain.Configuration) {
	if p.key == "" {
		p.warn.Do(func() {
			p.logger.Warnw("autosave disabled: no persistence key resolved")
		})
		return
	}

	fp, err := domain.Fingerprint(cfg)
	if err != nil {
		p.logger.Errorw("failed to serialize configuration for autosave", "key", p.key, "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if fp == p.lastSubmitted {
		// back to what was last saved; anything waiting is obsolete
		if p.pending != nil {
			p.dropPendingLocked()
		}
		return
	}
	if p.pending != nil && fp == p.pendingFP {
		return
	}

	p.pending = cfg
	p.pendingFP = fp
	p.due = false
	p.markBusyLocked()

	p.seq++
	seq := p.seq
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, func() { p.fire(seq) })
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.saving:
		return StateSaving
	case p.pending != nil:
		return StatePending
	default:
		return StateIdle
	}
}

// Flush starts the pending save without waiting for the quiet window and
// blocks until the pipeline is idle.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.pending != nil {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.seq++
		p.due = true
		if !p.saving {
			p.startLocked()
		}
	}
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes and stops accepting changes.
func (p *Pipeline) Close(ctx context.Context) error {
	err := p.Flush(ctx)

	p.mu.Lock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	p.cancel()
	return err
}

// Discard drops the pending save and stops accepting changes. A save
// already in flight still completes.
func (p *Pipeline) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.dropPendingLocked()
}

func (p *Pipeline) fire(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq || p.pending == nil {
		return
	}
	p.due = true
	if p.saving {
		// picked up when the in-flight save settles
		return
	}
	p.startLocked()
}

func (p *Pipeline) startLocked() {
	cfg, fp := p.pending, p.pendingFP
	p.pending, p.pendingFP, p.due = nil, "", false

	if fp == p.lastSubmitted {
		p.settleLocked()
		return
	}

	p.lastSubmitted = fp
	p.saving = true
	go p.run(cfg)
}

func (p *Pipeline) run(cfg domain.Configuration) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	project, err := p.saver.Save(ctx, p.key, cfg)
	cancel()

	if err != nil {
		p.logger.Errorw("autosave failed", "key", p.key, "error", err)
		p.reporter.Report(EventSaveFailed, err)
	} else {
		p.logger.Debugw("configuration autosaved", "key", p.key)
		if p.onSaved != nil {
			p.onSaved(project)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.saving = false
	if p.pending != nil && p.due {
		p.startLocked()
		return
	}
	p.settleLocked()
}

func (p *Pipeline) dropPendingLocked() {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	p.pending, p.pendingFP, p.due = nil, "", false
	p.settleLocked()
}

func (p *Pipeline) markBusyLocked() {
	if !p.busy {
		p.busy = true
		p.idle = make(chan struct{})
	}
}

func (p *Pipeline) settleLocked() {
	if p.saving || p.pending != nil || !p.busy {
		return
	}
	p.busy = false
	close(p.idle)
}
