package livechannel

import (
	"context"
	"sync"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

// Preview pushes editor changes to the live channel after a short quiet
// window, skipping configurations identical to the last one pushed.
type Preview struct {
	publisher *Publisher
	key       string
	delay     time.Duration

	mu         sync.Mutex
	pushMu     sync.Mutex
	timer      *time.Timer
	seq        uint64
	pending    domain.Configuration
	lastPushed string
}

func NewPreview(publisher *Publisher, key string, delay time.Duration) *Preview {
	return &Preview{
		publisher: publisher,
		key:       key,
		delay:     delay,
	}
}

// Observe schedules cfg to be pushed; it is meant to be a store listener.
func (p *Preview) Observe(cfg domain.Configuration) {
	if p.key == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = cfg
	p.seq++
	seq := p.seq

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, func() { p.fire(seq) })
}

// Flush pushes the pending configuration immediately.
func (p *Preview) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.fire(seq)
}

// Stop drops any pending push.
func (p *Preview) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	p.pending = nil
}

func (p *Preview) fire(seq uint64) {
	p.mu.Lock()
	if seq != p.seq || p.pending == nil {
		p.mu.Unlock()
		return
	}
	cfg := p.pending
	p.pending = nil

	fp, err := domain.Fingerprint(cfg)
	if err == nil && fp == p.lastPushed {
		p.mu.Unlock()
		return
	}
	p.lastPushed = fp

	// taken before releasing mu so pushes leave in scheduling order
	p.pushMu.Lock()
	p.mu.Unlock()
	defer p.pushMu.Unlock()

	p.publisher.Push(context.Background(), p.key, cfg)
}
