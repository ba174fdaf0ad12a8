package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per client and forgets a client
// one window after its first request.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]int
	limit   int
	window  time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		limit:   limit,
		window:  window,
	}
}

func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	count, exists := rl.clients[ip]
	if exists && count >= rl.limit {
		return false, rl.window
	}

	if !exists {
		time.AfterFunc(rl.window, func() { rl.resetCount(ip) })
	}
	rl.clients[ip] = count + 1

	return true, 0
}

func (rl *FixedWindowRateLimiter) resetCount(ip string) {
	rl.Lock()
	delete(rl.clients, ip)
	rl.Unlock()
}
