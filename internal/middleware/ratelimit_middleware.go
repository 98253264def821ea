package middleware

import (
	"context"
	"sync"
	"time"
)

// InvalidAuthRateLimiter limits failed authentication attempts per client IP.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	attempts map[string]*attemptInfo
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per window for each IP.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		attempts: make(map[string]*attemptInfo),
	}
}

// Blocked reports whether ip has used up its failures for the current window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok {
		return false
	}
	if r.now().Sub(info.firstAt) > r.window {
		delete(r.attempts, ip)
		return false
	}
	return info.count >= r.limit
}

// Fail records a failed attempt from ip.
func (r *InvalidAuthRateLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, ok := r.attempts[ip]
	if !ok || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Run evicts expired entries until ctx is cancelled.
func (r *InvalidAuthRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * r.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evict()
		}
	}
}

func (r *InvalidAuthRateLimiter) evict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > r.window {
			delete(r.attempts, ip)
		}
	}
}
