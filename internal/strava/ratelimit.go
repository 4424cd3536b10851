package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava enforces 100 requests per 15 minutes and 1000 per day.

// RateLimiter paces requests against Strava's two rate-limit windows
type RateLimiter struct {
	mu sync.Mutex

	shortLimit    int
	shortUsage    int
	shortResetsAt time.Time

	dailyLimit    int
	dailyUsage    int
	dailyResetsAt time.Time

	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a rate limiter preset with Strava's limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		shortLimit:    100,
		shortResetsAt: now.Add(15 * time.Minute),
		dailyLimit:    1000,
		dailyResetsAt: now.Truncate(24 * time.Hour).Add(24 * time.Hour),
		minInterval:   150 * time.Millisecond,
	}
}

// Wait blocks until a request can be made without exceeding the limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.After(r.shortResetsAt) {
		r.shortUsage = 0
		r.shortResetsAt = now.Add(15 * time.Minute)
	}
	if now.After(r.dailyResetsAt) {
		r.dailyUsage = 0
		r.dailyResetsAt = now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	if r.shortUsage >= r.shortLimit {
		if err := r.sleep(ctx, time.Until(r.shortResetsAt)); err != nil {
			return err
		}
		r.shortUsage = 0
		r.shortResetsAt = time.Now().Add(15 * time.Minute)
	}

	if r.dailyUsage >= r.dailyLimit {
		if err := r.sleep(ctx, time.Until(r.dailyResetsAt)); err != nil {
			return err
		}
		r.dailyUsage = 0
		r.dailyResetsAt = time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	if elapsed := time.Since(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.shortUsage++
	r.dailyUsage++
	r.lastRequest = time.Now()
	return nil
}

// sleep releases the lock while waiting so header updates can land
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs usage counters from Strava response headers.
// Strava returns X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := splitPair(h.Get("X-RateLimit-Usage")); ok {
		r.shortUsage = short
		r.dailyUsage = daily
	}
	if short, daily, ok := splitPair(h.Get("X-RateLimit-Limit")); ok {
		r.shortLimit = short
		r.dailyLimit = daily
	}
}

func splitPair(s string) (short, daily int, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	short, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	daily, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return short, daily, true
}

// Status returns the remaining request budget per window
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shortLimit - r.shortUsage, r.dailyLimit - r.dailyUsage
}
