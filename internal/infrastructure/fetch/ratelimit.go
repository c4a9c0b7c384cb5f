package fetch

import (
	"sync"
	"time"
)

// rateWindow is the trailing interval a domain's request count is measured
// over.
const rateWindow = time.Minute

// RateLimiter admits requests per domain using a sliding 60-second window.
// Trackers are created on demand; updates to a domain's window are
// serialized under one lock so overlapping fetches cannot lose timestamps.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter builds a limiter. A nil clock uses time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		now:     now,
	}
}

// Allow reports whether another request to host fits under ceiling within
// the trailing window, recording the request's timestamp when admitted.
func (r *RateLimiter) Allow(host string, ceiling int) bool {
	if ceiling <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-rateWindow)

	window := r.windows[host]
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= ceiling {
		r.windows[host] = kept
		return false
	}

	r.windows[host] = append(kept, now)
	return true
}
