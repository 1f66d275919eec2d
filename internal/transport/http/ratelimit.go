package http

import "time"

// rateLimiter is a per-connection token bucket refilled at limit frames per minute.
// It is used from the connection's read loop only.
type rateLimiter struct {
	limit  float64
	tokens float64
	last   time.Time
	now    func() time.Time
}

// newRateLimiter returns nil, meaning unlimited, when limit is not positive.
func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:  float64(limit),
		tokens: float64(limit),
		last:   time.Now(),
		now:    time.Now,
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil {
		return true
	}

	now := r.now()
	if elapsed := now.Sub(r.last); elapsed > 0 {
		r.tokens += elapsed.Minutes() * r.limit
		if r.tokens > r.limit {
			r.tokens = r.limit
		}
	}
	r.last = now

	if r.tokens < 1 {
		return false
	}
	r.tokens--
	return true
}
