package ratelimit

import (
	"context"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// MemoryLimiter is a fixed-window limiter held in process memory. Quote
// pricing is stateless, so each replica limits its own traffic.
type MemoryLimiter struct {
	l *limiter.Limiter
}

// NewMemoryLimiter allows max requests per key within window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	return &MemoryLimiter{l: limiter.New(memory.NewStore(), rate)}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	res, err := m.l.Get(ctx, key)
	if err != nil {
		return false, 0, time.Time{}, err
	}
	return !res.Reached, int(res.Remaining), time.Unix(res.Reset, 0), nil
}
