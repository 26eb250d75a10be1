package ratelimit

import (
	"context"

	"github.com/repotomo/repotomo-linebot-go/internal/metrics"
)

// ReplyRateLimiter wraps the shared Limiter for reply deliveries.
// LINE API rate limits: https://developers.line.biz/en/reference/messaging-api/#rate-limits
type ReplyRateLimiter struct {
	*Limiter
	metrics *metrics.Metrics
}

// NewReplyRateLimiter creates the global limiter for outbound replies.
// rps is both the burst capacity and the refill rate per second.
func NewReplyRateLimiter(rps float64, m *metrics.Metrics) *ReplyRateLimiter {
	return &ReplyRateLimiter{
		Limiter: New(rps, rps),
		metrics: m,
	}
}

// Acquire consumes a token, blocking until one is available. A blocked
// acquisition is recorded as a rate limiter intervention.
func (rl *ReplyRateLimiter) Acquire(ctx context.Context) error {
	if rl.Allow() {
		return nil
	}

	if rl.metrics != nil {
		rl.metrics.RecordRateLimiterDrop("reply")
	}
	return rl.Wait(ctx)
}
