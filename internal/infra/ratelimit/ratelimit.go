// Package ratelimit bounds how fast a single principal can hit the write
// endpoints (bulk allocation and dictamen imports are easy to hammer from a
// misbehaving import script).
package ratelimit

import (
	"context"
	"time"
)

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
