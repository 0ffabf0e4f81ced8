package cache

import (
	"context"
	"time"
)

// Purger is the subset of Cache needed by RunJanitor.
type Purger interface {
	PurgeExpired()
}

// RunJanitor calls PurgeExpired every interval until ctx is done.
// It returns ctx.Err() on exit so it can run under an errgroup.
func RunJanitor(ctx context.Context, c Purger, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.PurgeExpired()
		}
	}
}
