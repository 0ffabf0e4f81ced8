package news

import (
	"context"
	"time"

	"news-search-api/internal/models"
)

// LookupEvent describes how one gateway call was served.
type LookupEvent struct {
	Operation Operation            `json:"operation"`
	Key       string               `json:"key"`
	Outcome   models.LookupOutcome `json:"outcome"`
	Latency   time.Duration        `json:"latencyNs"`
	At        time.Time            `json:"at"`
}

// Observer receives a LookupEvent after every gateway call. It is invoked
// on the request goroutine and must not block for long.
type Observer interface {
	ObserveLookup(ctx context.Context, evt LookupEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, evt LookupEvent)

func (f ObserverFunc) ObserveLookup(ctx context.Context, evt LookupEvent) { f(ctx, evt) }
