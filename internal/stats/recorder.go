// Package stats keeps a log of gateway lookups in SQL and aggregates it into
// per-operation hit, miss and error counters.
package stats

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"news-search-api/internal/logger"
	"news-search-api/internal/models"
	"news-search-api/internal/news"

	"gorm.io/gorm"
)

const (
	// DefaultBuffer is the lookup queue size used when none is configured.
	DefaultBuffer = 1024

	maxBatch = 64
)

// Recorder is a news.Observer that persists each lookup. ObserveLookup only
// queues the event; a single writer started with Run inserts the rows, so a
// slow or busy database never holds up a search.
type Recorder struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
	queue     chan models.LookupRecord
	dropped   atomic.Uint64
}

// NewRecorder creates a recorder. Records older than retention are removed
// by PurgeExpired; zero keeps everything. buffer bounds the queue between
// ObserveLookup and the writer; non-positive means DefaultBuffer.
func NewRecorder(db *gorm.DB, retention time.Duration, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Recorder{
		db:        db,
		retention: retention,
		now:       time.Now,
		queue:     make(chan models.LookupRecord, buffer),
	}
}

// ObserveLookup implements news.Observer. It never blocks: when the queue is
// full the event is counted as dropped.
func (r *Recorder) ObserveLookup(ctx context.Context, evt news.LookupEvent) {
	rec := models.LookupRecord{
		Operation: string(evt.Operation),
		CacheKey:  evt.Key,
		Outcome:   evt.Outcome,
		LatencyMS: evt.Latency.Milliseconds(),
		CreatedAt: evt.At,
	}
	select {
	case r.queue <- rec:
	default:
		if r.dropped.Add(1) == 1 {
			l := logger.Ctx(ctx)
			l.Warn().
				Str(logger.FieldOperation, rec.Operation).
				Str(logger.FieldOutcome, string(rec.Outcome)).
				Msg("lookup log queue full, dropping events")
		}
	}
}

// Dropped returns how many lookups were discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Run writes queued lookups until ctx is cancelled, then flushes what is
// left and returns ctx.Err().
func (r *Recorder) Run(ctx context.Context) error {
	batch := make([]models.LookupRecord, 0, maxBatch)
	for {
		select {
		case <-ctx.Done():
			r.flush(context.WithoutCancel(ctx), batch[:0])
			return ctx.Err()
		case rec := <-r.queue:
			batch = append(batch[:0], rec)
		fill:
			for len(batch) < maxBatch {
				select {
				case rec := <-r.queue:
					batch = append(batch, rec)
				default:
					break fill
				}
			}
			r.write(ctx, batch)
		}
	}
}

// flush drains the queue without waiting for more events.
func (r *Recorder) flush(ctx context.Context, batch []models.LookupRecord) {
	for {
		select {
		case rec := <-r.queue:
			batch = append(batch, rec)
			if len(batch) == maxBatch {
				r.write(ctx, batch)
				batch = batch[:0]
			}
		default:
			if len(batch) > 0 {
				r.write(ctx, batch)
			}
			return
		}
	}
}

// write inserts a batch. Failures are logged, never returned, so stats
// cannot stop the service.
func (r *Recorder) write(ctx context.Context, batch []models.LookupRecord) {
	if err := r.db.WithContext(context.WithoutCancel(ctx)).Create(&batch).Error; err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Int("records", len(batch)).Msg("failed to record lookups")
	}
}

type outcomeCount struct {
	Operation string
	Outcome   models.LookupOutcome
	Count     int64
}

// Summary returns counters for every operation, including ones never seen.
func (r *Recorder) Summary(ctx context.Context) ([]models.OperationStats, error) {
	var rows []outcomeCount
	err := r.db.WithContext(ctx).
		Model(&models.LookupRecord{}).
		Select("operation, outcome, COUNT(*) AS count").
		Group("operation, outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lookups: %w", err)
	}

	byOp := make(map[string]*models.OperationStats, len(news.Operations))
	out := make([]models.OperationStats, len(news.Operations))
	for i, op := range news.Operations {
		out[i].Operation = string(op)
		byOp[string(op)] = &out[i]
	}
	for _, row := range rows {
		s, ok := byOp[row.Operation]
		if !ok {
			continue
		}
		switch row.Outcome {
		case models.OutcomeHit:
			s.Hits += row.Count
		case models.OutcomeMiss:
			s.Misses += row.Count
		case models.OutcomeError:
			s.Errors += row.Count
		}
	}
	return out, nil
}

// Recent returns the latest lookups, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var recs []models.LookupRecord
	err := r.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	return recs, nil
}

// Prune deletes records created before the cutoff and reports how many.
func (r *Recorder) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.LookupRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune lookups: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeExpired prunes records past retention, so the recorder can share
// the cache janitor loop.
func (r *Recorder) PurgeExpired() {
	if r.retention <= 0 {
		return
	}
	n, err := r.Prune(context.Background(), r.now().Add(-r.retention))
	l := logger.L()
	if err != nil {
		l.Warn().Err(err).Msg("lookup log prune failed")
		return
	}
	if n > 0 {
		l.Debug().Int64("deleted", n).Msg("pruned lookup log")
	}
}

var _ news.Observer = (*Recorder)(nil)
