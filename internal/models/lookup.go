package models

import (
	"time"
)

// LookupOutcome is the result of a single read-through lookup.
type LookupOutcome string

const (
	OutcomeHit   LookupOutcome = "hit"
	OutcomeMiss  LookupOutcome = "miss"
	OutcomeError LookupOutcome = "error"
)

// LookupRecord is one row of the lookup log kept by the stats recorder.
type LookupRecord struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	Operation string        `json:"operation" gorm:"not null;index"`
	CacheKey  string        `json:"cacheKey" gorm:"column:cache_key;not null"`
	Outcome   LookupOutcome `json:"outcome" gorm:"not null;index"`
	LatencyMS int64         `json:"latencyMs" gorm:"column:latency_ms"`
	CreatedAt time.Time     `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name for LookupRecord
func (LookupRecord) TableName() string {
	return "lookups"
}

// OperationStats aggregates lookup outcomes for one operation.
type OperationStats struct {
	Operation string `json:"operation"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Errors    int64  `json:"errors"`
}
