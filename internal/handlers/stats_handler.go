package handlers

import (
	"context"
	"net/http"
	"strconv"

	"news-search-api/internal/logger"
	"news-search-api/internal/models"
	"news-search-api/internal/response"

	"github.com/gin-gonic/gin"
)

// LookupStats is the read side of the lookup log.
type LookupStats interface {
	Summary(ctx context.Context) ([]models.OperationStats, error)
	Recent(ctx context.Context, limit int) ([]models.LookupRecord, error)
	Dropped() uint64
}

// Sizer reports the number of live cache entries.
type Sizer interface {
	Len() int
}

// StatsHandler exposes cache and lookup counters.
type StatsHandler struct {
	stats       LookupStats
	cache       Sizer
	maxEntries  int
	subscribers func() int
}

// NewStatsHandler creates a stats handler. subscribers may be nil.
func NewStatsHandler(stats LookupStats, cache Sizer, maxEntries int, subscribers func() int) *StatsHandler {
	return &StatsHandler{stats: stats, cache: cache, maxEntries: maxEntries, subscribers: subscribers}
}

// GetStats handles GET /api/news/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	summary, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		l := logger.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("failed to load lookup stats")
		response.InternalError(c, "Failed to load stats")
		return
	}

	subscribers := 0
	if h.subscribers != nil {
		subscribers = h.subscribers()
	}
	c.JSON(http.StatusOK, gin.H{
		"operations": summary,
		"cache": gin.H{
			"entries":    h.cache.Len(),
			"maxEntries": h.maxEntries,
		},
		"subscribers":    subscribers,
		"droppedLookups": h.stats.Dropped(),
	})
}

// GetRecentLookups handles GET /api/news/stats/recent?limit=
func (h *StatsHandler) GetRecentLookups(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	recs, err := h.stats.Recent(c.Request.Context(), limit)
	if err != nil {
		l := logger.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("failed to list lookups")
		response.InternalError(c, "Failed to load lookups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}
