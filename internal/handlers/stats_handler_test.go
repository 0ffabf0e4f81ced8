package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"news-search-api/internal/cache"
	"news-search-api/internal/news"
	"news-search-api/internal/stats"
	"news-search-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestStatsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	recorder := stats.NewRecorder(db, 0, 0)
	store := cache.NewStore[string, []byte](cache.Options{MaxEntries: 25})
	g := news.NewGateway(&testutil.StubUpstream{Response: testutil.Envelope("A")}, store, news.WithObserver(recorder))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- recorder.Run(ctx) }()
	defer func() {
		cancel()
		<-stopped
	}()

	_, err = g.GeneralSearch(ctx, "climate", "", "", 10)
	require.NoError(t, err)
	_, err = g.GeneralSearch(ctx, "climate", "", "", 10)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		recs, err := recorder.Recent(ctx, 10)
		return err == nil && len(recs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	h := NewStatsHandler(recorder, store, store.MaxEntries(), func() int { return 2 })
	r := gin.New()
	r.GET("/api/news/stats", h.GetStats)
	r.GET("/api/news/stats/recent", h.GetRecentLookups)

	w := get(r, "/api/news/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Operations []struct {
			Operation string `json:"operation"`
			Hits      int    `json:"hits"`
			Misses    int    `json:"misses"`
		} `json:"operations"`
		Cache struct {
			Entries    int `json:"entries"`
			MaxEntries int `json:"maxEntries"`
		} `json:"cache"`
		Subscribers    int `json:"subscribers"`
		DroppedLookups int `json:"droppedLookups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Operations, 3)
	require.Equal(t, "articles", body.Operations[0].Operation)
	require.Equal(t, 1, body.Operations[0].Hits)
	require.Equal(t, 1, body.Operations[0].Misses)
	require.Equal(t, 1, body.Cache.Entries)
	require.Equal(t, 25, body.Cache.MaxEntries)
	require.Equal(t, 2, body.Subscribers)
	require.Zero(t, body.DroppedLookups)

	w = get(r, "/api/news/stats/recent?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	var recent struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recent))
	require.Len(t, recent.Data, 1)
}
