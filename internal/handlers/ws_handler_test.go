package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"news-search-api/internal/cache"
	"news-search-api/internal/news"
	"news-search-api/internal/realtime"
	"news-search-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestLookupFeed_StreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub()
	r := gin.New()
	r.GET("/ws/lookups", NewLookupFeedHandler(hub).Subscribe)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/lookups?op=title"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	store := cache.NewStore[string, []byte](cache.Options{})
	g := news.NewGateway(&testutil.StubUpstream{Response: testutil.Envelope("X")}, store, news.WithObserver(hub))
	_, err = g.SearchByKeywords(context.Background(), "ignored", 1)
	require.NoError(t, err)
	_, err = g.FindByTitle(context.Background(), "election", 10)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, "title", msg["operation"])
	require.Equal(t, "miss", msg["outcome"])
	require.Equal(t, `title:{"title":"election","max":10}`, msg["key"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLookupFeed_UnknownOperation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/lookups", NewLookupFeedHandler(realtime.NewHub()).Subscribe)

	w := get(r, "/ws/lookups?op=bogus")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
