package handlers

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"news-search-api/internal/logger"
	"news-search-api/internal/news"
	"news-search-api/internal/realtime"
	"news-search-api/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// wsClient implements realtime.Client over a websocket connection. Sends
// are queued and written by a single writer goroutine.
type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send queues a message; it reports false when the client is gone or behind.
func (c *wsClient) Send(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *wsClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at gin level
		return true
	},
}

// LookupFeedHandler streams lookup events to websocket subscribers.
type LookupFeedHandler struct {
	hub *realtime.Hub
}

// NewLookupFeedHandler creates a feed handler bound to hub.
func NewLookupFeedHandler(hub *realtime.Hub) *LookupFeedHandler {
	return &LookupFeedHandler{hub: hub}
}

// Subscribe handles GET /ws/lookups?op=<operation>. Without op the client
// receives every event.
func (h *LookupFeedHandler) Subscribe(c *gin.Context) {
	topic := c.DefaultQuery("op", realtime.AllTopics)
	if topic != realtime.AllTopics && !slices.Contains(news.Operations, news.Operation(topic)) {
		response.BadRequest(c, "unknown operation: "+topic)
		return
	}

	l := logger.Ctx(c.Request.Context())
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newWSClient(conn)
	h.hub.Register(topic, client)
	go client.writePump()
	defer func() {
		h.hub.Unregister(topic, client)
		client.Close()
	}()
	l.Debug().Str("topic", topic).Msg("lookup feed subscribed")

	// Reader loop: drain messages and keep connection alive via pong handler
	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
