package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"news-search-api/internal/logger"
	"news-search-api/internal/news"
)

// AllTopics subscribes a client to events of every operation.
const AllTopics = "*"

// Client represents a single subscriber connection.
// The network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub tracks subscribed clients per topic and fans lookup events out to them.
// A topic is an operation name or AllTopics.
type Hub struct {
	mu             sync.RWMutex
	topicToClients map[string]map[Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topicToClients: make(map[string]map[Client]struct{}),
	}
}

// Register adds a client under a topic.
func (h *Hub) Register(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topicToClients[topic]; !ok {
		h.topicToClients[topic] = make(map[Client]struct{})
	}
	h.topicToClients[topic][client] = struct{}{}
}

// Unregister removes a client; empty topics are dropped.
func (h *Hub) Unregister(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.topicToClients[topic]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.topicToClients, topic)
		}
	}
}

// Subscribers returns the number of clients across all topics.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.topicToClients {
		n += len(clients)
	}
	return n
}

// Broadcast sends a message to the clients of topic and of AllTopics.
// It returns how many clients accepted it. Clients are only removed by
// Unregister, which the ws handler calls once the connection closes.
func (h *Hub) Broadcast(topic string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, t := range []string{topic, AllTopics} {
		for c := range h.topicToClients[t] {
			// A full client misses this message but stays subscribed.
			if c.Send(message) {
				delivered++
			}
		}
		if topic == AllTopics {
			break
		}
	}
	return delivered
}

// lookupMessage is the wire form of a lookup event.
type lookupMessage struct {
	Type      string `json:"type"`
	Operation string `json:"operation"`
	Key       string `json:"key"`
	Outcome   string `json:"outcome"`
	LatencyMS int64  `json:"latencyMs"`
	At        string `json:"at"`
}

// ObserveLookup implements news.Observer.
func (h *Hub) ObserveLookup(ctx context.Context, evt news.LookupEvent) {
	msg := lookupMessage{
		Type:      "lookup",
		Operation: string(evt.Operation),
		Key:       evt.Key,
		Outcome:   string(evt.Outcome),
		LatencyMS: evt.Latency.Milliseconds(),
		At:        evt.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to encode lookup event")
		return
	}
	h.Broadcast(string(evt.Operation), data)
}

var _ news.Observer = (*Hub)(nil)
