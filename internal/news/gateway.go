package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"news-search-api/internal/cache"
	"news-search-api/internal/logger"
	"news-search-api/internal/models"
)

// Gateway serves search operations from the cache, falling back to the
// upstream on a miss. Concurrent misses for one key each call upstream and
// the last write wins.
type Gateway struct {
	upstream  Upstream
	store     cache.Cache[string, []byte]
	ttl       time.Duration
	observers []Observer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTTL sets the lifetime of entries written by the gateway. Zero defers
// to the store's default.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gateway) { g.ttl = ttl }
}

// WithObserver registers an observer for lookup events.
func WithObserver(o Observer) Option {
	return func(g *Gateway) { g.observers = append(g.observers, o) }
}

// NewGateway creates a gateway over upstream and store.
func NewGateway(upstream Upstream, store cache.Cache[string, []byte], opts ...Option) *Gateway {
	g := &Gateway{upstream: upstream, store: store}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneralSearch returns the upstream envelope for q filtered by optional
// country and lang, byte for byte.
func (g *Gateway) GeneralSearch(ctx context.Context, q, country, lang string, limit int) (json.RawMessage, error) {
	return g.readThrough(ctx, NewArticlesRequest(q, country, lang, limit), envelope)
}

// FindByTitle returns only the articles array of the upstream envelope.
func (g *Gateway) FindByTitle(ctx context.Context, title string, limit int) (json.RawMessage, error) {
	return g.readThrough(ctx, NewTitleRequest(title, limit), articleList)
}

// SearchByKeywords returns the upstream envelope for a keyword query.
func (g *Gateway) SearchByKeywords(ctx context.Context, keywords string, limit int) (json.RawMessage, error) {
	return g.readThrough(ctx, NewKeywordsRequest(keywords, limit), envelope)
}

func decodeEnvelope(body json.RawMessage) (models.SearchEnvelope, error) {
	var env models.SearchEnvelope
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return env, errors.New("upstream body is not a JSON object")
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("unexpected envelope: %w", err)
	}
	return env, nil
}

// envelope accepts any JSON object and returns it unchanged.
func envelope(body json.RawMessage) (json.RawMessage, error) {
	if _, err := decodeEnvelope(body); err != nil {
		return nil, err
	}
	return body, nil
}

// articleList cuts the articles array out of an envelope. A missing or null
// array is an empty list.
func articleList(body json.RawMessage) (json.RawMessage, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	list := bytes.TrimSpace(env.Articles)
	switch {
	case len(list) == 0, bytes.Equal(list, []byte("null")):
		return json.RawMessage("[]"), nil
	case list[0] != '[':
		return nil, errors.New("articles is not an array")
	}
	return list, nil
}

// readThrough implements the shared policy: cache lookup, then a single
// upstream call on a miss. Only successful results are stored. The store
// and each caller hold separate copies of the bytes.
func (g *Gateway) readThrough(ctx context.Context, req SearchRequest, extract func(json.RawMessage) (json.RawMessage, error)) (json.RawMessage, error) {
	start := time.Now()
	key := req.Key()
	l := logger.Ctx(ctx).With().
		Str(logger.FieldOperation, string(req.Kind)).
		Str(logger.FieldCacheKey, key).
		Logger()

	if data, ok := g.store.Get(key); ok {
		l.Debug().Str(logger.FieldOutcome, string(models.OutcomeHit)).Msg("returning cached data")
		g.emit(ctx, req.Kind, key, models.OutcomeHit, start)
		return bytes.Clone(data), nil
	}

	// The fetch and the cache write outlive a caller that gives up.
	body, err := g.upstream.Search(context.WithoutCancel(ctx), req.Params())
	if err == nil {
		body, err = extract(body)
	}
	if err != nil {
		evt := l.Error().Err(err).Str(logger.FieldOutcome, string(models.OutcomeError))
		var se *StatusError
		if errors.As(err, &se) {
			evt = evt.Int(logger.FieldUpstream, se.StatusCode)
		}
		evt.Msg("upstream search failed")
		g.emit(ctx, req.Kind, key, models.OutcomeError, start)
		return nil, &FetchError{Op: req.Kind}
	}

	g.store.Set(key, bytes.Clone(body), g.ttl)

	l.Debug().Str(logger.FieldOutcome, string(models.OutcomeMiss)).Int("bytes", len(body)).Msg("cached upstream result")
	g.emit(ctx, req.Kind, key, models.OutcomeMiss, start)
	return body, nil
}

func (g *Gateway) emit(ctx context.Context, op Operation, key string, outcome models.LookupOutcome, start time.Time) {
	if len(g.observers) == 0 {
		return
	}
	evt := LookupEvent{
		Operation: op,
		Key:       key,
		Outcome:   outcome,
		Latency:   time.Since(start),
		At:        time.Now(),
	}
	for _, o := range g.observers {
		o.ObserveLookup(ctx, evt)
	}
}
