// Package news implements the read-through search gateway: cache-key
// derivation, the upstream search client and the three cached operations.
package news

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Operation names one of the gateway's query shapes. Its value prefixes
// every cache key derived for that shape.
type Operation string

const (
	OpArticles Operation = "articles"
	OpTitle    Operation = "title"
	OpKeywords Operation = "keywords"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{OpArticles, OpTitle, OpKeywords}

const (
	DefaultMax = 10
	MinMax     = 1
	MaxMax     = 100
)

// SearchRequest is an immutable, already validated request for one operation.
type SearchRequest struct {
	Kind    Operation
	Query   string
	Country string
	Lang    string
	Max     int
}

// NewArticlesRequest builds a general search request.
func NewArticlesRequest(q, country, lang string, limit int) SearchRequest {
	return SearchRequest{Kind: OpArticles, Query: q, Country: country, Lang: lang, Max: normalizeMax(limit)}
}

// NewTitleRequest builds a title-restricted search request.
func NewTitleRequest(title string, limit int) SearchRequest {
	return SearchRequest{Kind: OpTitle, Query: title, Max: normalizeMax(limit)}
}

// NewKeywordsRequest builds a keyword search request.
func NewKeywordsRequest(keywords string, limit int) SearchRequest {
	return SearchRequest{Kind: OpKeywords, Query: keywords, Max: normalizeMax(limit)}
}

func normalizeMax(limit int) int {
	if limit <= 0 {
		return DefaultMax
	}
	return limit
}

// Field order in these structs is the canonical key order. Reordering
// fields changes every derived key.
type articlesKeyParams struct {
	Q       string `json:"q"`
	Country string `json:"country,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Max     int    `json:"max"`
}

type titleKeyParams struct {
	Title string `json:"title"`
	Max   int    `json:"max"`
}

type keywordsKeyParams struct {
	Keywords string `json:"keywords"`
	Max      int    `json:"max"`
}

// Key derives the cache key for the request: "<kind>:<canonical json>".
func (r SearchRequest) Key() string {
	switch r.Kind {
	case OpTitle:
		return cacheKey(r.Kind, titleKeyParams{Title: r.Query, Max: r.Max})
	case OpKeywords:
		return cacheKey(r.Kind, keywordsKeyParams{Keywords: r.Query, Max: r.Max})
	default:
		return cacheKey(OpArticles, articlesKeyParams{Q: r.Query, Country: r.Country, Lang: r.Lang, Max: r.Max})
	}
}

func cacheKey(op Operation, params any) string {
	return string(op) + ":" + CanonicalJSON(params)
}

// CanonicalJSON serializes v with struct fields in declaration order.
// Key params only hold strings and ints, which always encode.
func CanonicalJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// SearchParams are the query parameters sent upstream, minus the API key.
type SearchParams struct {
	Query   string
	Country string
	Lang    string
	Max     int
	In      string
}

// Params shapes the upstream call for the request's operation.
func (r SearchRequest) Params() SearchParams {
	switch r.Kind {
	case OpTitle:
		return SearchParams{Query: r.Query, Max: r.Max, In: "title"}
	case OpKeywords:
		return SearchParams{Query: r.Query, Max: r.Max}
	default:
		return SearchParams{Query: r.Query, Country: r.Country, Lang: r.Lang, Max: r.Max}
	}
}

// Values encodes the params, skipping empty optional fields.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("q", p.Query)
	if p.Country != "" {
		v.Set("country", p.Country)
	}
	if p.Lang != "" {
		v.Set("lang", p.Lang)
	}
	v.Set("max", strconv.Itoa(p.Max))
	if p.In != "" {
		v.Set("in", p.In)
	}
	return v
}
