package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"news-search-api/internal/news"
)

// StubUpstream is a news.Upstream that records calls and replies with a
// fixed body or error.
type StubUpstream struct {
	mu     sync.Mutex
	calls  int
	params []news.SearchParams

	Response json.RawMessage
	Err      error
}

// Search implements news.Upstream. Each call gets its own copy of Response.
func (s *StubUpstream) Search(_ context.Context, p news.SearchParams) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.params = append(s.params, p)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Response == nil {
		return json.RawMessage(`{"totalArticles":0,"articles":[]}`), nil
	}
	return bytes.Clone(s.Response), nil
}

// Calls returns the number of Search invocations.
func (s *StubUpstream) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastParams returns the params of the most recent call.
func (s *StubUpstream) LastParams() news.SearchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return news.SearchParams{}
	}
	return s.params[len(s.params)-1]
}

type stubArticle struct {
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Source stubSource `json:"source"`
}

type stubSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Envelope builds an upstream body with one article per title.
func Envelope(titles ...string) json.RawMessage {
	articles := make([]stubArticle, 0, len(titles))
	for _, t := range titles {
		articles = append(articles, stubArticle{
			Title:  t,
			URL:    "https://news.example/" + t,
			Source: stubSource{Name: "Example", URL: "https://news.example"},
		})
	}
	b, _ := json.Marshal(struct {
		TotalArticles int           `json:"totalArticles"`
		Articles      []stubArticle `json:"articles"`
	}{len(titles), articles})
	return b
}

// Titles reads the article titles out of an envelope or an article list.
func Titles(raw []byte) ([]string, error) {
	var list []stubArticle
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Articles []stubArticle `json:"articles"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		list = env.Articles
	}
	titles := make([]string, 0, len(list))
	for _, a := range list {
		titles = append(titles, a.Title)
	}
	return titles, nil
}

var _ news.Upstream = (*StubUpstream)(nil)
