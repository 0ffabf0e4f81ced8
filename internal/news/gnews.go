package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Upstream fetches one page of search results. The body is returned as the
// provider sent it.
type Upstream interface {
	Search(ctx context.Context, params SearchParams) (json.RawMessage, error)
}

const maxErrorBody = 512

// GNewsClient calls a GNews-compatible GET {baseURL}/search endpoint.
type GNewsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGNewsClient creates a client. A nil httpClient gets one with timeout.
func NewGNewsClient(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client) *GNewsClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &GNewsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// HasAPIKey reports whether an API key was configured.
func (c *GNewsClient) HasAPIKey() bool {
	return c.apiKey != ""
}

// Search implements Upstream.
func (c *GNewsClient) Search(ctx context.Context, params SearchParams) (json.RawMessage, error) {
	q := params.Values()
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call upstream: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("upstream returned invalid JSON")
	}
	return body, nil
}

var _ Upstream = (*GNewsClient)(nil)
