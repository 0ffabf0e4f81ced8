package news

import (
	"errors"
	"fmt"
)

// ErrFetchFailed is the only error kind the gateway returns. The upstream
// cause is logged where it happens and not carried to the caller.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError reports which operation failed. It matches ErrFetchFailed
// under errors.Is.
type FetchError struct {
	Op Operation
}

func (e *FetchError) Error() string {
	switch e.Op {
	case OpTitle:
		return "failed to find articles by title"
	case OpKeywords:
		return "failed to search articles by keywords"
	default:
		return "failed to fetch news articles"
	}
}

func (e *FetchError) Unwrap() error { return ErrFetchFailed }

// StatusError is returned by the upstream client for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
