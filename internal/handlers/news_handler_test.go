package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"news-search-api/internal/cache"
	"news-search-api/internal/news"
	"news-search-api/internal/response"
	"news-search-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newNewsRouter(up news.Upstream) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := cache.NewStore[string, []byte](cache.Options{})
	h := NewNewsHandler(news.NewGateway(up, store))

	r := gin.New()
	r.GET("/api/news", h.GetArticles)
	r.GET("/api/news/title/:title", h.FindByTitle)
	r.GET("/api/news/search/:keywords", h.SearchByKeywords)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetArticles_Success(t *testing.T) {
	up := &testutil.StubUpstream{Response: testutil.Envelope("A", "B")}
	r := newNewsRouter(up)

	w := get(r, "/api/news?q=climate&country=us&lang=en&max=5")
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, string(testutil.Envelope("A", "B")), w.Body.String())
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, news.SearchParams{Query: "climate", Country: "us", Lang: "en", Max: 5}, up.LastParams())

	w = get(r, "/api/news?q=climate&country=us&lang=en&max=5")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, up.Calls())
}

func TestGetArticles_DefaultMax(t *testing.T) {
	up := &testutil.StubUpstream{Response: testutil.Envelope()}
	r := newNewsRouter(up)

	w := get(r, "/api/news?q=climate")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, news.DefaultMax, up.LastParams().Max)
}

func TestGetArticles_Validation(t *testing.T) {
	up := &testutil.StubUpstream{Response: testutil.Envelope()}
	r := newNewsRouter(up)

	for _, target := range []string{
		"/api/news",
		"/api/news?q=x&max=0",
		"/api/news?q=x&max=101",
		"/api/news?q=x&max=abc",
	} {
		w := get(r, target)
		require.Equal(t, http.StatusBadRequest, w.Code, target)
	}
	require.Equal(t, 0, up.Calls())
}

func TestFindByTitle_ReturnsArray(t *testing.T) {
	up := &testutil.StubUpstream{Response: testutil.Envelope("X", "Y", "Z")}
	r := newNewsRouter(up)

	w := get(r, "/api/news/title/election")
	require.Equal(t, http.StatusOK, w.Code)

	titles, err := testutil.Titles(w.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{"X", "Y", "Z"}, titles)
	require.Equal(t, byte('['), w.Body.Bytes()[0])
	require.Equal(t, "title", up.LastParams().In)
	require.Equal(t, 10, up.LastParams().Max)
}

func TestFindByTitle_EmptyIsArray(t *testing.T) {
	r := newNewsRouter(&testutil.StubUpstream{Response: testutil.Envelope()})
	w := get(r, "/api/news/title/nothing?max=3")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestSearchByKeywords_FetchFailed(t *testing.T) {
	up := &testutil.StubUpstream{Err: errors.New("upstream 500")}
	r := newNewsRouter(up)

	w := get(r, "/api/news/search/ai?max=10")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "FETCH_FAILED", body.Error.Code)
	require.Equal(t, "failed to search articles by keywords", body.Error.Message)
	require.NotContains(t, w.Body.String(), "upstream 500")

	// Nothing was cached, so the next request goes upstream again.
	up.Err = nil
	w = get(r, "/api/news/search/ai?max=10")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, up.Calls())
}

func TestSearchByKeywords_InvalidMax(t *testing.T) {
	up := &testutil.StubUpstream{Response: testutil.Envelope()}
	r := newNewsRouter(up)
	require.Equal(t, http.StatusBadRequest, get(r, "/api/news/search/ai?max=500").Code)
	require.Equal(t, 0, up.Calls())
}

func TestSearchByKeywords_UnknownFieldsReachClient(t *testing.T) {
	body := `{"totalArticles":1,"information":{"realTotalArticles":40},"articles":[{"title":"X","extra":"keep"}]}`
	r := newNewsRouter(&testutil.StubUpstream{Response: []byte(body)})

	w := get(r, "/api/news/search/ai")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, body, w.Body.String())

	w = get(r, "/api/news/title/ai")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `[{"title":"X","extra":"keep"}]`, w.Body.String())
}
