package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"news-search-api/internal/logger"
	"news-search-api/internal/news"
	"news-search-api/internal/response"

	"github.com/gin-gonic/gin"
)

// SearchGateway is the read-through search surface served over HTTP.
type SearchGateway interface {
	GeneralSearch(ctx context.Context, q, country, lang string, limit int) (json.RawMessage, error)
	FindByTitle(ctx context.Context, title string, limit int) (json.RawMessage, error)
	SearchByKeywords(ctx context.Context, keywords string, limit int) (json.RawMessage, error)
}

// ArticlesQuery is the query string of GET /api/news.
type ArticlesQuery struct {
	Q       string `form:"q" binding:"required"`
	Country string `form:"country"`
	Lang    string `form:"lang"`
	Max     int    `form:"max,default=10" binding:"min=1,max=100"`
}

// LimitQuery carries the optional max of the path-based searches.
type LimitQuery struct {
	Max int `form:"max,default=10" binding:"min=1,max=100"`
}

// NewsHandler handles the news search endpoints.
type NewsHandler struct {
	gateway SearchGateway
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(gateway SearchGateway) *NewsHandler {
	return &NewsHandler{gateway: gateway}
}

// GetArticles handles GET /api/news
func (h *NewsHandler) GetArticles(c *gin.Context) {
	var q ArticlesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.gateway.GeneralSearch(c.Request.Context(), q.Q, q.Country, q.Lang, q.Max)
	if err != nil {
		writeSearchError(c, err)
		return
	}
	writePayload(c, result)
}

// FindByTitle handles GET /api/news/title/:title
func (h *NewsHandler) FindByTitle(c *gin.Context) {
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	title := c.Param("title")
	if title == "" {
		response.BadRequest(c, "title is required")
		return
	}

	articles, err := h.gateway.FindByTitle(c.Request.Context(), title, q.Max)
	if err != nil {
		writeSearchError(c, err)
		return
	}
	writePayload(c, articles)
}

// SearchByKeywords handles GET /api/news/search/:keywords
func (h *NewsHandler) SearchByKeywords(c *gin.Context) {
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	keywords := c.Param("keywords")
	if keywords == "" {
		response.BadRequest(c, "keywords are required")
		return
	}

	result, err := h.gateway.SearchByKeywords(c.Request.Context(), keywords, q.Max)
	if err != nil {
		writeSearchError(c, err)
		return
	}
	writePayload(c, result)
}

// writePayload sends the upstream JSON without re-encoding it.
func writePayload(c *gin.Context, payload json.RawMessage) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func writeSearchError(c *gin.Context, err error) {
	if errors.Is(err, news.ErrFetchFailed) {
		response.FetchFailed(c, err.Error())
		return
	}
	l := logger.Ctx(c.Request.Context())
	l.Error().Err(err).Msg("unexpected search error")
	response.InternalError(c, "search failed")
}
