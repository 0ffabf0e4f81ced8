package routes

import (
	"net/http"

	"news-search-api/internal/auth"
	"news-search-api/internal/handlers"
	"news-search-api/internal/logger"
	"news-search-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies are the handlers and services the router is built from.
type Dependencies struct {
	News   *handlers.NewsHandler
	Stats  *handlers.StatsHandler
	Feed   *handlers.LookupFeedHandler
	Tokens *auth.TokenManager // nil leaves /api and /ws open
	Logger zerolog.Logger
}

func SetupRoutes(d Dependencies) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(logger.GinMiddleware(d.Logger))

	// CORS middleware (for browser clients)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, Cache-Control, X-Request-ID, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := []gin.HandlerFunc{}
	if d.Tokens != nil {
		protected = append(protected, middleware.JWTAuthMiddleware(d.Tokens))
	}

	api := ginRouter.Group("/api", protected...)
	{
		api.GET("/news", d.News.GetArticles)
		api.GET("/news/title/:title", d.News.FindByTitle)
		api.GET("/news/search/:keywords", d.News.SearchByKeywords)
		if d.Stats != nil {
			api.GET("/news/stats", d.Stats.GetStats)
			api.GET("/news/stats/recent", d.Stats.GetRecentLookups)
		}
	}

	if d.Feed != nil {
		ws := ginRouter.Group("/ws", protected...)
		ws.GET("/lookups", d.Feed.Subscribe)
	}

	return ginRouter
}
