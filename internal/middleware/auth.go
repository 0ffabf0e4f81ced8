package middleware

import (
	"strings"

	"news-search-api/internal/auth"
	"news-search-api/internal/logger"
	"news-search-api/internal/response"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token in the Authorization header.
func JWTAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Browsers cannot set headers on a websocket upgrade.
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			response.Unauthorized(c, "Authorization token is required")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			l := logger.Ctx(c.Request.Context())
			l.Debug().Err(err).Msg("rejected token")
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(logger.FieldClientID, claims.ClientID)
		c.Next()
	}
}
