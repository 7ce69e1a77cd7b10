package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"kdigo-rationale-server/internal/logger"
	"kdigo-rationale-server/internal/utils"
)

// HistoryAuthMiddleware requires a bearer token carrying the history scope.
// An empty secret disables the check.
func HistoryAuthMiddleware(secret string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], secret)
		if err != nil || claims.Scope != utils.HistoryScope {
			if log != nil {
				log.Warn("History access denied", "request_id", GetRequestID(c), "error", err)
			}
			utils.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}
