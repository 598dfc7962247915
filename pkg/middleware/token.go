package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const TokenHeader = "X-Token"

// NewTokenMiddleware puts the session token of the request under "token".
// When required, requests without one are turned away before reaching the
// session store.
func NewTokenMiddleware(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)

		if token == "" && required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Set("token", token)
		c.Next()
	}
}
