// Package middleware contains any custom middleware used in the app
package middleware

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gin-gonic/gin"
)

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request and sets it as requestID
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := gonanoid.Must(12)

		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
