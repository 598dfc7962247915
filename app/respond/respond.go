// Package respond writes the error bodies of the API
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bitwise74/files-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error writes err as {"error", "requestID"} with the status of its kind.
// Internal errors are logged and never shown to the client.
func Error(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Internal(err)
	}

	if e.Kind == apperr.KindInternal {
		zap.L().Error("Request failed",
			zap.String("requestID", requestID),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(apperr.Status(e.Kind), gin.H{
		"error":     e.Message,
		"requestID": requestID,
	})
}

// BindJSON decodes the body into v. A body over the size limit is answered
// with 413, one that isn't JSON or has a field of the wrong type with 400,
// and false is returned. An empty body is left to field validation.
func BindJSON(c *gin.Context, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": c.GetString("requestID"),
		})
		return false
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	if errors.As(err, &typeErr) || errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		Error(c, apperr.BadRequest("Invalid request body"))
		return false
	}

	return true
}
