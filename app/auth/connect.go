// Package auth contains the session endpoints
package auth

import (
	"net/http"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"
	"bitwise74/files-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Connect exchanges Basic credentials for a session token
func Connect(c *gin.Context, d *internal.Deps) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		respond.Error(c, apperr.Unauthorized())
		return
	}

	token, err := d.Users.Connect(c.Request.Context(), email, password)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func Disconnect(c *gin.Context, d *internal.Deps) {
	if err := d.Users.Disconnect(c.Request.Context(), c.GetString("token")); err != nil {
		respond.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
