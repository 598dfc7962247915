package user

import (
	"net/http"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"

	"github.com/gin-gonic/gin"
)

// UserMe returns the user behind the session token
func UserMe(c *gin.Context, d *internal.Deps) {
	u, err := d.Users.Me(c.Request.Context(), c.GetString("token"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.Set("userID", u.ID.String())

	c.JSON(http.StatusOK, gin.H{
		"id":    u.ID,
		"email": u.Email,
	})
}
