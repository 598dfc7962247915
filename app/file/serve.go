package file

import (
	"net/http"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"

	"github.com/gin-gonic/gin"
)

// FileServe sends the content of a file, or one of its thumbnails with
// ?size=. The token is optional since public files are readable by anyone.
func FileServe(c *gin.Context, d *internal.Deps) {
	dl, err := d.Files.Download(
		c.Request.Context(),
		c.GetString("token"),
		c.Param("id"),
		c.Query("size"),
	)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.Data(http.StatusOK, dl.MimeType, dl.Content)
}
