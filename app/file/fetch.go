package file

import (
	"net/http"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"

	"github.com/gin-gonic/gin"
)

// FileFetch returns a file record owned by the caller
func FileFetch(c *gin.Context, d *internal.Deps) {
	f, err := d.Files.Show(c.Request.Context(), c.GetString("token"), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

// FileList returns one page of the caller's files in a folder
func FileList(c *gin.Context, d *internal.Deps) {
	files, err := d.Files.List(
		c.Request.Context(),
		c.GetString("token"),
		c.Query("parentId"),
		c.Query("page"),
	)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}
