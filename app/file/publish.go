package file

import (
	"net/http"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"

	"github.com/gin-gonic/gin"
)

func FilePublish(c *gin.Context, d *internal.Deps) {
	f, err := d.Files.Publish(c.Request.Context(), c.GetString("token"), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func FileUnpublish(c *gin.Context, d *internal.Deps) {
	f, err := d.Files.Unpublish(c.Request.Context(), c.GetString("token"), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}
