// Package file contains the file endpoints
package file

import (
	"net/http"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"
	"bitwise74/files-api/internal/service"

	"github.com/gin-gonic/gin"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	var in service.UploadInput
	if !respond.BindJSON(c, &in) {
		return
	}

	f, err := d.Files.Upload(c.Request.Context(), c.GetString("token"), in)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.Set("userID", f.UserID.String())
	c.JSON(http.StatusCreated, f)
}
