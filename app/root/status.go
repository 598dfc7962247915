package root

import (
	"context"
	"net/http"
	"time"

	"bitwise74/files-api/app/respond"
	"bitwise74/files-api/internal"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Status reports whether the session cache and the metadata store answer
func Status(c *gin.Context, d *internal.Deps) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"redis": d.Sessions.Ping(ctx) == nil,
		"db":    d.Repo.Ping(ctx) == nil,
	})
}

// Stats counts users and files
func Stats(c *gin.Context, d *internal.Deps) {
	var users, files int64

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		users, err = d.Repo.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		files, err = d.Repo.CountFiles(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"files": files,
	})
}
