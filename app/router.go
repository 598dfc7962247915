// Package app wires the HTTP API together
package app

import (
	"time"

	"bitwise74/files-api/app/auth"
	"bitwise74/files-api/app/file"
	"bitwise74/files-api/app/root"
	"bitwise74/files-api/app/user"
	"bitwise74/files-api/config"
	"bitwise74/files-api/internal"
	"bitwise74/files-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewRouter(cfg *config.Config, d *internal.Deps) *gin.Engine {
	router := gin.New()
	store := persist.NewMemoryStore(time.Minute)

	origins := cfg.CORS
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "PUT", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.TokenHeader},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.NewMetricsMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit,
		Burst:             cfg.RateLimit * 2,
	})
	token := middleware.NewTokenMiddleware(true)
	optionalToken := middleware.NewTokenMiddleware(false)

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// GET /metrics			-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	m := router.Group("", rateLimiter)
	{
		// GET /status			-> Reports whether the stores are reachable
		m.GET("/status", func(c *gin.Context) { root.Status(c, d) })

		// GET /stats			-> Number of users and files
		m.GET("/stats", cacheFor(store, 5), func(c *gin.Context) { root.Stats(c, d) })

		// GET /connect			-> Exchanges Basic credentials for a token
		m.GET("/connect", func(c *gin.Context) { auth.Connect(c, d) })

		// GET /disconnect		-> Ends the session of the token
		m.GET("/disconnect", token, func(c *gin.Context) { auth.Disconnect(c, d) })
	}

	u := m.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /users			-> Registers a new user
		u.POST("", func(c *gin.Context) { user.UserRegister(c, d) })

		// GET /users/me		-> Returns the user behind the token
		u.GET("/me", token, func(c *gin.Context) { user.UserMe(c, d) })
	}

	f := m.Group("/files")
	{
		// POST /files			-> Uploads a file, an image or creates a folder
		f.POST("", token, middleware.BodySizeLimiter(cfg.MaxUploadSize), func(c *gin.Context) { file.FileUpload(c, d) })

		// GET /files			-> Lists the caller's files under ?parentId, paged with ?page
		f.GET("", token, func(c *gin.Context) { file.FileList(c, d) })

		// GET /files/:id		-> Returns a file record owned by the caller
		f.GET("/:id", token, func(c *gin.Context) { file.FileFetch(c, d) })

		// PUT /files/:id/publish	-> Makes a file public
		f.PUT("/:id/publish", token, func(c *gin.Context) { file.FilePublish(c, d) })

		// PUT /files/:id/unpublish	-> Makes a file private
		f.PUT("/:id/unpublish", token, func(c *gin.Context) { file.FileUnpublish(c, d) })

		// GET /files/:id/data		-> Serves the content, or a thumbnail with ?size
		f.GET("/:id/data", optionalToken, func(c *gin.Context) { file.FileServe(c, d) })
	}

	return router
}

func cacheFor(store persist.CacheStore, sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
