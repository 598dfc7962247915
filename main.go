package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bitwise74/files-api/app"
	"bitwise74/files-api/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	if err := run(cfg); err != nil {
		zap.L().Error("Server stopped with an error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := app.NewDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := d.Close(closeCtx); err != nil {
			zap.L().Warn("Failed to close dependencies", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.RunsWorker() {
		stopWorker, err := app.StartWorker(ctx, cfg, d)
		if err != nil {
			return err
		}

		g.Go(func() error {
			<-ctx.Done()
			stopWorker()
			return nil
		})
	}

	if cfg.RunsAPI() {
		srv := &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Port),
			Handler:           app.NewRouter(cfg, d),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.String("role", cfg.Role))

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			zap.L().Info("Shutting down server")
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
