package app

import (
	"context"
	"fmt"
	"time"

	"bitwise74/files-api/config"
	"bitwise74/files-api/internal"
	"bitwise74/files-api/internal/blob"
	"bitwise74/files-api/internal/repository"
	"bitwise74/files-api/internal/service"
	"bitwise74/files-api/internal/session"
	"bitwise74/files-api/pkg/security"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// connect retries fn while the backing service comes up
func connect(ctx context.Context, what string, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			zap.L().Warn("Failed to connect, retrying", zap.String("service", what), zap.Error(err))
			return retry.RetryableError(err)
		}

		return nil
	})
}

// NewDeps connects to every backend named in cfg. On error the clients
// created so far are closed.
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	d := &internal.Deps{}

	for _, fn := range []func(context.Context, *config.Config, *internal.Deps) error{
		newRepository,
		newBlobStore,
		newSessions,
	} {
		if err := fn(ctx, cfg, d); err != nil {
			d.Close(context.WithoutCancel(ctx))
			return nil, err
		}
	}

	switch cfg.Queue.Type {
	case "local":
		jq := service.NewJobQueue(service.JobQueueOpts{
			Workers:    cfg.Queue.Workers,
			Capacity:   cfg.Queue.Capacity,
			MaxRetries: uint64(cfg.Queue.MaxRetries),
		})
		d.Queue = jq
		d.OnClose(jq.Stop)
	case "asynq":
		aq := service.NewAsynqQueue(asynqOpts(cfg))
		d.Queue = aq
		d.OnClose(func(context.Context) error { return aq.Close() })
	}

	d.Users = service.NewUsers(d.Sessions, d.Repo, security.New())
	d.Files = service.NewFiles(d.Sessions, d.Repo, d.Blobs, d.Queue)
	d.Thumbnailer = service.NewThumbnailer(d.Repo, d.Blobs)

	return d, nil
}

func newRepository(ctx context.Context, cfg *config.Config, d *internal.Deps) error {
	var repo repository.Repository

	err := connect(ctx, cfg.DB.Type, func(ctx context.Context) (err error) {
		switch cfg.DB.Type {
		case "mongo":
			repo, err = repository.NewMongo(ctx, repository.MongoOpts{
				Host:     cfg.DB.Host,
				Port:     cfg.DB.Port,
				Database: cfg.DB.Database,
			})
		default:
			repo, err = repository.NewSQL(ctx, repository.SQLOpts{
				Driver: cfg.DB.Type,
				DSN:    cfg.DB.DSN,
			})
		}

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metadata store, %w", err)
	}

	d.Repo = repo
	d.OnClose(repo.Close)

	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, d *internal.Deps) error {
	switch cfg.StorageType {
	case "s3":
		s3, err := blob.NewS3(ctx, blob.S3Opts{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKey:       cfg.S3.AccessKey,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Blobs = s3
	default:
		local, err := blob.NewLocal(cfg.FolderPath)
		if err != nil {
			return err
		}

		d.Blobs = local
	}

	return nil
}

func newSessions(ctx context.Context, cfg *config.Config, d *internal.Deps) error {
	var c session.Cache

	switch cfg.SessionType {
	case "memory":
		c = session.NewMemory()
	default:
		err := connect(ctx, "redis", func(ctx context.Context) (err error) {
			c, err = session.NewRedis(ctx, session.RedisOpts{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to initialize session store, %w", err)
		}
	}

	d.Sessions = session.NewStore(c, cfg.SessionTTL)
	d.OnClose(func(context.Context) error { return d.Sessions.Close() })

	return nil
}

func asynqOpts(cfg *config.Config) service.AsynqOpts {
	return service.AsynqOpts{
		Addr:        cfg.Redis.Addr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		Concurrency: cfg.Queue.Workers,
		MaxRetries:  cfg.Queue.MaxRetries,
	}
}

// StartWorker starts consuming thumbnail jobs. The returned function stops
// the workers once the jobs in progress are done.
func StartWorker(ctx context.Context, cfg *config.Config, d *internal.Deps) (stop func(), err error) {
	switch q := d.Queue.(type) {
	case *service.JobQueue:
		// Jobs already buffered are still drained after shutdown starts
		q.StartWorkerPool(context.WithoutCancel(ctx), d.Thumbnailer.Process)
		zap.L().Info("Thumbnail workers started", zap.Int("workers", cfg.Queue.Workers))

		// Stopping the queue is left to Deps.Close so late enqueues from
		// requests still being drained don't hit a closed channel
		return func() {}, nil
	default:
		w := service.NewAsynqWorker(asynqOpts(cfg), d.Thumbnailer.Process)
		if err := w.Start(); err != nil {
			return nil, fmt.Errorf("failed to start asynq worker, %w", err)
		}
		zap.L().Info("Asynq worker started", zap.Int("concurrency", cfg.Queue.Workers))

		return w.Stop, nil
	}
}
