// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	role = pflag.String("role", "", "Process role: api, worker or all")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validRoles        = []string{"api", "worker", "all"}
	validStorageTypes = []string{"local", "s3"}
	validDBTypes      = []string{"mongo", "sqlite", "postgres"}
	validSessionTypes = []string{"redis", "memory"}
	validQueueTypes   = []string{"asynq", "local"}
)

type S3 struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKey       string
	SecretAccessKey string
}

type DB struct {
	Type     string
	Host     string
	Port     int
	Database string
	// DSN is used by the sql backends
	DSN string
}

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type Queue struct {
	Type       string
	Workers    int
	Capacity   int
	MaxRetries int
}

type Config struct {
	LogLevel string
	Role     string

	Port int
	CORS []string

	// MaxUploadSize is in bytes
	MaxUploadSize int64
	// RateLimit is in requests per second per client, 0 disables it
	RateLimit int

	StorageType string
	FolderPath  string
	S3          S3

	DB    DB
	Redis Redis

	SessionType string
	SessionTTL  time.Duration

	Queue Queue
}

// RunsAPI reports whether this process serves HTTP
func (c *Config) RunsAPI() bool {
	return c.Role == "api" || c.Role == "all"
}

// RunsWorker reports whether this process consumes thumbnail jobs
func (c *Config) RunsWorker() bool {
	return c.Role == "worker" || c.Role == "all"
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()

	v := viper.GetViper()
	if err := v.BindPFlag("app.role", pflag.Lookup("role")); err != nil {
		return nil, err
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	SetDefaults(v)

	// The config file is optional, env and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return Load(v)
}

// SetDefaults binds the environment and registers the default of every key
func SetDefaults(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.role", "APP_ROLE")

	v.BindEnv("host.port", "HOST_PORT", "PORT")
	v.BindEnv("host.cors", "HOST_CORS")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.folder_path", "FOLDER_PATH")

	v.BindEnv("db.type", "DB_TYPE")
	v.BindEnv("db.host", "DB_HOST")
	v.BindEnv("db.port", "DB_PORT")
	v.BindEnv("db.database", "DB_DATABASE")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.role", "all")

	v.SetDefault("host.port", 5000)
	v.SetDefault("host.cors", []string{"*"})

	v.SetDefault("upload.max_size", 50)
	v.SetDefault("security.rate_limit", 0)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.folder_path", "/tmp/files_manager")

	v.SetDefault("s3.region", "auto")

	v.SetDefault("db.type", "mongo")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 27017)
	v.SetDefault("db.database", "files_manager")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.type", "redis")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("queue.type", "asynq")
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.capacity", 256)
	v.SetDefault("queue.max_retries", 5)
}

// Load validates the values in v and turns them into a Config
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		LogLevel:      v.GetString("app.log_level"),
		Role:          v.GetString("app.role"),
		Port:          v.GetInt("host.port"),
		CORS:          origins(v.GetStringSlice("host.cors")),
		MaxUploadSize: v.GetInt64("upload.max_size") << 20,
		RateLimit:     v.GetInt("security.rate_limit"),
		StorageType:   v.GetString("storage.type"),
		FolderPath:    v.GetString("storage.folder_path"),
		S3: S3{
			Bucket:          v.GetString("s3.bucket"),
			Region:          v.GetString("s3.region"),
			Endpoint:        v.GetString("s3.endpoint"),
			AccessKey:       v.GetString("s3.access_key"),
			SecretAccessKey: v.GetString("s3.secret_access_key"),
		},
		DB: DB{
			Type:     v.GetString("db.type"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			Database: v.GetString("db.database"),
			DSN:      v.GetString("db.dsn"),
		},
		Redis: Redis{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		SessionType: v.GetString("session.type"),
		SessionTTL:  v.GetDuration("session.ttl"),
		Queue: Queue{
			Type:       v.GetString("queue.type"),
			Workers:    v.GetInt("queue.workers"),
			Capacity:   v.GetInt("queue.capacity"),
			MaxRetries: v.GetInt("queue.max_retries"),
		},
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return nil, errors.New("invalid log level provided")
	}

	if !slices.Contains(validRoles, c.Role) {
		return nil, errors.New("invalid role provided")
	}

	if c.Port <= 0 {
		return nil, errors.New("invalid port provided")
	}

	if c.MaxUploadSize <= 0 {
		return nil, errors.New("upload.max_size must be bigger than 0")
	}

	if c.RateLimit < 0 {
		return nil, errors.New("security.rate_limit can't be negative")
	}

	switch c.StorageType {
	case "s3":
		if c.S3.Bucket == "" {
			return nil, errors.New("bucket can't be empty")
		}
		if c.S3.AccessKey == "" {
			return nil, errors.New("access key can't be empty")
		}
		if c.S3.SecretAccessKey == "" {
			return nil, errors.New("secret access key can't be empty")
		}
	case "local":
		if c.FolderPath == "" {
			return nil, errors.New("storage.folder_path can't be empty")
		}
	default:
		return nil, fmt.Errorf("invalid storage type provided, expected one of %v", validStorageTypes)
	}

	if !slices.Contains(validDBTypes, c.DB.Type) {
		return nil, fmt.Errorf("invalid db type provided, expected one of %v", validDBTypes)
	}

	if c.DB.Type != "mongo" && c.DB.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required for %s", c.DB.Type)
	}

	if !slices.Contains(validSessionTypes, c.SessionType) {
		return nil, fmt.Errorf("invalid session type provided, expected one of %v", validSessionTypes)
	}

	if c.SessionTTL <= 0 {
		return nil, errors.New("session.ttl must be bigger than 0")
	}

	if !slices.Contains(validQueueTypes, c.Queue.Type) {
		return nil, fmt.Errorf("invalid queue type provided, expected one of %v", validQueueTypes)
	}

	// The in-process queue can't hand jobs to another process
	if c.Queue.Type == "local" && c.Role != "all" {
		return nil, errors.New("queue.type local requires app.role all")
	}

	if c.Queue.Workers <= 0 {
		return nil, errors.New("queue.workers must be bigger than 0")
	}

	if c.Queue.Capacity <= 0 {
		return nil, errors.New("queue.capacity must be bigger than 0")
	}

	if c.Queue.MaxRetries < 0 {
		return nil, errors.New("queue.max_retries can't be negative")
	}

	return c, nil
}

// origins accepts both a list and the comma separated form used in env vars
func origins(in []string) []string {
	out := []string{}
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}

	return out
}
