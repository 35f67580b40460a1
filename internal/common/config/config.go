package config

import (
	"fmt"
	"os"
	"time"

	"github.com/MarkovDN/pulseblog/internal/common/constants"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageSQLite   StorageDriver = "sqlite"
)

type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

type BlogConfig struct {
	HTTPPort       string
	StorageDriver  StorageDriver
	DatabaseURL    string
	SQLitePath     string
	JWTSecret      string
	AccessTokenTTL time.Duration
	RequestTimeout time.Duration

	CacheBackend  CacheBackend
	IndexCacheTTL time.Duration
	RedisAddr     string
	RedisPassword string

	NATSURL  string
	MediaDir string
}

func LoadBlogConfig() (BlogConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return BlogConfig{}, err
	}

	if len(jwtSecret) < constants.JWTSecretMinLength {
		return BlogConfig{}, commonerrors.ErrInvalidJWTSecret.WithCause(
			fmt.Errorf("got %d bytes", len(jwtSecret)))
	}

	driver := StorageDriver(getEnv("STORAGE_DRIVER", string(StoragePostgres)))

	cfg := BlogConfig{
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		StorageDriver:  driver,
		SQLitePath:     getEnv("SQLITE_PATH", "pulseblog.db"),
		JWTSecret:      jwtSecret,
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		CacheBackend:   CacheBackend(getEnv("CACHE_BACKEND", string(CacheMemory))),
		IndexCacheTTL:  getDurationEnv("INDEX_CACHE_TTL", constants.IndexCacheTTL),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		NATSURL:        os.Getenv("NATS_URL"),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
	}

	if driver == StoragePostgres {
		databaseURL, err := mustEnv("DATABASE_URL")
		if err != nil {
			return BlogConfig{}, err
		}
		cfg.DatabaseURL = databaseURL
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
