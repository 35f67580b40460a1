package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	FeedPageSize      = 10
	MaxPostTextLength = 10000
	MaxCommentLength  = 2000
	MaxSlugLength     = 64

	IndexCacheTTL             = 20 * time.Second
	IndexCacheKeyPrefix       = "index_page"
	IndexCacheCleanupInterval = 10 * time.Second

	MaxImageSizeBytes     = 5 * 1024 * 1024
	DefaultMaxRequestSize = 6 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second
	DefaultAccessTokenTTL = 24 * time.Hour

	RateLimitRequestsPerSecond = 50
	RateLimitBurst             = 100
	RateLimitCleanupInterval   = 5 * time.Minute

	LiveSendBufSize  = 64
	LiveWriteWait    = 10 * time.Second
	LivePongWait     = 60 * time.Second
	LivePingPeriod   = 54 * time.Second
	LiveMaxMsgSize   = 512
	LiveReadBufSize  = 1024
	LiveWriteBufSize = 1024

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	LoginPath = "/auth/login/"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
