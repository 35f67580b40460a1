package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/MarkovDN/pulseblog/internal/auth/http"
	authservice "github.com/MarkovDN/pulseblog/internal/auth/service"
	bloghttp "github.com/MarkovDN/pulseblog/internal/blog/http"
	blogrepo "github.com/MarkovDN/pulseblog/internal/blog/repository"
	blogservice "github.com/MarkovDN/pulseblog/internal/blog/service"
	"github.com/MarkovDN/pulseblog/internal/common/authguard"
	"github.com/MarkovDN/pulseblog/internal/common/clock"
	"github.com/MarkovDN/pulseblog/internal/common/config"
	"github.com/MarkovDN/pulseblog/internal/common/constants"
	commoncrypto "github.com/MarkovDN/pulseblog/internal/common/crypto"
	"github.com/MarkovDN/pulseblog/internal/common/db"
	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	srv "github.com/MarkovDN/pulseblog/internal/common/server"
	"github.com/MarkovDN/pulseblog/internal/events"
	"github.com/MarkovDN/pulseblog/internal/live"
	"github.com/MarkovDN/pulseblog/internal/media"
	"github.com/MarkovDN/pulseblog/internal/pagecache"
	"github.com/MarkovDN/pulseblog/internal/storage/sqlite"
	userrepo "github.com/MarkovDN/pulseblog/internal/user/repository"
)

type repositories struct {
	users    userrepo.Repository
	groups   blogrepo.GroupRepository
	posts    blogrepo.PostRepository
	comments blogrepo.CommentRepository
	follows  blogrepo.FollowRepository
	close    func()
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_DIR"), "blog", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadBlogConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos := openStorage(ctx, cfg, log)
	defer repos.close()

	cache, closeCache := openCache(ctx, cfg, log)

	hub := live.NewHub(ctx, log)
	go hub.Run()

	publisher := events.Multi{hub}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, log)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		// Posts created on other instances still reach local live clients.
		if _, err := natsPublisher.SubscribePostCreated(hub.Broadcast); err != nil {
			log.Fatalf("failed to subscribe to post events: %v", err)
		}
		publisher = append(publisher, natsPublisher)
	}

	mediaStore, err := media.NewStore(cfg.MediaDir)
	if err != nil {
		log.Fatalf("failed to initialize media store: %v", err)
	}

	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()
	issuer := authservice.NewTokenIssuer(cfg.JWTSecret, idGenerator, cfg.AccessTokenTTL, clock.NewRealClock())
	authService := authservice.NewAuthService(repos.users, hasher, idGenerator, issuer, log)

	feedService := blogservice.NewFeedService(repos.posts, repos.follows, log)
	postService := blogservice.NewPostService(repos.posts, repos.comments, repos.groups, publisher, log)
	followService := blogservice.NewFollowService(repos.follows, repos.users, log)

	blogHandler := bloghttp.NewHandler(
		feedService,
		postService,
		followService,
		repos.groups,
		repos.users,
		cache,
		mediaStore,
		cfg.RequestTimeout,
		live.NewHandler(hub, log),
		log,
	)
	authHandler := authhttp.NewHandler(authService, cfg.AccessTokenTTL, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/", blogHandler)
	mux.Handle("/auth/", authHandler)
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	principalMiddleware := authguard.Middleware(cfg.JWTSecret, log)
	baseHandler := commonhttp.BuildBaseHandler(log, principalMiddleware(mux))

	rateLimiter := commonhttp.NewRateLimiter(constants.RateLimitRequestsPerSecond, constants.RateLimitBurst)
	rateLimitMiddleware := func(next http.Handler) http.Handler {
		limited := rateLimiter.Middleware()(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), rateLimitMiddleware(baseHandler))

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			cancel()
			hub.Close()
			publisher.Close()
			closeCache()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "blog", shutdownHooks)
}

func openStorage(ctx context.Context, cfg config.BlogConfig, log *logger.Logger) repositories {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool := db.NewPool(log, cfg.DatabaseURL)
		if err := blogrepo.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		db.StartPoolMetrics(pool, constants.DBPoolMetricsInterval)
		return repositories{
			users:    userrepo.NewPgRepository(pool),
			groups:   blogrepo.NewPgGroupRepository(pool),
			posts:    blogrepo.NewPgPostRepository(pool),
			comments: blogrepo.NewPgCommentRepository(pool),
			follows:  blogrepo.NewPgFollowRepository(pool),
			close:    pool.Close,
		}

	case config.StorageSQLite:
		sqlDB, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite database: %v", err)
		}
		return repositories{
			users:    sqlite.NewUserRepository(sqlDB),
			groups:   sqlite.NewGroupRepository(sqlDB),
			posts:    sqlite.NewPostRepository(sqlDB),
			comments: sqlite.NewCommentRepository(sqlDB),
			follows:  sqlite.NewFollowRepository(sqlDB),
			close:    func() { sqlDB.Close() },
		}

	default:
		log.Fatalf("unknown storage driver: %s", cfg.StorageDriver)
		return repositories{}
	}
}

func openCache(ctx context.Context, cfg config.BlogConfig, log *logger.Logger) (pagecache.Cache, func()) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		redisCache, err := pagecache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.IndexCacheTTL, log)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		return redisCache, redisCache.Close

	case config.CacheMemory:
		memoryCache := pagecache.NewMemoryCache(ctx, cfg.IndexCacheTTL, constants.IndexCacheCleanupInterval, clock.NewRealClock(), log)
		return memoryCache, memoryCache.Close

	default:
		log.Fatalf("unknown cache backend: %s", cfg.CacheBackend)
		return nil, nil
	}
}
