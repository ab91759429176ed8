package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/inventory-crud-api/internal/app"
	"github.com/sandeepkv93/inventory-crud-api/internal/config"
	"github.com/sandeepkv93/inventory-crud-api/internal/database"
	"github.com/sandeepkv93/inventory-crud-api/internal/health"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/handler"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/middleware"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/router"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/security"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewProductRepository,
	repository.NewUserRepository,
)

var SecuritySet = wire.NewSet(
	providePasswordHasher,
	wire.Bind(new(service.PasswordHasher), new(*security.PasswordHasher)),
)

var ServiceSet = wire.NewSet(
	provideListCache,
	service.NewProductService,
	service.NewUserService,
	wire.Bind(new(service.ProductServiceInterface), new(*service.ProductService)),
	wire.Bind(new(service.UserServiceInterface), new(*service.UserService)),
)

var HTTPSet = wire.NewSet(
	handler.NewProductHandler,
	handler.NewUserHandler,
	provideGlobalRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

var ToolSet = wire.NewSet(NewToolServices)

// ToolServices is the service graph used by the CLI tools, without the HTTP
// surface.
type ToolServices struct {
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Products service.ProductServiceInterface
	Users    service.UserServiceInterface
}

func NewToolServices(db *gorm.DB, redisClient redis.UniversalClient, products service.ProductServiceInterface, users service.UserServiceInterface) *ToolServices {
	return &ToolServices{DB: db, Redis: redisClient, Products: products, Users: users}
}

func (t *ToolServices) Close() error {
	if t.Redis != nil {
		_ = t.Redis.Close()
	}
	return database.Close(t.DB)
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

// provideRuntimeDB opens the pool. The schema is owned externally except for
// sqlite, which is created on demand for local runs.
func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		if err := database.EnsureSchema(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !redisRequired(cfg) {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, slog.Default())
	return client
}

func redisRequired(cfg *config.Config) bool {
	return cfg.RateLimitRedisEnabled || (cfg.ListCacheRedisEnabled && cfg.ListCacheTTL > 0)
}

func providePasswordHasher() *security.PasswordHasher {
	return security.NewPasswordHasher(security.DefaultArgon2Params)
}

func provideListCache(cfg *config.Config, redisClient redis.UniversalClient) *service.ListCache {
	if cfg.ListCacheTTL <= 0 {
		return service.NewListCache(service.NewNoopListCacheStore(), 0)
	}
	if cfg.ListCacheRedisEnabled && redisClient != nil {
		return service.NewListCache(service.NewRedisListCacheStore(redisClient, cfg.ListCacheRedisPrefix), cfg.ListCacheTTL)
	}
	return service.NewListCache(service.NewInMemoryListCacheStore(), cfg.ListCacheTTL)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	productHandler *handler.ProductHandler,
	userHandler *handler.UserHandler,
	globalRateLimiter router.GlobalRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		ProductHandler:    productHandler,
		UserHandler:       userHandler,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout,
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
	)
}
