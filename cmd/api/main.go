package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-ooh/db"
	"github.com/noah-isme/backend-ooh/internal/app"
	"github.com/noah-isme/backend-ooh/internal/booking"
	"github.com/noah-isme/backend-ooh/internal/cache"
	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/config"
	"github.com/noah-isme/backend-ooh/internal/finance"
	"github.com/noah-isme/backend-ooh/internal/health"
	"github.com/noah-isme/backend-ooh/internal/inventory"
	"github.com/noah-isme/backend-ooh/internal/masters"
	"github.com/noah-isme/backend-ooh/internal/obs"
	"github.com/noah-isme/backend-ooh/internal/proposal"
	"github.com/noah-isme/backend-ooh/internal/ratelimit"
	"github.com/noah-isme/backend-ooh/internal/reports"
	"github.com/noah-isme/backend-ooh/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "ooh")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "ooh-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "ooh-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if err := app.RunMigrations(db.MigrationsFS, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	validate := app.NewValidator()

	mastersService := masters.NewService(masters.Store{Pool: pool}, cache.NewJSON(redisClient, cfg.MastersCacheTTL))
	mastersHandler := &masters.Handler{Service: mastersService}

	inventoryService := inventory.NewService(inventory.ServiceConfig{
		Store:        inventory.Store{Pool: pool},
		Cache:        cache.NewJSON(redisClient, cfg.SpaceCacheTTL),
		Validate:     validate,
		DefaultLimit: cfg.ListDefaultLimit,
		MaxLimit:     cfg.ListMaxLimit,
	})
	inventoryHandler := &inventory.Handler{Service: inventoryService}

	bookingService := booking.NewService(booking.ServiceConfig{
		Store:             booking.Store{Pool: pool},
		Spaces:            inventoryService,
		Validate:          validate,
		DefaultGSTPercent: cfg.DefaultGSTPercent,
		DefaultLimit:      cfg.ListDefaultLimit,
		MaxLimit:          cfg.ListMaxLimit,
	})
	bookingHandler := &booking.Handler{Service: bookingService}

	proposalService := proposal.NewService(proposal.ServiceConfig{
		Store:             proposal.Store{Pool: pool},
		Spaces:            inventoryService,
		Bookings:          booking.Store{Pool: pool},
		Validate:          validate,
		DefaultGSTPercent: cfg.DefaultGSTPercent,
		DefaultLimit:      cfg.ListDefaultLimit,
		MaxLimit:          cfg.ListMaxLimit,
	})
	proposalHandler := &proposal.Handler{Service: proposalService}

	financeService := finance.NewService(finance.ServiceConfig{
		Store:             finance.Store{Pool: pool},
		Validate:          validate,
		DefaultGSTPercent: cfg.DefaultGSTPercent,
		DefaultLimit:      cfg.ListDefaultLimit,
		MaxLimit:          cfg.ListMaxLimit,
	})
	financeHandler := &finance.Handler{Service: financeService}

	reportsHandler := &reports.Handler{Store: reports.Store{Pool: pool}}

	userService := user.NewService(user.Store{Pool: pool}, validate)
	userHandler := &user.Handler{Service: userService}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	rateLimiter, err := ratelimit.New(redisClient, cfg.RateLimitPerMinute)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}
	rl := ratelimit.Handler{
		Limiter: rateLimiter,
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limiter") },
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		basicUser := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		basicPass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), basicUser, basicPass))
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(rl.WriteOnly)

		v.Route("/spaces", inventoryHandler.Routes)
		v.Route("/masters", mastersHandler.Routes)

		v.Route("/bookings", func(b chi.Router) {
			b.Use(idem.Middleware)
			bookingHandler.Routes(b)
		})
		v.Route("/proposals", func(p chi.Router) {
			p.Use(idem.Middleware)
			proposalHandler.Routes(p)
		})
		v.Route("/finance", func(f chi.Router) {
			f.Use(idem.Middleware)
			financeHandler.Routes(f)
		})
		v.Route("/operational-costs", financeHandler.OpCostRoutes)
		v.Route("/reports", reportsHandler.Routes)
		v.Route("/users", userHandler.Routes)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}

	health.SetReady(false)
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelDrain()
	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, basicUser, basicPass string) http.Handler {
	basicUser = strings.TrimSpace(basicUser)
	basicPass = strings.TrimSpace(basicPass)
	if basicUser == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(basicUser)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(basicPass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
