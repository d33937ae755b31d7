package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-ooh/internal/app"
	"github.com/noah-isme/backend-ooh/internal/booking"
	"github.com/noah-isme/backend-ooh/internal/config"
	"github.com/noah-isme/backend-ooh/internal/finance"
	"github.com/noah-isme/backend-ooh/internal/jobs"
	"github.com/noah-isme/backend-ooh/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "ooh"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	bookingService := booking.NewService(booking.ServiceConfig{
		Store:             booking.Store{Pool: pool},
		DefaultGSTPercent: cfg.DefaultGSTPercent,
	})
	financeService := finance.NewService(finance.ServiceConfig{
		Store:             finance.Store{Pool: pool},
		DefaultGSTPercent: cfg.DefaultGSTPercent,
	})

	handlers := &jobs.Handlers{
		Bookings: bookingService,
		Finance:  financeService,
		Log:      logger,
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Logger:      asynqLogger{logger},
	})

	client, err := app.NewTaskClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	go enqueueSweeps(ctx, client, cfg.SweepInterval, logger)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		srv.Shutdown()
	}()

	logger.Info().Dur("sweep_interval", cfg.SweepInterval).Msg("worker starting")
	if err := srv.Run(handlers.Mux()); err != nil {
		logger.Fatal().Err(err).Msg("worker exited unexpectedly")
	}
	logger.Info().Msg("worker stopped")
}

// enqueueSweeps periodically queues the campaign and invoice sweeps. Running
// an extra worker replica is harmless: sweeps are idempotent.
func enqueueSweeps(ctx context.Context, client *asynq.Client, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, task := range []*asynq.Task{jobs.NewCampaignSweepTask(), jobs.NewInvoiceOverdueSweepTask()} {
				if _, err := client.EnqueueContext(ctx, task); err != nil {
					logger.Error().Err(err).Str("task", task.Type()).Msg("enqueue sweep")
					continue
				}
				logger.Debug().Str("task", task.Type()).Msg("sweep enqueued")
			}
		}
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "ooh-worker"

	pool, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(pingCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// asynqLogger adapts zerolog to asynq's logger interface.
type asynqLogger struct{ l zerolog.Logger }

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msgf("%v", args) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msgf("%v", args) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msgf("%v", args) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msgf("%v", args) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msgf("%v", args) }
