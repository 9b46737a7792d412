package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/volunteer-scheduler/internal/db"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/infra/ratelimit"
	infraRepo "github.com/BruksfildServices01/volunteer-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/logger"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/routes"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	timezone.SetDefault(cfg.DefaultTimezone)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	stores, err := openStores(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}

	dispatcher := audit.NewDispatcher(audit.New(stores.Audit), log)

	if err := dbpkg.SeedAdmin(context.Background(), stores.Identity, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("seed administrator")
	}

	deps := routes.Deps{
		Config: cfg,
		Log:    log,
		Stores: stores,
		Audit:  dispatcher,
	}
	if limiter := openLimiter(cfg, log); limiter != nil {
		deps.Limiter = limiter
	}
	if cfg.ImageUploadEnabled() {
		deps.Images = storage.NewS3(cfg)
		log.Info().Str("bucket", cfg.S3Bucket).Msg("image uploads enabled")
	}

	r := gin.New()
	if err := routes.RegisterRoutes(r, deps); err != nil {
		log.Fatal().Err(err).Msg("register routes")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.Store).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit queue not drained")
	}
	log.Info().Msg("server stopped")
}

func openStores(cfg *config.Config, log zerolog.Logger) (routes.Stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		s := memory.New()
		return routes.Stores{
			Bookings:      s,
			Opportunities: s,
			Identity:      s,
			Audit:         s,
		}, nil
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return routes.Stores{}, err
	}
	return routes.Stores{
		Bookings:      infraRepo.NewBookingGormRepository(db),
		Opportunities: infraRepo.NewOpportunityGormRepository(db),
		Identity:      infraRepo.NewIdentityGormRepository(db),
		Audit:         infraRepo.NewAuditGormRepository(db),
	}, nil
}

// openLimiter returns nil when Redis is not configured or unreachable;
// booking creation is then unthrottled.
func openLimiter(cfg *config.Config, log zerolog.Logger) *ratelimit.RedisLimiter {
	if !cfg.RateLimitEnabled() {
		return nil
	}

	client := ratelimit.NewRedisClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, booking rate limit disabled")
		return nil
	}
	return ratelimit.NewRedisLimiter(client, cfg.BookingRateLimit, cfg.BookingRateWindow)
}
