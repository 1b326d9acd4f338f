package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"urban-match/internal/app"
	"urban-match/internal/config"
	apphttp "urban-match/internal/http"
	"urban-match/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, users, err := app.OpenUsers(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open user store: %v", err)
	}
	defer db.Close()
	logger.Infof("using %s user store", db.Driver())

	storageSvc, err := app.BuildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	userService := service.NewUserService(users)
	matchService := service.NewMatchService(users, cfg.Match.AgeSpread, logger)
	snapshotService := service.NewSnapshotService(users, storageSvc, app.SnapshotConfig(cfg), logger)

	limiter := buildRateLimiter(cfg, logger)
	if limiter != nil {
		defer limiter.Close()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, matchService, snapshotService, apphttp.Options{
		Limiter: limiter,
		Metrics: apphttp.NewMetrics(),
		Logger:  logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildRateLimiter prefers Redis when configured and falls back to an in-process limiter.
func buildRateLimiter(cfg config.Config, logger *logrus.Logger) apphttp.RateLimiter {
	rl := cfg.RateLimit
	if rl.Requests <= 0 {
		logger.Info("rate limiting disabled")
		return nil
	}
	if rl.RedisAddr != "" {
		limiter, err := apphttp.NewRedisRateLimiter(rl.RedisAddr, rl.RedisPassword, rl.RedisDB, rl.Requests, rl.Window, logger)
		if err == nil {
			logger.Infof("rate limiting %d requests per %s via redis %s", rl.Requests, rl.Window, rl.RedisAddr)
			return limiter
		}
		logger.WithError(err).Warn("redis rate limiter unavailable, using in-memory limiter")
	}
	logger.Infof("rate limiting %d requests per %s in memory", rl.Requests, rl.Window)
	return apphttp.NewMemoryRateLimiter(rl.Requests, rl.Window)
}
