package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/image-uploader/internal/config"
	"github.com/mansoorceksport/image-uploader/internal/repository"
	"github.com/mansoorceksport/image-uploader/internal/server"
	"github.com/mansoorceksport/image-uploader/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting Image Uploader Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelProvider, err := telemetry.Initialize(ctx, cfg.OTEL)
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	// Provider client is built once and shared read-only by all requests
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	imageHost, err := repository.NewImageHost(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize image provider: %v", err)
	}
	log.Printf("✓ Image provider: %s", imageHost.Name())

	deps := server.AppDependencies{
		Config:    cfg,
		ImageHost: imageHost,
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("✓ Redis connected, idempotent replay enabled")
		deps.RedisClient = redisClient
	}

	app := server.NewApp(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("🚀 Server is running on http://localhost:%s", cfg.Server.Port)
		return app.Listen(":" + cfg.Server.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down gracefully...")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
