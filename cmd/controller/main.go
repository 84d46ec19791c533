// Package main is the entry point for the catsync controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catsync/internal/catalog"
	"catsync/internal/config"
	"catsync/internal/controller"
	"catsync/internal/logger"
	"catsync/internal/observability"
	"catsync/internal/store/postgres"
	"catsync/internal/storefront"
	"catsync/internal/sync"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	// Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	// Setup Database
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	// Run migrations if requested
	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(db.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "catsync-controller", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	syncMetrics, err := observability.NewSyncMetrics()
	if err != nil {
		log.Printf("Failed to init sync metrics: %v", err)
	}

	// External clients
	catalogOpts := []catalog.Option{catalog.WithTimeout(cfg.HTTPTimeout)}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		catalogOpts = append(catalogOpts, catalog.WithCache(rdb))
		log.Printf("Catalog cache enabled (redis: %s)", cfg.RedisAddr)
	}
	catalogClient := catalog.New(cfg.CatalogURL, cfg.CatalogAPIKey, slogger, catalogOpts...)

	storefrontClient := storefront.New(storefront.ClientConfig{
		BaseURL:    cfg.StorefrontURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
		RPS:        cfg.StorefrontRPS,
	}, slogger)

	// Sync engine
	reconciler := sync.NewReconciler(db, storefrontClient, storefront.DefaultFormatter{}, slogger)
	orchestrator := sync.NewOrchestrator(catalogClient, reconciler, db, sync.OrchestratorConfig{
		PageSize:        cfg.PageSize,
		DetailBatchSize: cfg.DetailBatchSize,
	}, syncMetrics, slogger)
	manager := sync.NewManager(db, db, orchestrator, slogger)

	scheduler := sync.NewScheduler(manager, db, slogger)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Observable gauge for currently running jobs, sampled only when scraped.
	meter := otel.Meter("catsync-controller")
	_, err = meter.Int64ObservableGauge("catsync.jobs.running",
		metric.WithDescription("Current number of running sync jobs"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			obs.Observe(int64(manager.RunningCount()))
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register running jobs metric: %v", err)
	}

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(controller.Options{
		Addr:           addr,
		Store:          db,
		Manager:        manager,
		Schedules:      scheduler,
		Metrics:        metricsHandler,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
	})

	// Run drains the listener itself when its context is cancelled.
	serveCtx, stopServe := context.WithCancel(context.Background())
	defer stopServe()
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		log.Printf("Catsync Controller starting on %s", addr)
		if err := srv.Run(serveCtx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down controller...")
	scheduler.Stop()
	stopServe()
	<-serverDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// Running jobs drain at their next checkpoint.
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Printf("Jobs did not drain in time: %v", err)
	}
	log.Println("Server exited properly")
}
