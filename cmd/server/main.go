package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/jobmatch/api"
	dbfs "github.com/garnizeh/jobmatch/db"
	"github.com/garnizeh/jobmatch/internal/config"
	"github.com/garnizeh/jobmatch/internal/db"
	"github.com/garnizeh/jobmatch/internal/jobs"
	"github.com/garnizeh/jobmatch/internal/matching"
	"github.com/garnizeh/jobmatch/internal/notify"
	"github.com/garnizeh/jobmatch/internal/repository/sqlite"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const purgeInterval = time.Hour

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting jobmatch server version %s (built at %s)", version, buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
	}

	repo := sqlite.New(database, logger)

	// Background jobs: offer emails and periodic cleanup
	queue := jobs.NewRepository(database)
	if n, err := queue.RequeueRunning(ctx); err != nil {
		log.Fatalf("Failed to requeue jobs: %v", err)
	} else if n > 0 {
		logger.Info("requeued interrupted jobs", slog.Int64("count", n))
	}

	var sender notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.Notify.SMTPHost != "" {
		sender = notify.NewMailer(cfg.Notify, logger)
	}

	pool := jobs.NewWorkerPool(queue, map[string]jobs.Handler{
		notify.JobDeliver: notify.DeliveryHandler(sender),
		jobs.JobPurge:     jobs.PurgeHandler(queue, repo, 7*24*time.Hour, logger),
	}, logger, jobs.Options{
		Workers:      cfg.Jobs.Workers,
		PollInterval: cfg.Jobs.PollInterval,
		MaxAttempts:  cfg.Jobs.MaxAttempts,
	})
	pool.Start(ctx)
	pool.Schedule(ctx, jobs.JobPurge, purgeInterval)

	outbox := notify.NewOutbox(queue, cfg.Jobs.MaxAttempts, logger)
	svc := matching.New(repo, outbox, logger)

	handler := api.SetupRoutes(cfg, version, buildTime, repo, repo, svc, database)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	pool.Stop()

	// Close database connection
	if err := database.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
