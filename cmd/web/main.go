package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/jusunglee/furigana/internal/db"
	"github.com/jusunglee/furigana/internal/db/postgres"
	"github.com/jusunglee/furigana/internal/db/sqlite"
	"github.com/jusunglee/furigana/internal/health"
	"github.com/jusunglee/furigana/internal/logger"
	"github.com/jusunglee/furigana/internal/metrics"
	"github.com/jusunglee/furigana/internal/web"
	"github.com/jusunglee/furigana/internal/web/handlers"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("furigana-web")

	var (
		port           = fs.Int64Long("port", 3000, "HTTP server port")
		databaseURL    = fs.StringLong("database-url", "sqlite://furigana.db", "PostgreSQL connection URL or sqlite:// path")
		allowedOrigins = fs.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		apiKey         = fs.StringLong("api-key", "", "API key required for bulk imports")
		adminPassword  = fs.StringLong("admin-password", "", "Basic auth password for deleting documents")
		workers        = fs.Int64Long("workers", 4, "Concurrent parses per batch request")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()
	ctx, cancel := context.WithCancelCause(context.Background())

	var (
		repo      db.Repository
		ping      func(context.Context) error
		inserter  handlers.JobInserter
		stopQueue func(context.Context) error
	)

	if strings.HasPrefix(*databaseURL, "postgres") {
		pgRepo, err := postgres.New(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		defer pgRepo.Close()
		if err := pgRepo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		log.InfoContext(ctx, "connected to PostgreSQL database")
		repo, ping = pgRepo, pgRepo.Ping

		go exportPoolStats(ctx, pgRepo)

		riverClient, err := startQueue(ctx, pgRepo, log, int(*workers))
		if err != nil {
			return err
		}
		inserter, stopQueue = riverClient, riverClient.Stop
	} else {
		sqliteRepo, err := sqlite.New(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening SQLite database: %w", err)
		}
		defer sqliteRepo.Close()
		log.InfoContext(ctx, "using SQLite database, bulk imports disabled", "path", *databaseURL)
		repo, ping = sqliteRepo, sqliteRepo.Ping
	}

	var origins []string
	if *allowedOrigins != "" {
		for _, o := range strings.Split(*allowedOrigins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	router := web.NewRouter(repo, log, inserter, web.Config{
		Origins:       origins,
		APIKey:        *apiKey,
		AdminPassword: *adminPassword,
		Workers:       int(*workers),
	})
	defer router.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("GET /health", health.New(0, health.Check{Name: "database", Fn: ping}).Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	// Let River finish in-flight imports
	if stopQueue != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := stopQueue(stopCtx); err != nil {
			log.Error("river client stop error", "error", err)
		}
	}

	return nil
}

func startQueue(ctx context.Context, repo *postgres.Repository, log *slog.Logger, parseWorkers int) (*river.Client[pgx.Tx], error) {
	riverDriver := riverpgxv5.New(repo.Pool())

	migrator, err := rivermigrate.New(riverDriver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, web.NewImportWorker(repo, log, parseWorkers))

	riverClient, err := river.NewClient(riverDriver, &river.Config{
		Logger: log,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting river client: %w", err)
	}
	return riverClient, nil
}

// exportPoolStats periodically exports pgxpool stats as Prometheus gauges.
func exportPoolStats(ctx context.Context, repo *postgres.Repository) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := repo.PoolStats()
			metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
			metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
		case <-ctx.Done():
			return
		}
	}
}
