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

	"github.com/joho/godotenv"
	"github.com/jusunglee/furigana/internal/db"
	"github.com/jusunglee/furigana/internal/db/postgres"
	"github.com/jusunglee/furigana/internal/db/sqlite"
	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/health"
	"github.com/jusunglee/furigana/internal/ingest"
	"github.com/jusunglee/furigana/internal/logger"
	"github.com/jusunglee/furigana/internal/metrics"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("furigana-worker")
	var (
		databaseURL = fs.StringLong("database-url", "", "PostgreSQL connection URL or sqlite:// path")
		interval    = fs.DurationLong("interval", 1*time.Hour, "Revalidation interval")
		workers     = fs.Int64Long("workers", 0, "Concurrent parses, 0 for GOMAXPROCS")
		normalize   = fs.BoolLong("normalize", "Normalize width and composition before parsing")
		fix         = fs.BoolLong("fix", "Rewrite kanji blocks that carry stray kana")
		merge       = fs.BoolLong("merge", "Merge adjacent kanji segments")
		healthPort  = fs.Int64Long("health-port", 8081, "Health check port")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *databaseURL == "" {
		return errors.New("database-url is required")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	log := logger.New()

	var (
		repo db.Repository
		ping func(context.Context) error
	)
	if strings.HasPrefix(*databaseURL, "postgres") {
		pgRepo, err := postgres.New(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pgRepo.Close()
		if err := pgRepo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		repo, ping = pgRepo, pgRepo.Ping

		// Periodically export pgxpool stats as Prometheus gauges
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s := pgRepo.PoolStats()
					metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
					metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
					metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
					metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		sqliteRepo, err := sqlite.New(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening SQLite database: %w", err)
		}
		defer sqliteRepo.Close()
		repo, ping = sqliteRepo, sqliteRepo.Ping
	}

	// Serve Prometheus metrics on :9090
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{Addr: ":9090", Handler: metricsMux}
		log.InfoContext(ctx, "starting metrics server", "addr", ":9090")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "metrics server error", "error", err)
		}
	}()

	healthServer := health.New(int(*healthPort), health.Check{Name: "database", Fn: ping})
	go func() {
		log.InfoContext(ctx, "starting health server", "port", *healthPort)
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "health server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			log.Error("health server shutdown error", "error", err)
		}
	}()

	opts := ingest.Options{
		Workers:   int(*workers),
		Normalize: *normalize,
		Format:    furigana.FormatOptions{Fix: *fix, Merge: *merge},
	}

	log.InfoContext(ctx, "worker starting", "interval", *interval)
	runRevalidate(ctx, repo, opts, log)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runRevalidate(ctx, repo, opts, log)
		case <-ctx.Done():
			log.Info("worker stopped")
			return nil
		}
	}
}

func runRevalidate(ctx context.Context, repo db.Repository, opts ingest.Options, log *slog.Logger) {
	log.InfoContext(ctx, "starting document revalidation")
	stats, err := ingest.Revalidate(ctx, repo, opts, log)
	if err != nil {
		log.ErrorContext(ctx, "revalidating documents", "error", err)
		return
	}
	log.InfoContext(ctx, "document revalidation complete",
		"processed", stats.Processed,
		"invalid", stats.Invalid,
		"updated", stats.Updated,
	)
}
