// e2e drives the HTTP API end to end. With --base-url unset it starts the API
// in process against a temporary SQLite database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/furigana/internal/client"
	"github.com/jusunglee/furigana/internal/db/sqlite"
	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/health"
	"github.com/jusunglee/furigana/internal/ingest"
	"github.com/jusunglee/furigana/internal/logger"
	"github.com/jusunglee/furigana/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("E2E FAILED", "error", err)
		os.Exit(1)
	}
	slog.Info("E2E PASSED")
}

func run() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("furigana-e2e")
	var (
		baseURL       = fs.StringLong("base-url", "", "API to test; empty starts one in process")
		adminPassword = fs.StringLong("admin-password", "e2e-admin", "Basic auth password for deletes")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("E2E")); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var repo *sqlite.Repository
	if *baseURL == "" {
		log.Info("Phase 0: Starting in-process API...")
		dbPath := fmt.Sprintf("/tmp/furigana-e2e-%d.db", time.Now().UnixNano())
		defer os.Remove(dbPath)

		var err error
		repo, err = sqlite.New(ctx, dbPath)
		if err != nil {
			return fmt.Errorf("creating temp SQLite: %w", err)
		}
		defer repo.Close()

		router := web.NewRouter(repo, log, nil, web.Config{AdminPassword: *adminPassword, Workers: 2})
		defer router.Close()
		mux := http.NewServeMux()
		mux.Handle("GET /health", health.New(0, health.Check{Name: "database", Fn: repo.Ping}).Handler())
		mux.Handle("/", router.Handler())
		srv := httptest.NewServer(mux)
		defer srv.Close()
		*baseURL = srv.URL
	}

	c := client.New(*baseURL, client.WithAdminPassword(*adminPassword))

	log.Info("Phase 1: Health...")
	ok, err := c.Healthy(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("health check failed")
	}

	log.Info("Phase 2: Parsing...")
	res, err := c.Parse(ctx, "[日本|に|ほん]が[好|す]きです")
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := expect("kanji", res.Kanji, "日本が好きです"); err != nil {
		return err
	}
	if err := expect("kana", res.Kana, "にほんがすきです"); err != nil {
		return err
	}

	_, err = c.Parse(ctx, "[漢字|か|ん|じ]")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != furigana.AlignmentMismatch.String() {
		return fmt.Errorf("expected alignment_mismatch, got %v", err)
	}
	log.Info("malformed input rejected", "kind", apiErr.Kind, "offset", apiErr.Offset)

	formatted, err := c.Format(ctx, "それは[大|だい][丈|じょう][夫|ぶ]だよ", furigana.FormatOptions{Merge: true})
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := expect("merged", formatted.Raw, "それは[大丈夫|だい|じょう|ぶ]だよ"); err != nil {
		return err
	}

	log.Info("Phase 3: Documents...")
	doc, err := c.CreateDocument(ctx, fmt.Sprintf("[東京|とう|きょう]%d", time.Now().UnixNano()))
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	log.Info("created document", "id", doc.ID, "kana", doc.Kana)

	page, err := c.ListDocuments(ctx, "とうきょう", 1, 10)
	if err != nil {
		return fmt.Errorf("search documents: %w", err)
	}
	if page.Pagination.Total < 1 {
		return errors.New("search did not find the new document")
	}

	if repo != nil {
		log.Info("Phase 4: Revalidating...")
		stats, err := ingest.Revalidate(ctx, repo, ingest.Options{}, log)
		if err != nil {
			return fmt.Errorf("revalidate: %w", err)
		}
		if stats.Invalid != 0 || stats.Updated != 0 {
			return fmt.Errorf("unexpected revalidation result: %+v", stats)
		}
	}

	log.Info("Phase 5: Cleanup...")
	if err := c.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if _, err := c.GetDocument(ctx, doc.ID); !errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("expected deleted document to be gone, got %v", err)
	}

	return nil
}

func expect(field, got, want string) error {
	if got != want {
		return fmt.Errorf("%s: got %q, want %q", field, got, want)
	}
	return nil
}
