package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jusunglee/furigana/internal/db"
	"github.com/jusunglee/furigana/internal/web/handlers"
	"github.com/jusunglee/furigana/internal/web/middleware"
)

type Config struct {
	// Origins allowed by CORS. Empty allows any origin.
	Origins []string
	// APIKey guards bulk imports.
	APIKey string
	// AdminPassword guards deletes.
	AdminPassword string
	// Workers bounds concurrent parses in a batch request.
	Workers int
	// RateLimit is the number of writes one client may make per RateWindow.
	// Zero means 60 per minute.
	RateLimit  int
	RateWindow time.Duration
}

type Router struct {
	repo    db.Repository
	log     *slog.Logger
	jobs    handlers.JobInserter
	cfg     Config
	limiter *middleware.IPRateLimiter
}

// NewRouter wires the API. inserter may be nil when no job queue is available.
func NewRouter(repo db.Repository, log *slog.Logger, inserter handlers.JobInserter, cfg Config) *Router {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	return &Router{
		repo:    repo,
		log:     log,
		jobs:    inserter,
		cfg:     cfg,
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
	}
}

// Close stops the rate limiter's background cleanup.
func (r *Router) Close() {
	r.limiter.Stop()
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	furiganaHandler := handlers.NewFuriganaHandler(r.log, r.cfg.Workers)
	documentHandler := handlers.NewDocumentHandler(r.repo, r.log, r.jobs)

	post := func(h http.HandlerFunc, extra ...middleware.Middleware) http.Handler {
		mws := append([]middleware.Middleware{
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(r.limiter),
		}, extra...)
		return middleware.Chain(h, mws...)
	}
	get := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, s-maxage=5, max-age=0"),
		)
	}

	mux.Handle("POST /api/v1/furigana/parse", post(furiganaHandler.Parse))
	mux.Handle("POST /api/v1/furigana/batch", post(furiganaHandler.Batch))
	mux.Handle("POST /api/v1/furigana/format", post(furiganaHandler.Format))

	mux.Handle("GET /api/v1/documents", get(documentHandler.List))
	mux.Handle("GET /api/v1/documents/{id}", get(documentHandler.Get))
	mux.Handle("POST /api/v1/documents", post(documentHandler.Create))
	mux.Handle("POST /api/v1/documents/import", post(documentHandler.Import, middleware.APIKeyAuth(r.cfg.APIKey)))
	mux.Handle("DELETE /api/v1/documents/{id}", post(documentHandler.Delete, middleware.BasicAuth(r.cfg.AdminPassword)))

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recover(r.log),
		middleware.CORS(r.cfg.Origins),
	)
}
