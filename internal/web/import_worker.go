package web

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/jusunglee/furigana/internal/db"
	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/ingest"
	"github.com/jusunglee/furigana/internal/jobs"
	"github.com/jusunglee/furigana/internal/metrics"
)

// ImportWorker stores the lines of an import_documents job. Lines that fail to
// parse are logged and skipped; duplicates are ignored.
type ImportWorker struct {
	river.WorkerDefaults[jobs.ImportDocumentsArgs]
	repo    db.Repository
	log     *slog.Logger
	workers int
}

func NewImportWorker(repo db.Repository, log *slog.Logger, workers int) *ImportWorker {
	return &ImportWorker{repo: repo, log: log, workers: workers}
}

func (w *ImportWorker) Work(ctx context.Context, job *river.Job[jobs.ImportDocumentsArgs]) error {
	_, err := w.Import(ctx, job.Args)
	return err
}

// ImportStats counts the outcome of one import.
type ImportStats struct {
	Created    int
	Duplicates int
	Invalid    int
}

func (w *ImportWorker) Import(ctx context.Context, args jobs.ImportDocumentsArgs) (ImportStats, error) {
	results, err := ingest.Parse(ctx, args.Lines, ingest.Options{
		Workers:   w.workers,
		Normalize: args.Normalize,
		Format:    furigana.FormatOptions{Fix: args.Fix, Merge: args.Merge, Lossy: args.Lossy},
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("parsing import: %w", err)
	}

	var stats ImportStats
	err = w.repo.WithTx(ctx, func(txRepo db.Repository) error {
		stats = ImportStats{}
		for _, res := range results {
			if !res.OK() {
				stats.Invalid++
				w.log.WarnContext(ctx, "skipping invalid line", "index", res.Index, "kind", furigana.KindOf(res.Err).String(), "error", res.Err)
				continue
			}
			params, err := ingest.CreateParams(res)
			if err != nil {
				return err
			}
			if _, err := txRepo.CreateDocument(ctx, params); err != nil {
				if db.IsDuplicate(err) {
					stats.Duplicates++
					continue
				}
				return fmt.Errorf("storing line %d: %w", res.Index, err)
			}
			stats.Created++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("importing documents: %w", err)
	}

	metrics.DocumentSubmissions.WithLabelValues("created").Add(float64(stats.Created))
	metrics.DocumentSubmissions.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	metrics.DocumentSubmissions.WithLabelValues("invalid").Add(float64(stats.Invalid))
	w.log.InfoContext(ctx, "import complete", "created", stats.Created, "duplicates", stats.Duplicates, "invalid", stats.Invalid)
	return stats, nil
}
