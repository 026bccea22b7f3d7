package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"github.com/jusunglee/furigana/internal/db"
	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/metrics"
)

// RevalidateStats counts the outcome of one revalidation pass.
type RevalidateStats struct {
	Processed int
	Invalid   int
	Updated   int
}

// Revalidate re-parses every stored document and rewrites the derived columns
// of those that no longer match. Documents whose raw text fails to parse are
// logged and left untouched.
func Revalidate(ctx context.Context, repo db.Repository, opts Options, log *slog.Logger) (RevalidateStats, error) {
	timer := prometheus.NewTimer(metrics.RevalidateCycleDuration)
	defer timer.ObserveDuration()

	docs, err := repo.ListAllDocuments(ctx)
	if err != nil {
		return RevalidateStats{}, fmt.Errorf("listing documents: %w", err)
	}

	results, err := Parse(ctx, lo.Map(docs, func(d db.Document, _ int) string { return d.Raw }), opts)
	if err != nil {
		return RevalidateStats{}, err
	}

	stats := RevalidateStats{Processed: len(docs)}
	for i, res := range results {
		doc := docs[i]
		if !res.OK() {
			stats.Invalid++
			attrs := []any{"id", doc.ID, "error", res.Err}
			var perr *furigana.ParseError
			if errors.As(res.Err, &perr) {
				attrs = append(attrs, "kind", perr.Kind.String(), "offset", perr.Offset)
			}
			log.WarnContext(ctx, "stored document no longer parses", attrs...)
			continue
		}

		p, err := UpdateParams(doc.ID, res)
		if err != nil {
			return stats, fmt.Errorf("document %d: %w", doc.ID, err)
		}
		if !Stale(doc, p) {
			continue
		}
		if _, err := repo.UpdateDocument(ctx, p); err != nil {
			if db.IsNoRows(err) {
				// deleted since listing
				continue
			}
			return stats, fmt.Errorf("updating document %d: %w", doc.ID, err)
		}
		stats.Updated++
		metrics.DocumentsUpdated.Inc()
	}

	metrics.DocumentsProcessed.Set(float64(stats.Processed))
	metrics.DocumentsInvalid.Set(float64(stats.Invalid))
	return stats, nil
}
