// Package ingest parses batches of encoded furigana lines concurrently.
package ingest

import (
	"context"
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/furigana/internal/alphabet"
	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/metrics"
)

type Options struct {
	// Workers bounds concurrent parses. Zero means GOMAXPROCS.
	Workers int
	// Normalize widens halfwidth katakana and applies NFC before parsing.
	Normalize bool
	// Format is applied to every line before its strings are derived.
	Format furigana.FormatOptions
}

// Result is the outcome for one input line. Raw is the text handed to the
// parser, so with Options.Normalize it is the normalized line and a ParseError
// offset indexes into it. Err holds the parse error; the other derived fields
// are empty when it is set.
type Result struct {
	Index    int
	Raw      string
	Furigana furigana.Furigana
	Kanji    string
	Kana     string
	Segments furigana.Sequence
	Err      error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// ParseOne parses a single line and records parse metrics.
func ParseOne(raw string, opts Options) Result {
	timer := prometheus.NewTimer(metrics.ParseDuration)
	res := parse(raw, opts)
	timer.ObserveDuration()

	if res.Err != nil {
		metrics.ParseTotal.WithLabelValues(resultLabel(res.Err)).Inc()
	} else {
		metrics.ParseTotal.WithLabelValues("ok").Inc()
		metrics.SegmentsParsed.Add(float64(len(res.Segments)))
	}
	return res
}

func parse(raw string, opts Options) Result {
	if opts.Normalize {
		raw = alphabet.Normalize(raw)
	}
	res := Result{Raw: raw}

	f, err := furigana.Format(furigana.New(raw), opts.Format)
	if err != nil {
		res.Err = err
		return res
	}

	segs, err := f.AsSegments()
	if err != nil {
		res.Err = err
		return res
	}

	res.Furigana = f
	res.Segments = segs
	res.Kanji = segs.KanjiStr()
	res.Kana = segs.KanaStr()
	return res
}

// Parse parses every line with at most opts.Workers goroutines. Line failures
// are reported per Result; the returned error is only set when ctx is done
// before every line was parsed.
func Parse(ctx context.Context, lines []string, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(lines))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, line := range lines {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res := ParseOne(line, opts)
			res.Index = i
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, fmt.Errorf("parsing batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("parsing batch: %w", err)
	}
	return results, nil
}

// Summary aggregates a batch.
type Summary struct {
	Total  int            `json:"total"`
	OK     int            `json:"ok"`
	Failed int            `json:"failed"`
	ByKind map[string]int `json:"by_kind,omitempty"`
}

func Summarize(results []Result) Summary {
	failed := Failures(results)
	s := Summary{
		Total:  len(results),
		OK:     len(results) - len(failed),
		Failed: len(failed),
	}
	if len(failed) > 0 {
		s.ByKind = lo.CountValuesBy(failed, func(r Result) string {
			return resultLabel(r.Err)
		})
	}
	return s
}

func Failures(results []Result) []Result {
	return lo.Filter(results, func(r Result, _ int) bool {
		return !r.OK()
	})
}

func resultLabel(err error) string {
	if kind := furigana.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "invalid"
}
