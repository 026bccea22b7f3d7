// furi converts encoded furigana lines read from stdin or a file.
//
//	echo '[日本|に|ほん]が[好|す]きです' | furi --mode kana
//	furi --mode check --input corpus.txt
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/ingest"
	"github.com/jusunglee/furigana/internal/logger"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

var errLinesFailed = errors.New("some lines failed to parse")

func main() {
	if err := mainE(); err != nil {
		if !errors.Is(err, errLinesFailed) {
			slog.Error("fatal", "error", err)
		}
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("furi")
	var (
		mode      = fs.StringEnumLong("mode", "Output mode", "kanji", "kana", "segments", "json", "check", "merge", "fix")
		lossy     = fs.BoolLong("lossy", "Allow merging kanji that lack per-character readings")
		workers   = fs.Int64Long("workers", 0, "Concurrent parses, 0 for GOMAXPROCS")
		input     = fs.StringLong("input", "-", "Input file, - for stdin")
		normalize = fs.BoolLong("normalize", "Normalize width and composition before parsing")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("FURI")); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	logger.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	lines, err := readLines(r)
	if err != nil {
		return err
	}

	opts := ingest.Options{Workers: int(*workers), Normalize: *normalize}
	switch *mode {
	case "merge":
		opts.Format = furigana.FormatOptions{Merge: true, Lossy: *lossy}
	case "fix":
		opts.Format = furigana.FormatOptions{Fix: true}
	}

	return run(ctx, *mode, lines, opts, os.Stdout, os.Stderr)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

func run(ctx context.Context, mode string, lines []string, opts ingest.Options, stdout, stderr io.Writer) error {
	results, err := ingest.Parse(ctx, lines, opts)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for _, res := range results {
		if !res.OK() {
			if mode == "json" {
				if err := enc.Encode(jsonLine(res)); err != nil {
					return fmt.Errorf("encoding line %d: %w", res.Index+1, err)
				}
				continue
			}
			w := stderr
			if mode == "check" {
				w = out
			}
			fmt.Fprintf(w, "line %d: %s\n", res.Index+1, describe(res))
			continue
		}

		switch mode {
		case "kanji":
			fmt.Fprintln(out, res.Kanji)
		case "kana":
			fmt.Fprintln(out, res.Kana)
		case "merge", "fix":
			fmt.Fprintln(out, res.Furigana.String())
		case "segments":
			for _, seg := range res.Segments {
				fmt.Fprintf(out, "%s\t%s\t%s\n", seg.Kind(), seg.Text(), strings.Join(seg.Readings(), "|"))
			}
			fmt.Fprintln(out)
		case "json":
			if err := enc.Encode(jsonLine(res)); err != nil {
				return fmt.Errorf("encoding line %d: %w", res.Index+1, err)
			}
		}
	}

	summary := ingest.Summarize(results)
	if summary.Failed > 0 {
		if mode == "check" {
			fmt.Fprintf(out, "%d of %d lines failed\n", summary.Failed, summary.Total)
		}
		return errLinesFailed
	}
	return nil
}

func describe(res ingest.Result) string {
	var perr *furigana.ParseError
	if errors.As(res.Err, &perr) {
		return fmt.Sprintf("%s at offset %d: %s", perr.Kind, perr.Offset, res.Raw)
	}
	return fmt.Sprintf("%v: %s", res.Err, res.Raw)
}

type lineJSON struct {
	Line     int               `json:"line"`
	Raw      string            `json:"raw"`
	Kanji    string            `json:"kanji,omitempty"`
	Kana     string            `json:"kana,omitempty"`
	Segments furigana.Sequence `json:"segments,omitempty"`
	Error    string            `json:"error,omitempty"`
	Kind     string            `json:"kind,omitempty"`
	Offset   *int              `json:"offset,omitempty"`
}

func jsonLine(res ingest.Result) lineJSON {
	l := lineJSON{Line: res.Index + 1, Raw: res.Raw}
	if res.OK() {
		l.Kanji, l.Kana, l.Segments = res.Kanji, res.Kana, res.Segments
		return l
	}
	l.Error = res.Err.Error()
	var perr *furigana.ParseError
	if errors.As(res.Err, &perr) {
		l.Kind = perr.Kind.String()
		l.Offset = &perr.Offset
	}
	return l
}
