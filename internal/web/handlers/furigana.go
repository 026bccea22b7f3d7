package handlers

import (
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/ingest"
)

const maxBatchLines = 1000

// FuriganaHandler serves stateless parsing and formatting.
type FuriganaHandler struct {
	log     *slog.Logger
	workers int
}

func NewFuriganaHandler(log *slog.Logger, workers int) *FuriganaHandler {
	return &FuriganaHandler{log: log, workers: workers}
}

type parseRequest struct {
	Raw       string `json:"raw"`
	Normalize bool   `json:"normalize"`
}

type parseResponse struct {
	Raw      string            `json:"raw"`
	Kanji    string            `json:"kanji"`
	Kana     string            `json:"kana"`
	HasKanji bool              `json:"has_kanji"`
	Segments furigana.Sequence `json:"segments"`
}

func toParseResponse(res ingest.Result) parseResponse {
	segs := res.Segments
	if segs == nil {
		segs = furigana.Sequence{}
	}
	return parseResponse{
		Raw:      res.Furigana.Raw(),
		Kanji:    res.Kanji,
		Kana:     res.Kana,
		HasKanji: segs.HasKanji(),
		Segments: segs,
	}
}

func (h *FuriganaHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res := ingest.ParseOne(req.Raw, ingest.Options{Normalize: req.Normalize})
	if res.Err != nil {
		h.log.DebugContext(r.Context(), "parse failed", "raw", req.Raw, "error", res.Err)
		writeParseError(w, res, req.Raw)
		return
	}

	writeJSON(w, http.StatusOK, toParseResponse(res))
}

type batchRequest struct {
	Lines     []string `json:"lines"`
	Normalize bool     `json:"normalize"`
	Fix       bool     `json:"fix"`
	Merge     bool     `json:"merge"`
	Lossy     bool     `json:"lossy"`
}

type batchResult struct {
	Index int `json:"index"`
	*parseResponse
	*parseErrorResponse
}

type batchResponse struct {
	Results []batchResult  `json:"results"`
	Summary ingest.Summary `json:"summary"`
}

func (h *FuriganaHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "lines are required")
		return
	}
	if len(req.Lines) > maxBatchLines {
		writeError(w, http.StatusBadRequest, "too many lines")
		return
	}

	results, err := ingest.Parse(r.Context(), req.Lines, ingest.Options{
		Workers:   h.workers,
		Normalize: req.Normalize,
		Format:    furigana.FormatOptions{Fix: req.Fix, Merge: req.Merge, Lossy: req.Lossy},
	})
	if err != nil {
		h.log.WarnContext(r.Context(), "batch parse interrupted", "error", err)
		writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Results: lo.Map(results, func(res ingest.Result, _ int) batchResult {
			out := batchResult{Index: res.Index}
			if res.Err != nil {
				perr := newParseErrorResponse(res, req.Lines[res.Index])
				out.parseErrorResponse = &perr
			} else {
				resp := toParseResponse(res)
				out.parseResponse = &resp
			}
			return out
		}),
		Summary: ingest.Summarize(results),
	})
}

type formatRequest struct {
	Raw   string `json:"raw"`
	Fix   bool   `json:"fix"`
	Merge bool   `json:"merge"`
	Lossy bool   `json:"lossy"`
}

func (h *FuriganaHandler) Format(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res := ingest.ParseOne(req.Raw, ingest.Options{
		Format: furigana.FormatOptions{Fix: req.Fix, Merge: req.Merge, Lossy: req.Lossy},
	})
	if res.Err != nil {
		writeParseError(w, res, req.Raw)
		return
	}

	writeJSON(w, http.StatusOK, toParseResponse(res))
}
