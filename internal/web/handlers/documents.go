package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/samber/lo"

	"github.com/jusunglee/furigana/internal/db"
	"github.com/jusunglee/furigana/internal/ingest"
	"github.com/jusunglee/furigana/internal/jobs"
	"github.com/jusunglee/furigana/internal/metrics"
)

// JobInserter enqueues background jobs. *river.Client[pgx.Tx] implements it.
type JobInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

type DocumentHandler struct {
	repo db.Repository
	log  *slog.Logger
	jobs JobInserter
}

// NewDocumentHandler returns a handler for stored documents. inserter may be
// nil, in which case imports are rejected.
func NewDocumentHandler(repo db.Repository, log *slog.Logger, inserter JobInserter) *DocumentHandler {
	return &DocumentHandler{repo: repo, log: log, jobs: inserter}
}

type documentResponse struct {
	ID           int64           `json:"id"`
	Raw          string          `json:"raw"`
	Kanji        string          `json:"kanji"`
	Kana         string          `json:"kana"`
	SegmentCount int32           `json:"segment_count"`
	HasKanji     bool            `json:"has_kanji"`
	Segments     json.RawMessage `json:"segments"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type listResponse struct {
	Data       []documentResponse `json:"data"`
	Pagination paginationMeta     `json:"pagination"`
}

func toDocumentResponse(d db.Document) documentResponse {
	segs := json.RawMessage(d.Segments)
	if len(segs) == 0 {
		segs = json.RawMessage("[]")
	}
	return documentResponse{
		ID:           d.ID,
		Raw:          d.Raw,
		Kanji:        d.Kanji,
		Kana:         d.Kana,
		SegmentCount: d.SegmentCount,
		HasKanji:     d.HasKanji,
		Segments:     segs,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	total, err := h.repo.CountDocuments(r.Context(), query)
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting documents", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var docs []db.Document
	if query != "" {
		docs, err = h.repo.SearchDocuments(r.Context(), db.SearchDocumentsParams{
			Query:  query,
			Limit:  int32(limit),
			Offset: int32(offset),
		})
	} else {
		docs, err = h.repo.ListDocuments(r.Context(), db.ListDocumentsParams{
			Limit:  int32(limit),
			Offset: int32(offset),
		})
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing documents", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data: lo.Map(docs, func(d db.Document, _ int) documentResponse {
			return toDocumentResponse(d)
		}),
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	doc, err := h.repo.GetDocument(r.Context(), id)
	if err != nil {
		if db.IsNoRows(err) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.log.ErrorContext(r.Context(), "getting document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

type createDocumentRequest struct {
	Raw       string `json:"raw"`
	Normalize bool   `json:"normalize"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Raw) == "" {
		writeError(w, http.StatusBadRequest, "raw is required")
		return
	}

	res := ingest.ParseOne(req.Raw, ingest.Options{Normalize: req.Normalize})
	if res.Err != nil {
		metrics.DocumentSubmissions.WithLabelValues("invalid").Inc()
		writeParseError(w, res, req.Raw)
		return
	}

	params, err := ingest.CreateParams(res)
	if err != nil {
		h.log.ErrorContext(r.Context(), "building document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	doc, err := h.repo.CreateDocument(r.Context(), params)
	if err != nil {
		if db.IsDuplicate(err) {
			metrics.DocumentSubmissions.WithLabelValues("duplicate").Inc()
			writeError(w, http.StatusConflict, "document already exists")
			return
		}
		h.log.ErrorContext(r.Context(), "creating document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.DocumentSubmissions.WithLabelValues("created").Inc()
	h.log.InfoContext(r.Context(), "document created", "id", doc.ID, "segments", doc.SegmentCount)
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	n, err := h.repo.DeleteDocument(r.Context(), id)
	if err != nil {
		h.log.ErrorContext(r.Context(), "deleting document", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importRequest struct {
	Lines     []string `json:"lines"`
	Normalize bool     `json:"normalize"`
	Fix       bool     `json:"fix"`
	Merge     bool     `json:"merge"`
	Lossy     bool     `json:"lossy"`
}

// Import enqueues a batch of lines to be stored asynchronously.
func (h *DocumentHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "imports require the PostgreSQL backend")
		return
	}

	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	lines := lo.Compact(lo.Map(req.Lines, func(l string, _ int) string { return strings.TrimSpace(l) }))
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "lines are required")
		return
	}
	if len(lines) > maxBatchLines {
		writeError(w, http.StatusBadRequest, "too many lines")
		return
	}

	res, err := h.jobs.Insert(r.Context(), jobs.ImportDocumentsArgs{
		Lines:     lines,
		Normalize: req.Normalize,
		Fix:       req.Fix,
		Merge:     req.Merge,
		Lossy:     req.Lossy,
	}, nil)
	if err != nil {
		h.log.ErrorContext(r.Context(), "enqueuing import job", "lines", len(lines), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.InfoContext(r.Context(), "import job enqueued", "lines", len(lines))
	resp := map[string]any{"status": "queued"}
	if res != nil && res.Job != nil {
		resp["job_id"] = res.Job.ID
		resp["duplicate"] = res.UniqueSkippedAsDuplicate
	}
	writeJSON(w, http.StatusAccepted, resp)
}
