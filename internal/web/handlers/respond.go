package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jusunglee/furigana/internal/furigana"
	"github.com/jusunglee/furigana/internal/ingest"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type parseErrorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	Offset     int    `json:"offset"`
	// Normalized is the text Offset points into, set only when normalization
	// changed what the client sent.
	Normalized string `json:"normalized,omitempty"`
}

func newParseErrorResponse(res ingest.Result, sent string) parseErrorResponse {
	resp := parseErrorResponse{Error: res.Err.Error(), Kind: "invalid"}
	if res.Raw != sent {
		resp.Normalized = res.Raw
	}
	var perr *furigana.ParseError
	if errors.As(res.Err, &perr) {
		resp.Kind = perr.Kind.String()
		resp.Offset = perr.Offset
	}
	return resp
}

// writeParseError reports malformed furigana as 422 with its kind and offset.
func writeParseError(w http.ResponseWriter, res ingest.Result, sent string) {
	writeJSON(w, http.StatusUnprocessableEntity, newParseErrorResponse(res, sent))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
