package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/jusunglee/furigana/internal/db"
)

// CreateParams turns a successful parse into the fields stored for a document.
func CreateParams(res Result) (db.CreateDocumentParams, error) {
	if res.Err != nil {
		return db.CreateDocumentParams{}, res.Err
	}
	segs, err := json.Marshal(res.Segments)
	if err != nil {
		return db.CreateDocumentParams{}, fmt.Errorf("encoding segments: %w", err)
	}
	return db.CreateDocumentParams{
		Raw:          res.Furigana.Raw(),
		Kanji:        res.Kanji,
		Kana:         res.Kana,
		Segments:     segs,
		SegmentCount: int32(len(res.Segments)),
		HasKanji:     res.Segments.HasKanji(),
	}, nil
}

// UpdateParams recomputes the derived fields for an existing document.
func UpdateParams(id int64, res Result) (db.UpdateDocumentParams, error) {
	p, err := CreateParams(res)
	if err != nil {
		return db.UpdateDocumentParams{}, err
	}
	return db.UpdateDocumentParams{
		ID:           id,
		Kanji:        p.Kanji,
		Kana:         p.Kana,
		Segments:     p.Segments,
		SegmentCount: p.SegmentCount,
		HasKanji:     p.HasKanji,
	}, nil
}

// Stale reports whether doc's derived fields differ from p.
func Stale(doc db.Document, p db.UpdateDocumentParams) bool {
	return doc.Kanji != p.Kanji ||
		doc.Kana != p.Kana ||
		doc.SegmentCount != p.SegmentCount ||
		doc.HasKanji != p.HasKanji
}
