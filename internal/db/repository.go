package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is returned when a document lookup, update or delete matches
// nothing.
var ErrNoRows = errors.New("no rows in result set")

// ErrDuplicate is returned by CreateDocument when the raw string is already
// stored. It wraps ErrNoRows since the insert produced no row.
var ErrDuplicate = fmt.Errorf("document already exists: %w", ErrNoRows)

// IsNoRows reports whether err means nothing matched, whichever driver
// produced it.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, pgx.ErrNoRows)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// Document is a stored furigana string together with the fields derived from
// parsing it. Segments holds the JSON encoded segment sequence.
type Document struct {
	ID           int64
	Raw          string
	Kanji        string
	Kana         string
	Segments     []byte
	SegmentCount int32
	HasKanji     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateDocumentParams struct {
	Raw          string
	Kanji        string
	Kana         string
	Segments     []byte
	SegmentCount int32
	HasKanji     bool
}

// UpdateDocumentParams rewrites the derived fields of a document. Raw is never
// changed after creation.
type UpdateDocumentParams struct {
	ID           int64
	Kanji        string
	Kana         string
	Segments     []byte
	SegmentCount int32
	HasKanji     bool
}

type ListDocumentsParams struct {
	Limit  int32
	Offset int32
}

type SearchDocumentsParams struct {
	Query  string
	Limit  int32
	Offset int32
}

// Repository defines the interface for database operations
type Repository interface {
	// Documents
	CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error)
	GetDocument(ctx context.Context, id int64) (Document, error)
	GetDocumentByRaw(ctx context.Context, raw string) (Document, error)
	ListDocuments(ctx context.Context, arg ListDocumentsParams) ([]Document, error)
	SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]Document, error)
	CountDocuments(ctx context.Context, query string) (int64, error)
	ListAllDocuments(ctx context.Context) ([]Document, error)
	UpdateDocument(ctx context.Context, arg UpdateDocumentParams) (Document, error)
	DeleteDocument(ctx context.Context, id int64) (int64, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Lifecycle
	Close() error
}

// LikePattern turns a search query into a LIKE pattern matching it as a
// substring. Wildcards in the query are escaped with '\'.
func LikePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}
