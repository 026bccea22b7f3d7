package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jusunglee/furigana/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements db.Repository using SQLite
type Repository struct {
	db *sql.DB
	q  dbtx
	tx bool
}

// New creates a new SQLite repository
func New(ctx context.Context, dbPath string) (*Repository, error) {
	// Strip sqlite:// prefix if present
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	inMemory := dbPath == ":memory:"
	isNew := inMemory
	if !inMemory {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			isNew = true
		}
	}

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	// Every connection to :memory: opens a separate database.
	if inMemory {
		sqliteDB.SetMaxOpenConns(1)
	}

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if isNew && !inMemory {
		slog.Info("created new SQLite database", "path", dbPath)
	}

	return &Repository{db: sqliteDB, q: sqliteDB}, nil
}

func (r *Repository) Close() error {
	if r.tx {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	// Already inside a transaction: join it.
	if r.tx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{db: r.db, q: tx, tx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const documentColumns = `id, raw, kanji, kana, segments, segment_count, has_kanji, created_at, updated_at`

func (r *Repository) CreateDocument(ctx context.Context, arg db.CreateDocumentParams) (db.Document, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO documents (raw, kanji, kana, segments, segment_count, has_kanji)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (raw) DO NOTHING
	`, arg.Raw, arg.Kanji, arg.Kana, string(arg.Segments), arg.SegmentCount, arg.HasKanji)
	if err != nil {
		return db.Document{}, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return db.Document{}, err
	}
	if rowsAffected == 0 {
		return db.Document{}, db.ErrDuplicate
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.Document{}, err
	}

	return r.GetDocument(ctx, id)
}

func (r *Repository) GetDocument(ctx context.Context, id int64) (db.Document, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

func (r *Repository) GetDocumentByRaw(ctx context.Context, raw string) (db.Document, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE raw = ?`, raw)
	return scanDocument(row)
}

func (r *Repository) ListDocuments(ctx context.Context, arg db.ListDocumentsParams) ([]db.Document, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *Repository) SearchDocuments(ctx context.Context, arg db.SearchDocumentsParams) ([]db.Document, error) {
	pattern := db.LikePattern(arg.Query)
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE kanji LIKE ? ESCAPE '\' OR kana LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, pattern, pattern, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *Repository) CountDocuments(ctx context.Context, query string) (int64, error) {
	var count int64
	var err error
	if query == "" {
		err = r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	} else {
		pattern := db.LikePattern(query)
		err = r.q.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM documents
			WHERE kanji LIKE ? ESCAPE '\' OR kana LIKE ? ESCAPE '\'
		`, pattern, pattern).Scan(&count)
	}
	return count, err
}

func (r *Repository) ListAllDocuments(ctx context.Context) ([]db.Document, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *Repository) UpdateDocument(ctx context.Context, arg db.UpdateDocumentParams) (db.Document, error) {
	result, err := r.q.ExecContext(ctx, `
		UPDATE documents
		SET kanji = ?, kana = ?, segments = ?, segment_count = ?, has_kanji = ?,
		    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?
	`, arg.Kanji, arg.Kana, string(arg.Segments), arg.SegmentCount, arg.HasKanji, arg.ID)
	if err != nil {
		return db.Document{}, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return db.Document{}, err
	}
	if n == 0 {
		return db.Document{}, db.ErrNoRows
	}
	return r.GetDocument(ctx, arg.ID)
}

func (r *Repository) DeleteDocument(ctx context.Context, id int64) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Helper functions for scanning rows

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentRow(row rowScanner) (db.Document, error) {
	var d db.Document
	var segments, createdAtStr, updatedAtStr string
	err := row.Scan(&d.ID, &d.Raw, &d.Kanji, &d.Kana, &segments, &d.SegmentCount, &d.HasKanji, &createdAtStr, &updatedAtStr)
	if err != nil {
		return db.Document{}, err
	}
	d.Segments = []byte(segments)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return d, nil
}

func scanDocument(row *sql.Row) (db.Document, error) {
	d, err := scanDocumentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Document{}, db.ErrNoRows
	}
	return d, err
}

func scanDocuments(rows *sql.Rows) ([]db.Document, error) {
	var docs []db.Document
	for rows.Next() {
		d, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
