package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/furigana/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	q    querier
	tx   bool
}

// New creates a new PostgreSQL repository
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := newPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Repository{pool: pool, q: pool}, nil
}

// Migrate creates the schema if it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if !r.tx {
		r.pool.Close()
	}
	return nil
}

// Pool exposes the underlying pool for components that share it, such as the
// job queue driver.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) PoolStats() *pgxpool.Stat {
	return r.pool.Stat()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// If fn() panics, the normal err-check rollback below won't run.
	// recover() catches the panic so we can roll back the tx (releasing the db connection), then re-panic.
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	err = fn(&Repository{pool: r.pool, q: tx, tx: true})
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

const documentColumns = `id, raw, kanji, kana, segments, segment_count, has_kanji, created_at, updated_at`

func (r *Repository) CreateDocument(ctx context.Context, arg db.CreateDocumentParams) (db.Document, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO documents (raw, kanji, kana, segments, segment_count, has_kanji)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (raw) DO NOTHING
		RETURNING `+documentColumns,
		arg.Raw, arg.Kanji, arg.Kana, string(arg.Segments), arg.SegmentCount, arg.HasKanji)
	doc, err := scanDocument(row)
	if errors.Is(err, db.ErrNoRows) {
		return db.Document{}, db.ErrDuplicate
	}
	return doc, err
}

func (r *Repository) GetDocument(ctx context.Context, id int64) (db.Document, error) {
	row := r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (r *Repository) GetDocumentByRaw(ctx context.Context, raw string) (db.Document, error) {
	row := r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE raw = $1`, raw)
	return scanDocument(row)
}

func (r *Repository) ListDocuments(ctx context.Context, arg db.ListDocumentsParams) ([]db.Document, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func (r *Repository) SearchDocuments(ctx context.Context, arg db.SearchDocumentsParams) ([]db.Document, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE kanji LIKE $1 OR kana LIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, db.LikePattern(arg.Query), arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func (r *Repository) CountDocuments(ctx context.Context, query string) (int64, error) {
	var count int64
	var err error
	if query == "" {
		err = r.q.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	} else {
		err = r.q.QueryRow(ctx, `
			SELECT COUNT(*) FROM documents WHERE kanji LIKE $1 OR kana LIKE $1
		`, db.LikePattern(query)).Scan(&count)
	}
	return count, err
}

func (r *Repository) ListAllDocuments(ctx context.Context) ([]db.Document, error) {
	rows, err := r.q.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func (r *Repository) UpdateDocument(ctx context.Context, arg db.UpdateDocumentParams) (db.Document, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE documents
		SET kanji = $2, kana = $3, segments = $4, segment_count = $5, has_kanji = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+documentColumns,
		arg.ID, arg.Kanji, arg.Kana, string(arg.Segments), arg.SegmentCount, arg.HasKanji)
	return scanDocument(row)
}

func (r *Repository) DeleteDocument(ctx context.Context, id int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanDocumentRow(row pgx.Row) (db.Document, error) {
	var d db.Document
	var segments string
	err := row.Scan(&d.ID, &d.Raw, &d.Kanji, &d.Kana, &segments, &d.SegmentCount, &d.HasKanji, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return db.Document{}, err
	}
	d.Segments = []byte(segments)
	return d, nil
}

func scanDocument(row pgx.Row) (db.Document, error) {
	d, err := scanDocumentRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Document{}, db.ErrNoRows
	}
	return d, err
}

func collectDocuments(rows pgx.Rows) ([]db.Document, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Document, error) {
		return scanDocumentRow(row)
	})
}
