package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

const uniqueViolation = "23505"

// PostRepository is the relational catalog of ingested posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PostRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across replicas.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS brand_posts (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	sections JSONB NOT NULL DEFAULT '{}'::jsonb,
	title TEXT NOT NULL,
	brand_values TEXT NOT NULL DEFAULT '',
	word_count INTEGER NOT NULL DEFAULT 0,
	has_olfactory_pyramid BOOLEAN NOT NULL DEFAULT FALSE,
	post_name TEXT NOT NULL,
	date_added TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_brand_posts_date_added ON brand_posts(date_added DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	sectionsJSON, err := json.Marshal(post.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	meta := post.Metadata
	_, err = r.db.ExecContext(ctx, `
INSERT INTO brand_posts (
	id, content, sections, title, brand_values, word_count, has_olfactory_pyramid, post_name, date_added
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		post.ID, post.Content, sectionsJSON, meta.Title, meta.BrandValues, meta.WordCount,
		meta.HasOlfactoryPyramid, meta.PostName, meta.DateAdded,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapError(domain.ErrDuplicateID, "insert post", err)
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, content, sections, title, brand_values, word_count, has_olfactory_pyramid, post_name, date_added
FROM brand_posts
WHERE id = $1
`, id)

	var (
		post        domain.Post
		sectionsRaw []byte
	)
	meta := &post.Metadata
	err := row.Scan(
		&post.ID, &post.Content, &sectionsRaw, &meta.Title, &meta.BrandValues, &meta.WordCount,
		&meta.HasOlfactoryPyramid, &meta.PostName, &meta.DateAdded,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPostNotFound, "get post", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	post.Sections = domain.NewSections()
	if len(sectionsRaw) > 0 {
		if err := json.Unmarshal(sectionsRaw, &post.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal sections: %w", err)
		}
	}
	meta.PostID = post.ID
	return &post, nil
}
