package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogcms/internal/models"
)

type ArticleSQLite struct {
	db *sql.DB
}

func NewArticleSQLite(db *sql.DB) *ArticleSQLite { return &ArticleSQLite{db: db} }

var _ Articles = (*ArticleSQLite)(nil)

const (
	selectArticlesSQL = `
		SELECT a.id, a.title, a.content, a.user_id, a.image_url, a.is_published, a.created_at, a.updated_at, u.username
		FROM articles a
		JOIN users u ON a.user_id = u.id
		WHERE a.is_published = 1
		ORDER BY a.created_at DESC
		LIMIT ? OFFSET ?
	`

	countArticlesSQL = `SELECT COUNT(*) FROM articles WHERE is_published = 1`

	selectArticleByIDSQL = `
		SELECT a.id, a.title, a.content, a.user_id, a.image_url, a.is_published, a.created_at, a.updated_at, u.username
		FROM articles a
		JOIN users u ON a.user_id = u.id
		WHERE a.id = ?
	`

	insertArticleSQL = `
		INSERT INTO articles (title, content, user_id, image_url, is_published, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	updateArticleSQL = `
		UPDATE articles SET title = ?, content = ?, image_url = ?, updated_at = ? WHERE id = ?
	`

	deleteArticleSQL = `DELETE FROM articles WHERE id = ?`
)

// SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS"
const sqliteTimeLayout = "2006-01-02 15:04:05"

// scanArticle reads one joined row into an Article, mapping NULL image_url/updated_at.
func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	var (
		a         models.Article
		imageURL  sql.NullString
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.AuthorID,
		&imageURL,
		&a.IsPublished,
		&a.CreatedAt,
		&updatedAt,
		&a.AuthorName,
	); err != nil {
		return nil, err
	}
	a.ImageURL = imageURL.String
	a.CreatedAt = a.CreatedAt.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		a.UpdatedAt = &t
	}
	return &a, nil
}

// nullableString maps "" to NULL for storage.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns one page of published articles, newest first, with author names joined.
func (r *ArticleSQLite) List(ctx context.Context, limit, offset int) ([]models.Article, error) {
	rows, err := r.db.QueryContext(ctx, selectArticlesSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of published articles.
func (r *ArticleSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countArticlesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// GetByID fetches one article. Returns (nil, nil) if not found.
func (r *ArticleSQLite) GetByID(ctx context.Context, id int) (*models.Article, error) {
	a, err := scanArticle(r.db.QueryRowContext(ctx, selectArticleByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select article id=%d: %w", id, err)
	}
	return a, nil
}

// Create inserts a new article and returns its ID. CreatedAt is set if zero.
func (r *ArticleSQLite) Create(ctx context.Context, a models.Article) (int, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, insertArticleSQL,
		a.Title,
		a.Content,
		a.AuthorID,
		nullableString(a.ImageURL),
		a.IsPublished,
		a.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert article %q: %w", a.Title, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for article %q: %w", a.Title, err)
	}
	return int(lastID), nil
}

// Update overwrites the mutable columns of an article row.
func (r *ArticleSQLite) Update(ctx context.Context, a models.Article) error {
	var updatedAt any
	if a.UpdatedAt != nil {
		updatedAt = a.UpdatedAt.UTC().Format(sqliteTimeLayout)
	}
	res, err := r.db.ExecContext(ctx, updateArticleSQL,
		a.Title,
		a.Content,
		nullableString(a.ImageURL),
		updatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update article id=%d: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for article id=%d: %w", a.ID, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an article row.
func (r *ArticleSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteArticleSQL, id)
	if err != nil {
		return fmt.Errorf("delete article id=%d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for article id=%d: %w", id, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
