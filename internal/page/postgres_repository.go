package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharedlists/sharedlists/internal/database"
)

// Columns selected by every page query, in scanPage order.
const Columns = `id, title, description, creator_id, public_slug, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Scan reads a page in Columns order. Other packages joining on pages use it.
func Scan(row pgx.Row, extra ...any) (*Page, error) {
	var p Page
	dest := append([]any{&p.ID, &p.Title, &p.Description, &p.CreatorID, &p.PublicSlug, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new page and fills in its generated fields.
func (r *PostgresRepository) Create(ctx context.Context, p *Page) error {
	query := `
		INSERT INTO pages (title, description, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id, public_slug, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.Title, p.Description, p.CreatorID).
		Scan(&p.ID, &p.PublicSlug, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting page: %w", err)
	}
	return nil
}

// GetByID retrieves a single page by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	p, err := Scan(r.pool.QueryRow(ctx, `SELECT `+Columns+` FROM pages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("querying page: %w", err)
	}
	return p, nil
}

// GetByPublicSlug retrieves the page exposed under slug.
func (r *PostgresRepository) GetByPublicSlug(ctx context.Context, slug string) (*Page, error) {
	p, err := Scan(r.pool.QueryRow(ctx, `SELECT `+Columns+` FROM pages WHERE public_slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("querying page by slug: %w", err)
	}
	return p, nil
}

// ListByCreator returns the pages created by a user, newest first.
func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Page, error) {
	query := `SELECT ` + Columns + ` FROM pages WHERE creator_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		p, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		pages = append(pages, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating page rows: %w", err)
	}
	return pages, nil
}

// Update writes the title and description of p and refreshes UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, p *Page) error {
	query := `
		UPDATE pages SET title = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Title, p.Description).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPageNotFound
		}
		return fmt.Errorf("updating page: %w", err)
	}
	return nil
}

// SetPublicSlug sets or, with a nil slug, clears the public slug.
func (r *PostgresRepository) SetPublicSlug(ctx context.Context, id uuid.UUID, slug *string) (*Page, error) {
	query := `
		UPDATE pages SET public_slug = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + Columns

	p, err := Scan(r.pool.QueryRow(ctx, query, id, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("setting public slug: %w", err)
	}
	return p, nil
}

// Delete removes a page. Lists, items and permissions cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPageNotFound
	}
	return nil
}
