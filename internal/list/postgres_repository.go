package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listColumns = `id, page_id, title, position, created_at, updated_at`

const itemColumns = `id, list_id, content, checked, position, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanList(row pgx.Row) (*List, error) {
	var l List
	if err := row.Scan(&l.ID, &l.PageID, &l.Title, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.ListID, &it.Content, &it.Checked, &it.Position, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateList inserts a list under l.PageID.
func (r *PostgresRepository) CreateList(ctx context.Context, l *List, position *int) error {
	query := `
		INSERT INTO lists (page_id, title, position)
		VALUES ($1, $2, COALESCE($3::integer,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM lists WHERE page_id = $1)))
		RETURNING id, position, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, l.PageID, l.Title, position).
		Scan(&l.ID, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting list: %w", err)
	}
	return nil
}

// GetList retrieves a single list by its UUID.
func (r *PostgresRepository) GetList(ctx context.Context, id uuid.UUID) (*List, error) {
	l, err := scanList(r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("querying list: %w", err)
	}
	return l, nil
}

// ListsByPage returns the lists of a page in display order.
func (r *PostgresRepository) ListsByPage(ctx context.Context, pageID uuid.UUID) ([]List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE page_id = $1 ORDER BY position ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	defer rows.Close()

	lists := []List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning list row: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating list rows: %w", err)
	}
	return lists, nil
}

// UpdateList writes the title and position of l.
func (r *PostgresRepository) UpdateList(ctx context.Context, l *List) error {
	query := `
		UPDATE lists SET title = $2, position = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, l.ID, l.Title, l.Position).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListNotFound
		}
		return fmt.Errorf("updating list: %w", err)
	}
	return nil
}

// DeleteList removes a list and, by cascade, its items.
func (r *PostgresRepository) DeleteList(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrListNotFound
	}
	return nil
}

// PageIDForList resolves the page owning a list.
func (r *PostgresRepository) PageIDForList(ctx context.Context, listID uuid.UUID) (uuid.UUID, error) {
	var pageID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT page_id FROM lists WHERE id = $1`, listID).Scan(&pageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrListNotFound
		}
		return uuid.Nil, fmt.Errorf("resolving page for list: %w", err)
	}
	return pageID, nil
}

// CreateItem inserts an item under it.ListID.
func (r *PostgresRepository) CreateItem(ctx context.Context, it *Item, position *int) error {
	query := `
		INSERT INTO list_items (list_id, content, position)
		VALUES ($1, $2, COALESCE($3::integer,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM list_items WHERE list_id = $1)))
		RETURNING id, checked, position, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, it.ListID, it.Content, position).
		Scan(&it.ID, &it.Checked, &it.Position, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// GetItem retrieves a single item by its UUID.
func (r *PostgresRepository) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM list_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return it, nil
}

// ItemsByList returns the items of a list in display order.
func (r *PostgresRepository) ItemsByList(ctx context.Context, listID uuid.UUID) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE list_id = $1 ORDER BY position ASC, created_at ASC`
	return r.queryItems(ctx, query, listID)
}

// ItemsByPage returns the items of every list on a page, each list's items
// in display order.
func (r *PostgresRepository) ItemsByPage(ctx context.Context, pageID uuid.UUID) ([]Item, error) {
	query := `
		SELECT i.id, i.list_id, i.content, i.checked, i.position, i.created_at, i.updated_at
		FROM list_items i
		JOIN lists l ON l.id = i.list_id
		WHERE l.page_id = $1
		ORDER BY i.list_id, i.position ASC, i.created_at ASC`
	return r.queryItems(ctx, query, pageID)
}

func (r *PostgresRepository) queryItems(ctx context.Context, query string, arg uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}
	return items, nil
}

// UpdateItem writes the content, checked flag and position of it.
func (r *PostgresRepository) UpdateItem(ctx context.Context, it *Item) error {
	query := `
		UPDATE list_items SET content = $2, checked = $3, position = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, it.ID, it.Content, it.Checked, it.Position).Scan(&it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item.
func (r *PostgresRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM list_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
