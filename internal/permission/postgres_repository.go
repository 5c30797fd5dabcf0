package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharedlists/sharedlists/internal/database"
	"github.com/sharedlists/sharedlists/internal/page"
)

const permissionColumns = `id, page_id, user_id, can_edit, granted_by, created_at`

const withUserQuery = `
	SELECT p.id, p.page_id, p.user_id, p.can_edit, p.granted_by, p.created_at,
	       u.id, u.twitch_id, u.username, u.display_name, u.avatar_url, u.email, u.created_at, u.updated_at
	FROM page_permissions p
	JOIN users u ON u.id = p.user_id`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanPermission(row pgx.Row) (*Permission, error) {
	var p Permission
	if err := row.Scan(&p.ID, &p.PageID, &p.UserID, &p.CanEdit, &p.GrantedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanWithUser(row pgx.Row) (*WithUser, error) {
	var w WithUser
	err := row.Scan(
		&w.ID, &w.PageID, &w.UserID, &w.CanEdit, &w.GrantedBy, &w.CreatedAt,
		&w.User.ID, &w.User.TwitchID, &w.User.Username, &w.User.DisplayName,
		&w.User.AvatarURL, &w.User.Email, &w.User.CreatedAt, &w.User.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Find returns the permission row for a (page, user) pair.
func (r *PostgresRepository) Find(ctx context.Context, pageID, userID uuid.UUID) (*Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM page_permissions WHERE page_id = $1 AND user_id = $2`

	p, err := scanPermission(r.pool.QueryRow(ctx, query, pageID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("querying permission: %w", err)
	}
	return p, nil
}

// Create inserts a permission row. The unique (page_id, user_id) constraint
// turns a concurrent duplicate grant into ErrPermissionExists.
func (r *PostgresRepository) Create(ctx context.Context, p *Permission) error {
	query := `
		INSERT INTO page_permissions (page_id, user_id, can_edit, granted_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, p.PageID, p.UserID, p.CanEdit, p.GrantedBy).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case database.UniqueViolation:
				return ErrPermissionExists
			case database.ForeignKeyViolation:
				return ErrUnknownReference
			}
		}
		return fmt.Errorf("inserting permission: %w", err)
	}
	return nil
}

// UpdateCanEdit changes the edit flag of a permission on pageID.
func (r *PostgresRepository) UpdateCanEdit(ctx context.Context, pageID, id uuid.UUID, canEdit bool) (*Permission, error) {
	query := `
		UPDATE page_permissions SET can_edit = $3
		WHERE id = $1 AND page_id = $2
		RETURNING ` + permissionColumns

	p, err := scanPermission(r.pool.QueryRow(ctx, query, id, pageID, canEdit))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("updating permission: %w", err)
	}
	return p, nil
}

// Delete removes a permission on pageID. Deleting a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, pageID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM page_permissions WHERE id = $1 AND page_id = $2`, id, pageID)
	if err != nil {
		return fmt.Errorf("deleting permission: %w", err)
	}
	return nil
}

// GetWithUser returns one permission on pageID joined with its grantee.
func (r *PostgresRepository) GetWithUser(ctx context.Context, pageID, id uuid.UUID) (*WithUser, error) {
	w, err := scanWithUser(r.pool.QueryRow(ctx, withUserQuery+` WHERE p.id = $1 AND p.page_id = $2`, id, pageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("querying permission: %w", err)
	}
	return w, nil
}

// ListByPage returns every permission on a page with its grantee, newest first.
func (r *PostgresRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]WithUser, error) {
	rows, err := r.pool.Query(ctx, withUserQuery+` WHERE p.page_id = $1 ORDER BY p.created_at DESC`, pageID)
	if err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}
	defer rows.Close()

	perms := []WithUser{}
	for rows.Next() {
		w, err := scanWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning permission row: %w", err)
		}
		perms = append(perms, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permission rows: %w", err)
	}
	return perms, nil
}

// ListSharedWithUser returns the pages a user holds a permission on, most
// recently shared first.
func (r *PostgresRepository) ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]SharedPage, error) {
	query := `
		SELECT pg.id, pg.title, pg.description, pg.creator_id, pg.public_slug, pg.created_at, pg.updated_at,
		       p.can_edit
		FROM page_permissions p
		JOIN pages pg ON pg.id = p.page_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing shared pages: %w", err)
	}
	defer rows.Close()

	shared := []SharedPage{}
	for rows.Next() {
		var canEdit bool
		pg, err := page.Scan(rows, &canEdit)
		if err != nil {
			return nil, fmt.Errorf("scanning shared page row: %w", err)
		}
		shared = append(shared, SharedPage{Page: *pg, CanEdit: canEdit})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shared page rows: %w", err)
	}
	return shared, nil
}
