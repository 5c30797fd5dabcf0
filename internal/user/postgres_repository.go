package user

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

const userColumns = `id, twitch_id, username, display_name, avatar_url, email, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.TwitchID, &u.Username, &u.DisplayName,
		&u.AvatarURL, &u.Email, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID retrieves a single user by its UUID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// FindByTwitchID retrieves a single user by provider id.
func (r *PostgresRepository) FindByTwitchID(ctx context.Context, twitchID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE twitch_id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, twitchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user by twitch id: %w", err)
	}
	return u, nil
}

// Create inserts a new user from provider info.
func (r *PostgresRepository) Create(ctx context.Context, info ProviderInfo) (*User, error) {
	query := `
		INSERT INTO users (twitch_id, username, display_name, avatar_url, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query,
		info.TwitchID, info.Username, info.DisplayName, info.AvatarURL, info.Email,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return nil, ErrDuplicateTwitchID
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// UpdateProviderInfo refreshes the provider-sourced fields of the user
// identified by info.TwitchID.
func (r *PostgresRepository) UpdateProviderInfo(ctx context.Context, info ProviderInfo) (*User, error) {
	query := `
		UPDATE users
		SET username = $2, display_name = $3, avatar_url = $4, email = $5, updated_at = NOW()
		WHERE twitch_id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query,
		info.TwitchID, info.Username, info.DisplayName, info.AvatarURL, info.Email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

// Search returns up to SearchLimit users whose username or display name
// contains query, excluding excludeID.
func (r *PostgresRepository) Search(ctx context.Context, query string, excludeID uuid.UUID) ([]User, error) {
	sql := `
		SELECT ` + userColumns + `
		FROM users
		WHERE (username ILIKE $1 OR display_name ILIKE $1) AND id <> $2
		ORDER BY username ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, sql, "%"+escapeLike(query)+"%", excludeID, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
