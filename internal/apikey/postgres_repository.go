package apikey

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

const tokenHashConstraint = "api_keys_token_hash_key"

const keyColumns = `id, user_id, name, token_hash, scopes, revoked, created_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanKey(row pgx.Row) (*APIKey, error) {
	var k APIKey
	var scopes string
	if err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.TokenHash, &scopes, &k.Revoked, &k.CreatedAt); err != nil {
		return nil, err
	}
	k.Scopes = DecodeScopes(scopes)
	return &k, nil
}

// Create inserts a new key and fills in its ID and CreatedAt. A collision on
// the token hash yields ErrDuplicateTokenHash and leaves no row behind.
func (r *PostgresRepository) Create(ctx context.Context, k *APIKey) error {
	query := `
		INSERT INTO api_keys (user_id, name, token_hash, scopes, revoked)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		k.UserID, k.Name, k.TokenHash, EncodeScopes(k.Scopes),
	).Scan(&k.ID, &k.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation && pgErr.ConstraintName == tokenHashConstraint {
			return ErrDuplicateTokenHash
		}
		return fmt.Errorf("inserting api key: %w", err)
	}
	k.Revoked = false
	return nil
}

// FindActiveByTokenHash looks up a non-revoked key by its hash.
func (r *PostgresRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string) (*APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE token_hash = $1 AND revoked = FALSE`

	k, err := scanKey(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("querying api key by hash: %w", err)
	}
	return k, nil
}

// ListByUser returns all keys of a user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	defer rows.Close()

	keys := []APIKey{}
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning api key row: %w", err)
		}
		keys = append(keys, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api key rows: %w", err)
	}
	return keys, nil
}

// Revoke flips revoked on a non-revoked key owned by userID. It reports
// whether a row changed.
func (r *PostgresRepository) Revoke(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `UPDATE api_keys SET revoked = TRUE WHERE id = $1 AND user_id = $2 AND revoked = FALSE`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("revoking api key: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes a key owned by userID. It reports whether a row was removed.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting api key: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
