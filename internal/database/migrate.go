package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/BurntSushi/migration"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

const sqlDriverName = "pgx"

// ErrNoMigrations is returned when the migration source holds no *.sql files.
var ErrNoMigrations = errors.New("no migrations found")

// Migrators turns every *.sql file in fsys into a migration. Files run in
// lexical order and a file's position in that order is its schema version,
// so existing files must never be renamed or reordered.
func Migrators(fsys fs.FS) ([]migration.Migrator, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoMigrations
	}
	sort.Strings(names)

	migs := make([]migration.Migrator, 0, len(names))
	for i, name := range names {
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		migs = append(migs, sqlMigration(i+1, name, string(body)))
	}
	return migs, nil
}

func sqlMigration(version int, name, body string) migration.Migrator {
	return func(tx migration.LimitedTx) error {
		slog.Info("running migration", "version", version, "file", name)
		if _, err := tx.Exec(body); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		return nil
	}
}

// Migrate applies the pending migrations in fsys to the database behind
// pool. The migration library drives its own short-lived database/sql
// handle, opened through the pgx driver with the pool's connection string.
func Migrate(pool *pgxpool.Pool, fsys fs.FS) error {
	migs, err := Migrators(fsys)
	if err != nil {
		return err
	}

	sqlDB, err := migration.Open(sqlDriverName, pool.Config().ConnString(), migs)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return sqlDB.Close()
}
