package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrWorkoutNotFound is returned when a workout does not exist or belongs to
// another user.
var ErrWorkoutNotFound = errors.New("workout not found")

// DB wraps a pgxpool.Pool and provides repository methods.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SchemaVersion is the migration state of the database after RunMigrations.
type SchemaVersion struct {
	Version uint
	Applied bool // false when the schema was already current
}

// RunMigrations brings the schema up to the newest migration under dir.
// A database left dirty by an interrupted migration is reported, not forced.
func RunMigrations(dsn, dir string) (SchemaVersion, error) {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("opening migrations in %s: %w", dir, err)
	}
	defer m.Close()

	var sv SchemaVersion
	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return SchemaVersion{}, fmt.Errorf("migrating up: %w", err)
	default:
		sv.Applied = true
	}

	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return SchemaVersion{}, fmt.Errorf("schema version %d is dirty", v)
	}
	sv.Version = v
	return sv, nil
}
