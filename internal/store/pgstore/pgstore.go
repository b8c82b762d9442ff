// Package pgstore implements the Store interface on PostgreSQL via pgx.
//
// Uniqueness and referential integrity are delegated to the database
// schema; constraint failures are translated to the store sentinel errors.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/graphfeed/graphfeed/internal/eventbus"
	"github.com/graphfeed/graphfeed/internal/events"
	"github.com/graphfeed/graphfeed/internal/store"
)

// Store is a PostgreSQL-backed store.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool for the given URL and verifies it with a
// ping.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { s.pool.Close() }

const schemaDDL = `
CREATE TABLE IF NOT EXISTS member_types (
    id text PRIMARY KEY,
    discount double precision NOT NULL,
    posts_limit_per_month integer NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY,
    name text NOT NULL,
    balance double precision NOT NULL DEFAULT 0,
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS posts (
    id uuid PRIMARY KEY,
    title text NOT NULL,
    content text NOT NULL,
    author_id uuid NOT NULL REFERENCES users(id),
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS profiles (
    id uuid PRIMARY KEY,
    is_male boolean NOT NULL,
    year_of_birth integer NOT NULL,
    user_id uuid NOT NULL UNIQUE REFERENCES users(id),
    member_type_id text NOT NULL REFERENCES member_types(id)
);
CREATE TABLE IF NOT EXISTS subscriptions (
    subscriber_id uuid NOT NULL REFERENCES users(id),
    author_id uuid NOT NULL REFERENCES users(id),
    created_at timestamptz NOT NULL DEFAULT now(),
    PRIMARY KEY (subscriber_id, author_id),
    CHECK (subscriber_id <> author_id)
);
CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts (author_id);
CREATE INDEX IF NOT EXISTS subscriptions_author_id_idx ON subscriptions (author_id);
`

// Bootstrap creates the tables and seeds the member type enumeration.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO member_types (id, discount, posts_limit_per_month)
		VALUES ($1, 0.1, 20), ($2, 0.25, 100)
		ON CONFLICT (id) DO NOTHING`,
		store.MemberTypeBasic, store.MemberTypeBusiness)
	if err != nil {
		return fmt.Errorf("failed to seed member types: %w", err)
	}
	return nil
}

func (s *Store) Users() store.UserRepo             { return &userRepo{s} }
func (s *Store) Posts() store.PostRepo             { return &postRepo{s} }
func (s *Store) Profiles() store.ProfileRepo       { return &profileRepo{s} }
func (s *Store) MemberTypes() store.MemberTypeRepo { return &memberTypeRepo{s} }

// mapError translates pgx errors into the store sentinel taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", store.ErrForeignKey, pgErr.ConstraintName)
		case "23514": // check_violation (self-subscription)
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

func emit(ctx context.Context, kind, op string, keys int, err error, start time.Time) {
	eventbus.Publish(ctx, events.StoreQuery{
		Kind:     kind,
		Op:       op,
		Keys:     keys,
		Err:      err,
		Duration: time.Since(start),
	})
}
