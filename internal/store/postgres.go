package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps slots as JSONB documents in planner_slots.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect parses databaseURL, tunes the pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// EnsureSchema applies the embedded postgres migrations. They are written
// with IF NOT EXISTS so re-running them is harmless.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	files, err := loadMigrations("postgres")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := s.pool.Exec(ctx, f.up); err != nil {
			return fmt.Errorf("exec migration %s: %w", f.name, err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, slot string) ([]byte, error) {
	var doc string
	err := s.pool.QueryRow(ctx,
		`SELECT doc::TEXT FROM planner_slots WHERE name = $1`, slot).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", slot, err)
	}
	return []byte(doc), nil
}

func (s *PostgresStore) Put(ctx context.Context, slot string, data []byte) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO planner_slots (name, doc, updated_at)
		 VALUES ($1, $2::JSONB, now())
		 ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		slot, string(data),
	)
	if err != nil {
		return fmt.Errorf("put slot %s: %w", slot, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
