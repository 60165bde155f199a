package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTable = "records"

// PostgresStore keeps records in a single jsonb table keyed by
// (collection, key). Update serializes writers per key with a
// transaction-scoped advisory lock.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore connects, pings, and ensures the records table exists.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{pool: pool, table: defaultTable}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS ` + s.ident() + ` (
		collection TEXT NOT NULL,
		key        TEXT NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, key)
	)`
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	if err := checkKey(collection, key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data::text FROM `+s.ident()+` WHERE collection = $1 AND key = $2`,
		collection, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select record: %w", err)
	}
	return data, nil
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, collection, key string, data []byte) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.ident()+` (collection, key, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, key) DO NOTHING`,
		collection, key, string(data))
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, collection, key string) (bool, error) {
	if err := checkKey(collection, key); err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM `+s.ident()+` WHERE collection = $1 AND key = $2`, collection, key)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]Record, error) {
	if !validName(collection) {
		return nil, wrapInvalid("collection", collection)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT key, data::text FROM `+s.ident()+` WHERE collection = $1 ORDER BY key`, collection)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.Key, &r.Data)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return out, nil
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
			s.table+"/"+collection+"/"+key); err != nil {
			return fmt.Errorf("lock record: %w", err)
		}
		var current []byte
		err := tx.QueryRow(ctx,
			`SELECT data::text FROM `+s.ident()+` WHERE collection = $1 AND key = $2`,
			collection, key).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("select record: %w", err)
		}
		next, err := fn(current)
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+s.ident()+` (collection, key, data) VALUES ($1, $2, $3::jsonb)
			 ON CONFLICT (collection, key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			collection, key, string(next)); err != nil {
			return fmt.Errorf("upsert record: %w", err)
		}
		return nil
	})
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
