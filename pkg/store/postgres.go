package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

const defaultTable = "randlist_blobs"

// PostgresStore keeps each blob in one row of a bytea table, created on
// first use.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore opens a pool on cfg.URL and makes sure the table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "postgres store needs a url")
	}
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}

	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "open postgres pool")
	}
	s := &PostgresStore{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        text PRIMARY KEY,
		data       bytea NOT NULL,
		sha256     text NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create table %s", s.table)
	}
	return nil
}

// Get selects the row for key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT data FROM %s WHERE key = $1`, s.table), key)
		return pgError(row.Scan(&data))
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "postgres get %s", key)
	}
	return data, nil
}

// Put upserts the row for key.
func (s *PostgresStore) Put(ctx context.Context, key string, data []byte) error {
	if err := errs.ValidateKey(key); err != nil {
		return err
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (key, data, sha256, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data, sha256 = EXCLUDED.sha256, updated_at = now()`, s.table)
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.pool.Exec(ctx, stmt, key, data, Hash(data))
		return pgError(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "postgres put %s", key)
	}
	return nil
}

// Delete removes the row for key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table), key)
		return pgError(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "postgres delete %s", key)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func pgError(err error) error {
	if err != nil && (pgconn.SafeToRetry(err) || pgconn.Timeout(err)) {
		return Retryable(err)
	}
	return err
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
