package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const DefaultTable = "embedding_cache"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PostgresStore keeps entries in a pgvector column so they survive restarts
// and can be shared between replicas.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore connects to dsn and creates the cache table when missing.
func NewPostgresStore(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid cache table name %q", table)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, table: table}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			model      TEXT NOT NULL,
			embedding  vector NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, s.table),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate embedding cache: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		model     string
		raw       string
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT model, embedding::text, created_at FROM %s WHERE key = $1`, s.table),
		key,
	).Scan(&model, &raw, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read embedding %s: %w", key, err)
	}

	var vec pgvector.Vector
	if err := vec.Scan([]byte(raw)); err != nil {
		return Entry{}, false, fmt.Errorf("decode embedding %s: %w", key, err)
	}
	return Entry{Vector: vec.Slice(), Model: model, CreatedAt: createdAt}, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, entry Entry) error {
	value, err := pgvector.NewVector(entry.Vector).Value()
	if err != nil {
		return fmt.Errorf("encode embedding %s: %w", key, err)
	}

	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, model, embedding, created_at)
			VALUES ($1, $2, CAST($3::text AS vector), $4)
			ON CONFLICT (key) DO UPDATE
			SET model = EXCLUDED.model, embedding = EXCLUDED.embedding, created_at = EXCLUDED.created_at`, s.table),
		key, entry.Model, value, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store embedding %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table), key); err != nil {
		return fmt.Errorf("delete embedding %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
