// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// EntryStoreConfig controls the Postgres connection pool used for archived entries.
type EntryStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// EntryStore archives accepted quiz entries.
type EntryStore struct {
	pool  pool
	table string
}

// NewEntryStore connects to Postgres using the provided config.
func NewEntryStore(ctx context.Context, cfg EntryStoreConfig) (*EntryStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &EntryStore{pool: p, table: table}, nil
}

// NewEntryStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewEntryStoreWithPool(p pool, table string) (*EntryStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &EntryStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = "quiz_entries"
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *EntryStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the archive table when it does not exist.
func (s *EntryStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	image_url   TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	source      TEXT NOT NULL,
	accepted_at TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// RecordEntry inserts an accepted entry. A missing ID is filled with a UUIDv7.
func (s *EntryStore) RecordEntry(ctx context.Context, entry quiz.ArchivedEntry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("entry store is not configured")
	}
	if entry.Name == "" || entry.ImageURL == "" {
		return fmt.Errorf("entry name and image url are required")
	}
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate entry id: %w", err)
		}
		entry.ID = id.String()
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	image_url,
	strategy,
	source,
	accepted_at
) VALUES (
	$1,$2,$3,$4,$5,$6
)`, s.table)

	args := []any{
		entry.ID,
		entry.Name,
		entry.ImageURL,
		entry.Strategy,
		string(entry.Source),
		entry.AcceptedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// RecentEntries returns the newest archived entries first.
func (s *EntryStore) RecentEntries(ctx context.Context, limit int) ([]quiz.ArchivedEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`
SELECT id, name, image_url, strategy, source, accepted_at
FROM %s
ORDER BY accepted_at DESC
LIMIT $1`, s.table)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []quiz.ArchivedEntry
	for rows.Next() {
		var (
			e      quiz.ArchivedEntry
			source string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.ImageURL, &e.Strategy, &source, &e.AcceptedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Source = quiz.Source(source)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
