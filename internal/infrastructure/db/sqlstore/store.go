package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL backend behind a Store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Config holds connection settings for the relational store.
type Config struct {
	Driver       string
	URL          string
	SQLitePath   string
	MaxConns     int32
	ConnLifetime time.Duration
}

// Store is the shared relational handle used by the mission and account
// repositories.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	pool    *pgxpool.Pool
	// migrateURL is the golang-migrate database URL for this store.
	migrateURL string
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch Dialect(strings.ToLower(cfg.Driver)) {
	case DialectPostgres:
		return OpenPostgres(ctx, cfg)
	case DialectSQLite, "sqlite3":
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenPostgres builds a pgx pool and exposes it to sqlx through the pgx
// database/sql adapter.
func OpenPostgres(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	return &Store{
		db:         db,
		dialect:    DialectPostgres,
		pool:       pool,
		migrateURL: pgx5URL(cfg.URL),
	}, nil
}

// OpenSQLite opens a single-connection SQLite database. Transactions start
// with BEGIN IMMEDIATE so the write lock is taken before the first read.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{
		db:         db,
		dialect:    DialectSQLite,
		migrateURL: "sqlite3://" + path,
	}, nil
}

func (s *Store) Dialect() Dialect { return s.dialect }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle and, for Postgres, the pool behind it.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// lockClause is appended to a single-mission select that must hold a row
// lock. SQLite has no row locks; its transactions already hold the write lock.
func (s *Store) lockClause() string {
	if s.dialect == DialectPostgres {
		return " FOR UPDATE OF m"
	}
	return ""
}

func pgx5URL(url string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(url, scheme) {
			return "pgx5://" + strings.TrimPrefix(url, scheme)
		}
	}
	return url
}
