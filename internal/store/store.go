// Package store persists sources, registered items and notice snapshots in
// SQLite.
//
// Every write touches one keyed row (or one snapshot append) and writes are
// serialized in-process, so concurrent scans never overwrite each other's
// source state.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/hazyhaar/recallwatch/idgen"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultSnapshotRetention is the number of snapshots kept across all sources.
const DefaultSnapshotRetention = 3

// MaxSnapshotText caps RawText and Markdown, in runes.
const MaxSnapshotText = 5000

// Store wraps a database handle.
type Store struct {
	DB        *sql.DB
	retention int
	newID     idgen.Generator
	now       func() time.Time
	writeMu   sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithRetention sets how many snapshots are kept. Values below 1 are ignored.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store. The schema must already be migrated.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		DB:        db,
		retention: DefaultSnapshotRetention,
		newID:     idgen.New,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("store: migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("store: goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Open migrates db and returns a Store.
func Open(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return NewStore(db, opts...), nil
}
