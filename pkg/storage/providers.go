package storage

import (
	"context"
	"database/sql"
	"strings"

	bunrepo "github.com/goliatone/go-deeplinks/internal/storage/bun"
	"github.com/goliatone/go-deeplinks/internal/storage/memory"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Providers exposes the stores needed by the router.
type Providers struct {
	KeyValues store.KeyValueStore
	Links     store.LinkRecordRepository
}

type Option func(*Providers)

// WithLinkRecords overrides the link audit repository (e.g. with store.NopLinkRecords).
func WithLinkRecords(repo store.LinkRecordRepository) Option {
	return func(p *Providers) {
		if repo != nil {
			p.Links = repo
		}
	}
}

// NewMemoryProviders returns stores backed by in-memory maps.
func NewMemoryProviders(opts ...Option) Providers {
	providers := Providers{
		KeyValues: memory.NewKeyValueStore(),
		Links:     memory.NewLinkRecordRepository(),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewBunProviders wires Bun-backed stores using go-repository-bun.
// The caller is responsible for creating the *bun.DB instance and managing
// its lifecycle; call Migrate before first use.
func NewBunProviders(db *bun.DB, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel(bunrepo.Models()...)

	providers := Providers{
		KeyValues: bunrepo.NewKeyValueStore(db),
		Links:     bunrepo.NewLinkRecordRepository(db),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// Migrate creates the tables used by the Bun providers when missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	return bunrepo.CreateTables(ctx, db)
}

// OpenSQLite opens a SQLite database through sqliteshim. An empty dsn opens
// an in-memory database, which is not durable.
func OpenSQLite(dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file::memory:?cache=shared"
	}
	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
