package bunrepo

import (
	"context"
	"fmt"

	"github.com/goliatone/go-deeplinks/pkg/domain"
	"github.com/uptrace/bun"
)

// Models lists every table owned by this package.
func Models() []any {
	return []any{
		(*domain.KeyValue)(nil),
		(*domain.LinkRecord)(nil),
	}
}

// CreateTables creates any missing tables.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunrepo: create table for %T: %w", model, err)
		}
	}
	return nil
}
