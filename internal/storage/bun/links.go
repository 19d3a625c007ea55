package bunrepo

import (
	"context"

	"github.com/goliatone/go-deeplinks/pkg/domain"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type LinkRecordRepository struct {
	base baseRepository[domain.LinkRecord]
}

var _ store.LinkRecordRepository = (*LinkRecordRepository)(nil)

func NewLinkRecordRepository(db *bun.DB) *LinkRecordRepository {
	handlers := repository.ModelHandlers[*domain.LinkRecord]{
		NewRecord: func() *domain.LinkRecord { return &domain.LinkRecord{} },
		GetID:     func(r *domain.LinkRecord) uuid.UUID { return r.ID },
		SetID: func(r *domain.LinkRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.LinkRecord) string { return r.ID.String() },
	}
	return &LinkRecordRepository{
		base: newBaseRepository[domain.LinkRecord](db, handlers, func(r *domain.LinkRecord) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

func (r *LinkRecordRepository) Create(ctx context.Context, record *domain.LinkRecord) error {
	return r.base.create(ctx, record)
}

func (r *LinkRecordRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.LinkRecord], error) {
	return r.base.list(ctx, opts)
}
