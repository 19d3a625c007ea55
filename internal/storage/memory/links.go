package memory

import (
	"context"

	"github.com/goliatone/go-deeplinks/pkg/domain"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
)

type LinkRecordRepository struct {
	base baseMemoryRepo[domain.LinkRecord]
}

var _ store.LinkRecordRepository = (*LinkRecordRepository)(nil)

func NewLinkRecordRepository() *LinkRecordRepository {
	return &LinkRecordRepository{
		base: newBaseMemoryRepo(func(r *domain.LinkRecord) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

func (r *LinkRecordRepository) Create(ctx context.Context, record *domain.LinkRecord) error {
	return r.base.create(ctx, record)
}

func (r *LinkRecordRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.LinkRecord], error) {
	return r.base.list(ctx, opts)
}
