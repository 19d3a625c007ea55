package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-deeplinks/pkg/domain"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit  int
	Offset int
	Since  time.Time
	Until  time.Time
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// KeyValueStore is the synchronous persistent key/value contract used by the
// attribution store. A missing key is reported as ok=false with a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// LinkRecordRepository keeps an audit trail of produced canonical links.
type LinkRecordRepository interface {
	Create(ctx context.Context, record *domain.LinkRecord) error
	List(ctx context.Context, opts ListOptions) (ListResult[domain.LinkRecord], error)
}

// NopLinkRecords discards link records.
type NopLinkRecords struct{}

var _ LinkRecordRepository = (*NopLinkRecords)(nil)

func (n *NopLinkRecords) Create(ctx context.Context, record *domain.LinkRecord) error { return nil }

func (n *NopLinkRecords) List(ctx context.Context, opts ListOptions) (ListResult[domain.LinkRecord], error) {
	return ListResult[domain.LinkRecord]{}, nil
}
