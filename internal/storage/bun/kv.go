package bunrepo

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-deeplinks/pkg/domain"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// KeyValueStore persists named string slots in the key_values table.
type KeyValueStore struct {
	base baseRepository[domain.KeyValue]
}

var _ store.KeyValueStore = (*KeyValueStore)(nil)

func NewKeyValueStore(db *bun.DB) *KeyValueStore {
	handlers := repository.ModelHandlers[*domain.KeyValue]{
		NewRecord: func() *domain.KeyValue { return &domain.KeyValue{} },
		GetID:     func(kv *domain.KeyValue) uuid.UUID { return kv.ID },
		SetID: func(kv *domain.KeyValue, id uuid.UUID) {
			kv.ID = id
		},
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(kv *domain.KeyValue) string { return kv.Name },
	}
	return &KeyValueStore{
		base: newBaseRepository[domain.KeyValue](db, handlers, func(kv *domain.KeyValue) *domain.RecordMeta { return &kv.RecordMeta }),
	}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	record, err := s.base.get(ctx, withName(key))
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return record.Value, true, nil
}

// Set overwrites the value stored under key.
func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	model := &domain.KeyValue{Name: key, Value: value}
	model.EnsureID()
	model.CreatedAt = now
	model.UpdatedAt = now
	_, err := s.base.db.NewInsert().
		Model(model).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
