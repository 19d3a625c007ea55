package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// KeyValue is a single named string slot in persistent storage.
type KeyValue struct {
	bun.BaseModel `bun:"table:key_values"`
	RecordMeta

	Name  string `bun:",unique,notnull" json:"name"`
	Value string `bun:",notnull" json:"value"`
}

// Link sources recorded on LinkRecord.Source.
const (
	SourceURL          = "url"
	SourceAttribution  = "attribution"
	SourceNotification = "notification"
)

// LinkRecord is an audit entry for a canonical link produced by the router.
type LinkRecord struct {
	bun.BaseModel `bun:"table:link_records"`
	RecordMeta

	URL        string  `bun:",notnull" json:"url"`
	Source     string  `bun:",notnull" json:"source"`
	CampaignID string  `bun:",nullzero" json:"campaign_id,omitempty"`
	Buffered   bool    `bun:",notnull,default:false" json:"buffered"`
	Metadata   JSONMap `bun:"type:jsonb,nullzero" json:"metadata,omitempty"`
}
