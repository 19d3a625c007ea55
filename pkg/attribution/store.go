// Package attribution persists the most recent marketing campaign id seen in
// an inbound link. Only one slot is kept; every sighting overwrites it.
package attribution

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
)

const (
	// DefaultStorageKey is the key the campaign id is stored under.
	DefaultStorageKey = "branch-campaign"
	// CampaignQueryParam is the query parameter carrying the campaign id.
	CampaignQueryParam = "campaignId"
)

var errStorageRequired = errors.New("attribution: key/value store is required")

// Dependencies wires the backing storage.
type Dependencies struct {
	Storage    store.KeyValueStore
	StorageKey string
	Logger     logger.Logger
}

// Store reads and writes the campaign id slot.
type Store struct {
	kv     store.KeyValueStore
	key    string
	logger logger.Logger
}

// New constructs the attribution store.
func New(deps Dependencies) (*Store, error) {
	if deps.Storage == nil {
		return nil, errStorageRequired
	}
	key := strings.TrimSpace(deps.StorageKey)
	if key == "" {
		key = DefaultStorageKey
	}
	return &Store{
		kv:     deps.Storage,
		key:    key,
		logger: logger.OrNop(deps.Logger),
	}, nil
}

// Get returns the last stored campaign id. Read failures are logged and
// reported as absent.
func (s *Store) Get(ctx context.Context) (string, bool) {
	value, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("attribution: campaign read failed", logger.Field{Key: "error", Value: err})
		return "", false
	}
	if !ok {
		return "", false
	}
	return value, true
}

// Set overwrites the stored campaign id.
func (s *Store) Set(ctx context.Context, campaignID string) error {
	if err := s.kv.Set(ctx, s.key, campaignID); err != nil {
		return err
	}
	s.logger.Debug("attribution: campaign stored", logger.Field{Key: "campaign_id", Value: Mask(campaignID)})
	return nil
}

// Extract persists the campaignId query parameter of rawURL, if any, and
// returns it. Unparseable input is ignored. rawURL itself is never modified.
func (s *Store) Extract(ctx context.Context, rawURL string) (string, bool) {
	campaignID, ok := CampaignFromURL(rawURL)
	if !ok {
		return "", false
	}
	if err := s.Set(ctx, campaignID); err != nil {
		s.logger.Warn("attribution: campaign write failed",
			logger.Field{Key: "campaign_id", Value: Mask(campaignID)},
			logger.Field{Key: "error", Value: err},
		)
	}
	return campaignID, true
}

// CampaignFromURL returns the non-empty campaignId query parameter of rawURL.
func CampaignFromURL(rawURL string) (string, bool) {
	if strings.TrimSpace(rawURL) == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	campaignID := u.Query().Get(CampaignQueryParam)
	if campaignID == "" {
		return "", false
	}
	return campaignID, true
}
