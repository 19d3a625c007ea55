package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errDomainRequired = errors.New("links: application domain is required")

// Normalizer maps events onto canonical links rooted at the application domain.
type Normalizer struct {
	domain    *url.URL
	campaigns CampaignRecorder
}

// NewNormalizer builds a normalizer for domain (e.g. https://tonhub.com).
// campaigns may be nil, in which case campaign ids are not persisted.
func NewNormalizer(domain string, campaigns CampaignRecorder) (*Normalizer, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, errDomainRequired
	}
	u, err := url.Parse(strings.TrimRight(domain, "/"))
	if err != nil {
		return nil, fmt.Errorf("links: parse domain: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("links: domain %q must be an absolute URL", domain)
	}
	return &Normalizer{domain: u, campaigns: campaigns}, nil
}

// Domain returns the application domain without a trailing slash.
func (n *Normalizer) Domain() string {
	return n.domain.String()
}

// Normalize converts ev into a canonical link. A non-nil error always wraps
// ErrDropped and means no link was produced.
func (n *Normalizer) Normalize(ctx context.Context, ev Event) (Result, error) {
	switch e := ev.(type) {
	case URLOpened:
		return n.normalizeURL(ctx, e)
	case *URLOpened:
		if e == nil {
			return Result{}, ErrUnknownEvent
		}
		return n.normalizeURL(ctx, *e)
	case AttributionOpened:
		return n.normalizeAttribution(ctx, e)
	case *AttributionOpened:
		if e == nil {
			return Result{}, ErrUnknownEvent
		}
		return n.normalizeAttribution(ctx, *e)
	case PushOpened:
		return n.normalizePush(ctx, e)
	case *PushOpened:
		if e == nil {
			return Result{}, ErrUnknownEvent
		}
		return n.normalizePush(ctx, *e)
	default:
		return Result{}, ErrUnknownEvent
	}
}

func (n *Normalizer) normalizeURL(ctx context.Context, ev URLOpened) (Result, error) {
	u, err := url.Parse(ev.URI)
	if err != nil || !u.IsAbs() {
		return Result{}, ErrMalformedURL
	}
	return Result{
		URL:        ev.URI,
		CampaignID: n.extract(ctx, ev.URI),
	}, nil
}

func (n *Normalizer) normalizeAttribution(ctx context.Context, ev AttributionOpened) (Result, error) {
	path := strings.TrimPrefix(ev.DeepLinkPath, "/")
	if strings.TrimSpace(path) == "" {
		return Result{}, ErrEmptyDeepLinkPath
	}
	base := n.domain.String() + "/" + path
	u, err := url.Parse(base)
	if err != nil {
		return Result{}, ErrMalformedURL
	}
	campaignID := n.extract(ctx, base)

	appendQuery(u, ev.Extra.Without(DeepLinkPathKey, ClickedLinkKey, ReferringLinkKey))
	return Result{
		URL:        u.String(),
		CampaignID: campaignID,
	}, nil
}

func (n *Normalizer) normalizePush(ctx context.Context, ev PushOpened) (Result, error) {
	if ev.Payload == nil {
		return Result{}, ErrUnroutablePush
	}
	if link, ok := ev.Payload["url"].(string); ok {
		if strings.TrimSpace(link) == "" {
			return Result{}, ErrMalformedURL
		}
		return Result{
			URL:        link,
			CampaignID: n.extract(ctx, link),
		}, nil
	}
	if typ, ok := ev.Payload["type"].(string); ok && IsHoldersPushType(typ) {
		push, err := ParseHoldersPush(ev.Payload)
		if err != nil {
			return Result{}, err
		}
		return Result{URL: push.URL(n.domain)}, nil
	}
	return Result{}, ErrUnroutablePush
}

func (n *Normalizer) extract(ctx context.Context, rawURL string) string {
	if n.campaigns == nil {
		return ""
	}
	campaignID, _ := n.campaigns.Extract(ctx, rawURL)
	return campaignID
}
