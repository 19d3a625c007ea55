package links

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-deeplinks/internal/storage/memory"
	"github.com/goliatone/go-deeplinks/pkg/attribution"
)

func newTestNormalizer(t *testing.T) (*Normalizer, *attribution.Store) {
	t.Helper()
	campaigns, err := attribution.New(attribution.Dependencies{Storage: memory.NewKeyValueStore()})
	if err != nil {
		t.Fatalf("attribution: %v", err)
	}
	n, err := NewNormalizer("https://tonhub.com/", campaigns)
	if err != nil {
		t.Fatalf("normalizer: %v", err)
	}
	return n, campaigns
}

func TestNormalizeURLOpenedIsVerbatim(t *testing.T) {
	ctx := context.Background()
	n, campaigns := newTestNormalizer(t)

	inputs := []string{
		"https://tonhub.com/transfer/EQabc?amount=1000&text=hello%20world",
		"ton://transfer/EQabc?bin=te6c",
		"https://tonhub.com/staking?campaignId=autumn",
	}
	for _, uri := range inputs {
		res, err := n.Normalize(ctx, URLOpened{URI: uri})
		if err != nil {
			t.Fatalf("normalize %s: %v", uri, err)
		}
		if res.URL != uri {
			t.Fatalf("expected verbatim %s, got %s", uri, res.URL)
		}
	}
	if got, _ := campaigns.Get(ctx); got != "autumn" {
		t.Fatalf("expected campaign autumn, got %q", got)
	}
}

func TestNormalizeURLOpenedDropsMalformed(t *testing.T) {
	n, _ := newTestNormalizer(t)
	for _, uri := range []string{"", "not a url", "/relative/path", "%zz"} {
		_, err := n.Normalize(context.Background(), URLOpened{URI: uri})
		if !errors.Is(err, ErrMalformedURL) || !errors.Is(err, ErrDropped) {
			t.Fatalf("%q: expected malformed drop, got %v", uri, err)
		}
	}
}

func TestNormalizeAttributionAppendsParams(t *testing.T) {
	ctx := context.Background()
	n, campaigns := newTestNormalizer(t)

	res, err := n.Normalize(ctx, AttributionOpened{
		DeepLinkPath: "transfer/EQabc?campaignId=c7",
		Extra: Params{
			{Key: DeepLinkPathKey, Value: "transfer/EQabc?campaignId=c7"},
			{Key: "~feature", Value: "marketing"},
			{Key: ReferringLinkKey, Value: "https://tonhub.app.link/x"},
			{Key: "amount", Value: "10"},
			{Key: ClickedLinkKey, Value: "true"},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := "https://tonhub.com/transfer/EQabc?campaignId=c7&~feature=marketing&amount=10"
	if res.URL != want {
		t.Fatalf("expected %s, got %s", want, res.URL)
	}
	if strings.Contains(res.URL, "clicked_branch_link") || strings.Contains(res.URL, "referring_link") {
		t.Fatalf("bookkeeping keys leaked into %s", res.URL)
	}
	if res.CampaignID != "c7" {
		t.Fatalf("expected campaign c7 on result, got %q", res.CampaignID)
	}
	if got, _ := campaigns.Get(ctx); got != "c7" {
		t.Fatalf("expected stored campaign c7, got %q", got)
	}
}

func TestNormalizeAttributionTrimsLeadingSlash(t *testing.T) {
	n, _ := newTestNormalizer(t)
	res, err := n.Normalize(context.Background(), AttributionOpened{DeepLinkPath: "/staking"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.URL != "https://tonhub.com/staking" {
		t.Fatalf("unexpected url %s", res.URL)
	}
}

func TestNormalizeAttributionEmptyPathDropped(t *testing.T) {
	n, _ := newTestNormalizer(t)
	for _, path := range []string{"", "/", "   "} {
		_, err := n.Normalize(context.Background(), AttributionOpened{
			DeepLinkPath: path,
			Extra:        Params{{Key: "campaignId", Value: "x"}},
		})
		if !errors.Is(err, ErrEmptyDeepLinkPath) {
			t.Fatalf("%q: expected empty path drop, got %v", path, err)
		}
	}
}

func TestNormalizePushURLVerbatim(t *testing.T) {
	n, _ := newTestNormalizer(t)
	res, err := n.Normalize(context.Background(), PushOpened{Payload: map[string]any{
		"url":  "https://tonhub.com/transfer/EQabc",
		"type": "holders-push",
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.URL != "https://tonhub.com/transfer/EQabc" {
		t.Fatalf("expected url field to win, got %s", res.URL)
	}
}

func TestNormalizeHoldersPush(t *testing.T) {
	n, _ := newTestNormalizer(t)
	res, err := n.Normalize(context.Background(), PushOpened{Payload: map[string]any{
		"type":      "holders-push",
		"accountId": "A1",
		"addresses": []any{"addrA", "addrB"},
		"cardId":    "C9",
		"eventId":   "E7",
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := "https://tonhub.com/holders/transactions?accountId=A1&addresses=addrA,addrB&cardId=C9&transactionId=E7"
	if res.URL != want {
		t.Fatalf("expected %s, got %s", want, res.URL)
	}
}

func TestNormalizeHoldersPushOptionalFields(t *testing.T) {
	n, _ := newTestNormalizer(t)
	res, err := n.Normalize(context.Background(), PushOpened{Payload: map[string]any{
		"type":      "holders-push",
		"accountId": "A1",
		"addresses": []string{"addrA"},
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.URL != "https://tonhub.com/holders/transactions?accountId=A1&addresses=addrA" {
		t.Fatalf("unexpected url %s", res.URL)
	}
}

func TestNormalizePushDrops(t *testing.T) {
	n, _ := newTestNormalizer(t)
	cases := map[string]struct {
		payload map[string]any
		want    error
	}{
		"missing addresses": {
			payload: map[string]any{"type": "holders-push", "accountId": "A1"},
			want:    ErrInvalidPushPayload,
		},
		"empty addresses": {
			payload: map[string]any{"type": "holders-push", "accountId": "A1", "addresses": []any{}},
			want:    ErrInvalidPushPayload,
		},
		"non literal type": {
			payload: map[string]any{"type": "HOLDERS-PUSH", "accountId": "A1", "addresses": []any{"a"}},
			want:    ErrInvalidPushPayload,
		},
		"numeric card id": {
			payload: map[string]any{"type": "holders-push", "accountId": "A1", "addresses": []any{"a"}, "cardId": 9.0},
			want:    ErrInvalidPushPayload,
		},
		"other type": {
			payload: map[string]any{"type": "staking-reward"},
			want:    ErrUnroutablePush,
		},
		"nil payload": {
			payload: nil,
			want:    ErrUnroutablePush,
		},
	}
	for name, tc := range cases {
		_, err := n.Normalize(context.Background(), PushOpened{Payload: tc.payload})
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, err)
		}
	}
}

func TestNewNormalizerValidatesDomain(t *testing.T) {
	if _, err := NewNormalizer("", nil); err == nil {
		t.Fatalf("expected error for empty domain")
	}
	if _, err := NewNormalizer("tonhub.com", nil); err == nil {
		t.Fatalf("expected error for relative domain")
	}
	n, err := NewNormalizer("https://tonhub.com/", nil)
	if err != nil {
		t.Fatalf("normalizer: %v", err)
	}
	if n.Domain() != "https://tonhub.com" {
		t.Fatalf("unexpected domain %s", n.Domain())
	}
}
