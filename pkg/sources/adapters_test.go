package sources

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-deeplinks/pkg/links"
)

type recordedEvent struct {
	source string
	ev     links.Event
}

type recordingSink struct {
	mu        sync.Mutex
	events    []recordedEvent
	campaigns []string
}

func (s *recordingSink) Handle(ctx context.Context, source string, ev links.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, recordedEvent{source: source, ev: ev})
}

func (s *recordingSink) RecordCampaign(ctx context.Context, rawURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns = append(s.campaigns, rawURL)
}

func TestURLAdapterInitialThenSubscribed(t *testing.T) {
	bridge := NewBridge(4)
	bridge.SetInitialURL("https://tonhub.com/initial")
	ctx := context.Background()
	if err := bridge.OpenURL(ctx, "https://tonhub.com/one"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := bridge.OpenURL(ctx, "https://tonhub.com/two"); err != nil {
		t.Fatalf("open: %v", err)
	}
	bridge.Close()

	sink := &recordingSink{}
	if err := NewURLAdapter(bridge, nil).Run(ctx, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"https://tonhub.com/initial", "https://tonhub.com/one", "https://tonhub.com/two"}
	if len(sink.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(sink.events))
	}
	for i, uri := range want {
		ev, ok := sink.events[i].ev.(links.URLOpened)
		if !ok || ev.URI != uri {
			t.Fatalf("event %d: expected %s, got %#v", i, uri, sink.events[i].ev)
		}
		if sink.events[i].source != "url" {
			t.Fatalf("unexpected source %s", sink.events[i].source)
		}
	}
}

func TestURLAdapterSkipsEmptyInitial(t *testing.T) {
	bridge := NewBridge(1)
	bridge.Close()
	sink := &recordingSink{}
	if err := NewURLAdapter(bridge, nil).Run(context.Background(), sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.events) != 0 {
		t.Fatalf("expected no events, got %d", len(sink.events))
	}
}

func TestAttributionAdapterRouting(t *testing.T) {
	bridge := NewBridge(8)
	ctx := context.Background()
	results := []AttributionResult{
		{Err: errors.New("sdk failure"), URI: "https://tonhub.com/x?campaignId=ignored"},
		{
			URI: "https://tonhub.app.link/abc?campaignId=c1",
			Params: links.Params{
				{Key: links.ClickedLinkKey, Value: "true"},
				{Key: links.DeepLinkPathKey, Value: "staking"},
				{Key: links.ReferringLinkKey, Value: "https://tonhub.app.link/abc"},
				{Key: "pool", Value: "p1"},
			},
		},
		{URI: "https://tonhub.com/transfer/EQabc", Params: links.Params{{Key: links.ClickedLinkKey, Value: "false"}}},
		{},
	}
	for _, res := range results {
		if err := bridge.ResolveSession(ctx, res); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	bridge.Close()

	sink := &recordingSink{}
	if err := NewAttributionAdapter(bridge, nil).Run(ctx, sink); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sink.campaigns) != 2 || sink.campaigns[0] != "https://tonhub.app.link/abc?campaignId=c1" {
		t.Fatalf("unexpected campaign extraction calls %v", sink.campaigns)
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	attr, ok := sink.events[0].ev.(links.AttributionOpened)
	if !ok {
		t.Fatalf("expected attribution event, got %#v", sink.events[0].ev)
	}
	if attr.DeepLinkPath != "staking" {
		t.Fatalf("unexpected path %s", attr.DeepLinkPath)
	}
	if _, ok := attr.Extra.Get(links.ClickedLinkKey); ok {
		t.Fatalf("clicked flag must be stripped")
	}
	if _, ok := attr.Extra.Get(links.ReferringLinkKey); ok {
		t.Fatalf("referring link must be stripped")
	}
	if v, _ := attr.Extra.Get("pool"); v != "p1" {
		t.Fatalf("expected pool param to survive")
	}
	if u, ok := sink.events[1].ev.(links.URLOpened); !ok || u.URI != "https://tonhub.com/transfer/EQabc" {
		t.Fatalf("expected url fallback, got %#v", sink.events[1].ev)
	}
}

func TestAttributionAdapterIgnoresMissingParams(t *testing.T) {
	bridge := NewBridge(2)
	ctx := context.Background()
	bridge.ResolveSession(ctx, AttributionResult{URI: "https://tonhub.com/staking?campaignId=c9"})
	bridge.ResolveSession(ctx, AttributionResult{URI: "https://tonhub.com/staking", Params: links.Params{}})
	bridge.Close()

	sink := &recordingSink{}
	NewAttributionAdapter(bridge, nil).Run(ctx, sink)
	if len(sink.campaigns) != 1 || sink.campaigns[0] != "https://tonhub.com/staking" {
		t.Fatalf("expected campaign extraction only for the result with params, got %v", sink.campaigns)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected only the result with params to route, got %d", len(sink.events))
	}
}

func TestPushAdapterReplay(t *testing.T) {
	ctx := context.Background()
	for _, replay := range []bool{true, false} {
		bridge := NewBridge(2)
		bridge.SetLastResponse(&NotificationResponse{Data: map[string]any{"url": "https://tonhub.com/launch"}})
		bridge.RespondToNotification(ctx, nil)
		bridge.RespondToNotification(ctx, &NotificationResponse{Data: map[string]any{"url": "https://tonhub.com/tap"}})
		bridge.Close()

		sink := &recordingSink{}
		if err := NewPushAdapter(bridge, PushOptions{ReplayLastResponse: replay}, nil).Run(ctx, sink); err != nil {
			t.Fatalf("run: %v", err)
		}
		want := []string{"https://tonhub.com/tap"}
		if replay {
			want = append([]string{"https://tonhub.com/launch"}, want...)
		}
		if len(sink.events) != len(want) {
			t.Fatalf("replay=%v: expected %d events, got %d", replay, len(want), len(sink.events))
		}
		for i, uri := range want {
			ev := sink.events[i].ev.(links.PushOpened)
			if ev.Payload["url"] != uri {
				t.Fatalf("replay=%v event %d: expected %s, got %v", replay, i, uri, ev.Payload["url"])
			}
			if sink.events[i].source != "notification" {
				t.Fatalf("unexpected source %s", sink.events[i].source)
			}
		}
	}
}

func TestAdapterStopsOnContextCancel(t *testing.T) {
	bridge := NewBridge(1)
	defer bridge.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewURLAdapter(bridge, nil).Run(ctx, &recordingSink{})
	}()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestAdapterRequiresSink(t *testing.T) {
	if err := NewURLAdapter(NewBridge(1), nil).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil sink")
	}
}
