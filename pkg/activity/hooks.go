package activity

import (
	"context"
	"time"

	"github.com/goliatone/go-deeplinks/pkg/attribution"
	"github.com/goliatone/go-deeplinks/pkg/links"
)

// Verbs emitted by Observer.
const (
	VerbLinkResolved = "link.resolved"
	VerbLinkDropped  = "link.dropped"
)

// Event captures the common fields consumers need to record activity/audit events.
type Event struct {
	Verb       string
	Source     string
	ObjectType string
	ObjectID   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Hook observers receive activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event)
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, evt Event)

func (f HookFunc) Notify(ctx context.Context, evt Event) {
	if f != nil {
		f(ctx, evt)
	}
}

// Hooks provides a convenient fan-out collection.
type Hooks []Hook

// Notify delivers the event to every hook, skipping nil entries.
func (h Hooks) Notify(ctx context.Context, evt Event) {
	if len(h) == 0 {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	for _, hook := range h {
		if hook == nil {
			continue
		}
		hook.Notify(ctx, CloneEvent(evt))
	}
}

// Nop is a no-op hook useful for defaults.
type Nop struct{}

func (Nop) Notify(_ context.Context, _ Event) {}

// Observer turns router outcomes into activity events.
type Observer struct {
	Hooks Hooks
}

var _ links.Observer = Observer{}

func (o Observer) OnLinkResolved(ctx context.Context, info links.Resolution) {
	meta := map[string]any{
		"event":    links.Kind(info.Event),
		"buffered": info.Buffered,
	}
	if info.Result.CampaignID != "" {
		meta["campaign_id"] = attribution.Mask(info.Result.CampaignID)
	}
	o.Hooks.Notify(ctx, Event{
		Verb:       VerbLinkResolved,
		Source:     info.Source,
		ObjectType: "link",
		ObjectID:   info.Result.URL,
		Metadata:   meta,
	})
}

func (o Observer) OnLinkDropped(ctx context.Context, info links.Drop) {
	meta := map[string]any{"event": links.Kind(info.Event)}
	if info.Err != nil {
		meta["reason"] = info.Err.Error()
	}
	o.Hooks.Notify(ctx, Event{
		Verb:       VerbLinkDropped,
		Source:     info.Source,
		ObjectType: "event",
		Metadata:   meta,
	})
}

// CloneEvent copies evt with its own metadata map so hooks can mutate it.
func CloneEvent(evt Event) Event {
	evt.Metadata = CloneMetadata(evt.Metadata)
	return evt
}

// CloneMetadata makes a shallow copy so hooks can mutate without affecting callers.
func CloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
