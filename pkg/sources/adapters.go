package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-deeplinks/pkg/domain"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/links"
)

var errSinkRequired = errors.New("sources: sink is required")

// URLAdapter forwards OS-opened URLs as URLOpened events.
type URLAdapter struct {
	source URLSource
	logger logger.Logger
}

// NewURLAdapter wraps src.
func NewURLAdapter(src URLSource, lgr logger.Logger) *URLAdapter {
	return &URLAdapter{source: src, logger: logger.OrNop(lgr)}
}

func (a *URLAdapter) Name() string { return domain.SourceURL }

// Run handles the initial URL, then every subscribed URL in arrival order.
func (a *URLAdapter) Run(ctx context.Context, sink Sink) error {
	if sink == nil {
		return errSinkRequired
	}
	if a.source == nil {
		return nil
	}
	initial, err := a.source.InitialURL(ctx)
	if err != nil {
		a.logger.Warn("sources: initial url lookup failed", logger.Field{Key: "error", Value: err})
	} else if initial != "" {
		sink.Handle(ctx, a.Name(), links.URLOpened{URI: initial})
	}

	ch, err := a.source.SubscribeURLs(ctx)
	if err != nil {
		return fmt.Errorf("sources: subscribe urls: %w", err)
	}
	return drain(ctx, ch, func(uri string) {
		sink.Handle(ctx, a.Name(), links.URLOpened{URI: uri})
	})
}

// AttributionAdapter turns attribution callbacks into events.
type AttributionAdapter struct {
	source AttributionSource
	logger logger.Logger
}

// NewAttributionAdapter wraps src.
func NewAttributionAdapter(src AttributionSource, lgr logger.Logger) *AttributionAdapter {
	return &AttributionAdapter{source: src, logger: logger.OrNop(lgr)}
}

func (a *AttributionAdapter) Name() string { return domain.SourceAttribution }

func (a *AttributionAdapter) Run(ctx context.Context, sink Sink) error {
	if sink == nil {
		return errSinkRequired
	}
	if a.source == nil {
		return nil
	}
	ch, err := a.source.SubscribeSessions(ctx)
	if err != nil {
		return fmt.Errorf("sources: subscribe sessions: %w", err)
	}
	return drain(ctx, ch, func(res AttributionResult) {
		a.handle(ctx, sink, res)
	})
}

func (a *AttributionAdapter) handle(ctx context.Context, sink Sink, res AttributionResult) {
	if res.Err != nil {
		a.logger.Warn("sources: attribution callback failed", logger.Field{Key: "error", Value: res.Err})
		return
	}
	if res.Params == nil {
		a.logger.Debug("sources: attribution callback without params ignored")
		return
	}
	if res.URI != "" {
		sink.RecordCampaign(ctx, res.URI)
	}
	if res.Params.Truthy(links.ClickedLinkKey) {
		path, _ := res.Params.Get(links.DeepLinkPathKey)
		sink.Handle(ctx, a.Name(), links.AttributionOpened{
			DeepLinkPath: path,
			Extra:        res.Params.Without(links.ClickedLinkKey, links.ReferringLinkKey),
		})
		return
	}
	if res.URI != "" {
		sink.Handle(ctx, a.Name(), links.URLOpened{URI: res.URI})
	}
}

// PushOptions configures a PushAdapter.
type PushOptions struct {
	// ReplayLastResponse handles the response that launched the app before
	// subscribing to new taps.
	ReplayLastResponse bool
}

// PushAdapter turns notification taps into PushOpened events.
type PushAdapter struct {
	source NotificationSource
	opts   PushOptions
	logger logger.Logger
}

// NewPushAdapter wraps src.
func NewPushAdapter(src NotificationSource, opts PushOptions, lgr logger.Logger) *PushAdapter {
	return &PushAdapter{source: src, opts: opts, logger: logger.OrNop(lgr)}
}

func (a *PushAdapter) Name() string { return domain.SourceNotification }

func (a *PushAdapter) Run(ctx context.Context, sink Sink) error {
	if sink == nil {
		return errSinkRequired
	}
	if a.source == nil {
		return nil
	}
	if a.opts.ReplayLastResponse {
		last, err := a.source.LastResponse(ctx)
		if err != nil {
			a.logger.Warn("sources: last notification lookup failed", logger.Field{Key: "error", Value: err})
		} else {
			a.handle(ctx, sink, last)
		}
	}
	ch, err := a.source.SubscribeResponses(ctx)
	if err != nil {
		return fmt.Errorf("sources: subscribe responses: %w", err)
	}
	return drain(ctx, ch, func(resp *NotificationResponse) {
		a.handle(ctx, sink, resp)
	})
}

func (a *PushAdapter) handle(ctx context.Context, sink Sink, resp *NotificationResponse) {
	if resp == nil {
		return
	}
	sink.Handle(ctx, a.Name(), links.PushOpened{Payload: resp.Data})
}

func drain[T any](ctx context.Context, ch <-chan T, fn func(T)) error {
	if ch == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			fn(v)
		}
	}
}
