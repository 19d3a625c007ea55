// Package router wires link sources, the normalizer, the link audit store and
// the delivery latch together.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-deeplinks/pkg/attribution"
	"github.com/goliatone/go-deeplinks/pkg/domain"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
	"github.com/goliatone/go-deeplinks/pkg/latch"
	"github.com/goliatone/go-deeplinks/pkg/links"
	"github.com/goliatone/go-deeplinks/pkg/sources"
	"golang.org/x/sync/errgroup"
)

// Dependencies groups the collaborators owned by the router.
type Dependencies struct {
	Normalizer *links.Normalizer
	Campaigns  *attribution.Store
	Latch      *latch.Latch
	Links      store.LinkRecordRepository
	Observer   links.Observer
	Adapters   []sources.Adapter
	Logger     logger.Logger
	Failure    links.FailureMode
}

// Router turns source events into canonical links and hands them to the
// single attached consumer.
type Router struct {
	normalizer *links.Normalizer
	campaigns  *attribution.Store
	latch      *latch.Latch
	links      store.LinkRecordRepository
	observer   links.Observer
	adapters   []sources.Adapter
	logger     logger.Logger
	failure    links.FailureMode

	mu        sync.Mutex
	started   bool
	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
	closeErr  error
}

var (
	ErrMissingNormalizer = errors.New("router: normalizer is required")
	ErrMissingCampaigns  = errors.New("router: attribution store is required")
	ErrAlreadyStarted    = errors.New("router: already started")
	ErrAuditFailed       = fmt.Errorf("%w: link record not written", links.ErrDropped)
)

var _ sources.Sink = (*Router)(nil)

// New builds a router. Latch, link store and observer default to fresh or
// no-op implementations.
func New(deps Dependencies) (*Router, error) {
	if deps.Normalizer == nil {
		return nil, ErrMissingNormalizer
	}
	if deps.Campaigns == nil {
		return nil, ErrMissingCampaigns
	}
	if deps.Latch == nil {
		deps.Latch = latch.New()
	}
	if deps.Links == nil {
		deps.Links = &store.NopLinkRecords{}
	}
	if deps.Observer == nil {
		deps.Observer = &links.NopObserver{}
	}
	if deps.Failure == "" {
		deps.Failure = links.FailureLenient
	}

	return &Router{
		normalizer: deps.Normalizer,
		campaigns:  deps.Campaigns,
		latch:      deps.Latch,
		links:      deps.Links,
		observer:   deps.Observer,
		adapters:   append([]sources.Adapter(nil), deps.Adapters...),
		logger:     logger.OrNop(deps.Logger),
		failure:    deps.Failure,
	}, nil
}

// Start runs every adapter in its own goroutine. Adapters fail independently;
// their errors are logged and reported by Close.
func (r *Router) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.group = &errgroup.Group{}
	for _, adapter := range r.adapters {
		if adapter == nil {
			continue
		}
		adapter := adapter
		r.group.Go(func() error {
			if err := adapter.Run(runCtx, r); err != nil {
				r.logger.Error("router: adapter stopped",
					logger.Field{Key: "adapter", Value: adapter.Name()},
					logger.Field{Key: "error", Value: err},
				)
				return fmt.Errorf("router: adapter %s: %w", adapter.Name(), err)
			}
			return nil
		})
	}
	r.logger.Info("router: started", logger.Field{Key: "adapters", Value: len(r.adapters)})
	return nil
}

// Attach registers the link consumer. See latch.Latch.Attach.
func (r *Router) Attach(fn func(link string)) latch.Detach {
	return r.latch.Attach(fn)
}

// Pending returns the buffered link, if any.
func (r *Router) Pending() (string, bool) {
	return r.latch.Pending()
}

// CampaignID returns the last recorded campaign id.
func (r *Router) CampaignID(ctx context.Context) (string, bool) {
	return r.campaigns.Get(ctx)
}

// RecordCampaign stores the campaign id carried by rawURL, if any.
func (r *Router) RecordCampaign(ctx context.Context, rawURL string) {
	r.campaigns.Extract(ctx, rawURL)
}

// Handle normalizes ev, records the link, delivers it and notifies the
// observer. Dropped events are logged and never surface as errors.
func (r *Router) Handle(ctx context.Context, source string, ev links.Event) {
	lgr := r.logger.With(
		logger.Field{Key: "source", Value: source},
		logger.Field{Key: "event", Value: links.Kind(ev)},
	)

	result, err := r.normalizer.Normalize(ctx, ev)
	if err != nil {
		lgr.Debug("router: event dropped", logger.Field{Key: "reason", Value: err})
		r.observer.OnLinkDropped(ctx, links.Drop{Source: source, Event: ev, Err: err})
		return
	}

	record := &domain.LinkRecord{
		URL:        result.URL,
		Source:     source,
		CampaignID: result.CampaignID,
		Buffered:   !r.latch.Attached(),
		Metadata:   domain.JSONMap{"event": links.Kind(ev)},
	}
	if err := r.links.Create(ctx, record); err != nil {
		if r.failure == links.FailureStrict {
			lgr.Error("router: link record failed, dropping link", logger.Field{Key: "error", Value: err})
			r.observer.OnLinkDropped(ctx, links.Drop{Source: source, Event: ev, Err: fmt.Errorf("%w: %w", ErrAuditFailed, err)})
			return
		}
		lgr.Warn("router: link record failed", logger.Field{Key: "error", Value: err})
	}

	delivered := r.latch.Deliver(result.URL)
	fields := []logger.Field{{Key: "delivered", Value: delivered}}
	if result.CampaignID != "" {
		fields = append(fields, logger.Field{Key: "campaign_id", Value: attribution.Mask(result.CampaignID)})
	}
	lgr.Info("router: link resolved", fields...)

	r.observer.OnLinkResolved(ctx, links.Resolution{
		Source:   source,
		Event:    ev,
		Result:   result,
		Buffered: !delivered,
	})
}

// Close cancels the adapters and waits for them to return. It returns the
// first adapter error, if any. Safe to call more than once.
func (r *Router) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.started = true
		cancel, group := r.cancel, r.group
		r.mu.Unlock()
		if cancel == nil {
			return
		}
		cancel()
		r.closeErr = group.Wait()
		r.logger.Info("router: stopped")
	})
	return r.closeErr
}
