// Package sources adapts the platform's link sources (OS URL handler,
// attribution SDK, notification SDK) into normalized link events.
package sources

import (
	"context"

	"github.com/goliatone/go-deeplinks/pkg/links"
)

// URLSource exposes URLs the OS opened the app with.
type URLSource interface {
	// InitialURL returns the URL that launched the app, or "" when none.
	InitialURL(ctx context.Context) (string, error)
	SubscribeURLs(ctx context.Context) (<-chan string, error)
}

// AttributionResult is a single attribution SDK callback. A result with
// neither Err nor Params carries nothing to route and is ignored.
type AttributionResult struct {
	Err    error
	Params links.Params
	URI    string
}

// AttributionSource exposes attributed session callbacks.
type AttributionSource interface {
	SubscribeSessions(ctx context.Context) (<-chan AttributionResult, error)
}

// NotificationResponse is a tapped notification.
type NotificationResponse struct {
	Data map[string]any
}

// NotificationSource exposes notification taps.
type NotificationSource interface {
	SubscribeResponses(ctx context.Context) (<-chan *NotificationResponse, error)
	// LastResponse returns the response that launched the app, if any.
	LastResponse(ctx context.Context) (*NotificationResponse, error)
}

// Sink consumes adapter output.
type Sink interface {
	Handle(ctx context.Context, source string, ev links.Event)
	RecordCampaign(ctx context.Context, rawURL string)
}

// Adapter pumps one source into a Sink until the source closes or ctx ends.
type Adapter interface {
	Name() string
	Run(ctx context.Context, sink Sink) error
}
