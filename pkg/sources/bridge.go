package sources

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBridgeClosed is returned by Bridge methods after Close.
	ErrBridgeClosed = errors.New("sources: bridge closed")
	// ErrLaunchSealed is returned when the launch response is set after the
	// notification adapter has subscribed.
	ErrLaunchSealed = errors.New("sources: launch response already consumed")
)

const defaultBridgeBuffer = 16

// Bridge is a channel-backed URLSource, AttributionSource and
// NotificationSource. Hosts push platform callbacks into it.
type Bridge struct {
	urls     chan string
	sessions chan AttributionResult
	pushes   chan *NotificationResponse
	done     chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	stateMu      sync.RWMutex
	initialURL   string
	lastResponse *NotificationResponse
	launchSealed bool
}

var (
	_ URLSource          = (*Bridge)(nil)
	_ AttributionSource  = (*Bridge)(nil)
	_ NotificationSource = (*Bridge)(nil)
)

// NewBridge returns a bridge whose channels hold buffer pending callbacks.
func NewBridge(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = defaultBridgeBuffer
	}
	return &Bridge{
		urls:     make(chan string, buffer),
		sessions: make(chan AttributionResult, buffer),
		pushes:   make(chan *NotificationResponse, buffer),
		done:     make(chan struct{}),
	}
}

// SetInitialURL records the URL that launched the app.
func (b *Bridge) SetInitialURL(uri string) {
	b.stateMu.Lock()
	b.initialURL = uri
	b.stateMu.Unlock()
}

// SetLastResponse records the notification response that launched the app.
// It fails with ErrLaunchSealed once the notification adapter has started.
func (b *Bridge) SetLastResponse(resp *NotificationResponse) error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	if b.launchSealed {
		return ErrLaunchSealed
	}
	b.lastResponse = resp
	return nil
}

// OpenURL publishes a URL opened while the app runs.
func (b *Bridge) OpenURL(ctx context.Context, uri string) error {
	return send(ctx, b, b.urls, uri)
}

// ResolveSession publishes an attribution callback.
func (b *Bridge) ResolveSession(ctx context.Context, res AttributionResult) error {
	return send(ctx, b, b.sessions, res)
}

// RespondToNotification publishes a notification tap.
func (b *Bridge) RespondToNotification(ctx context.Context, resp *NotificationResponse) error {
	return send(ctx, b, b.pushes, resp)
}

func (b *Bridge) InitialURL(ctx context.Context) (string, error) {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.initialURL, nil
}

func (b *Bridge) SubscribeURLs(ctx context.Context) (<-chan string, error) {
	return b.urls, nil
}

func (b *Bridge) SubscribeSessions(ctx context.Context) (<-chan AttributionResult, error) {
	return b.sessions, nil
}

func (b *Bridge) SubscribeResponses(ctx context.Context) (<-chan *NotificationResponse, error) {
	b.sealLaunch()
	return b.pushes, nil
}

func (b *Bridge) LastResponse(ctx context.Context) (*NotificationResponse, error) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	b.launchSealed = true
	return b.lastResponse, nil
}

func (b *Bridge) sealLaunch() {
	b.stateMu.Lock()
	b.launchSealed = true
	b.stateMu.Unlock()
}

// Close stops the bridge and closes every subscription channel. Safe to call
// more than once.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		b.closed = true
		close(b.urls)
		close(b.sessions)
		close(b.pushes)
		b.mu.Unlock()
	})
	return nil
}

func send[T any](ctx context.Context, b *Bridge, ch chan T, v T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBridgeClosed
	}
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrBridgeClosed
	}
}
