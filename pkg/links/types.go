package links

import (
	"context"
)

// Well-known attribution payload keys.
const (
	// DeepLinkPathKey carries the in-app path of an attributed link.
	DeepLinkPathKey = "$deeplink_path"
	// ClickedLinkKey marks a session opened from an attributed link.
	ClickedLinkKey = "+clicked_branch_link"
	// ReferringLinkKey holds the raw attributed link; never forwarded.
	ReferringLinkKey = "~referring_link"
)

// Event is one of URLOpened, AttributionOpened or PushOpened.
type Event interface {
	isEvent()
}

// URLOpened is emitted when the OS opens the app with a URL.
type URLOpened struct {
	URI string
}

// AttributionOpened is emitted for sessions resolved from an attributed link.
// Extra must not contain ClickedLinkKey or ReferringLinkKey.
type AttributionOpened struct {
	DeepLinkPath string
	Extra        Params
}

// PushOpened is emitted when the user taps a notification.
type PushOpened struct {
	Payload map[string]any
}

func (URLOpened) isEvent()         {}
func (AttributionOpened) isEvent() {}
func (PushOpened) isEvent()        {}

// Kind returns a short label for logging.
func Kind(ev Event) string {
	switch ev.(type) {
	case URLOpened, *URLOpened:
		return "url"
	case AttributionOpened, *AttributionOpened:
		return "attribution"
	case PushOpened, *PushOpened:
		return "push"
	default:
		return "unknown"
	}
}

// Result is a canonical link plus the campaign id extracted on the way.
type Result struct {
	URL        string
	CampaignID string
}

// CampaignRecorder persists campaign ids found in URLs.
type CampaignRecorder interface {
	Extract(ctx context.Context, rawURL string) (string, bool)
}

// Observer receives resolution outcomes.
type Observer interface {
	OnLinkResolved(ctx context.Context, info Resolution)
	OnLinkDropped(ctx context.Context, info Drop)
}

// Resolution describes a produced canonical link.
type Resolution struct {
	Source   string
	Event    Event
	Result   Result
	Buffered bool
}

// Drop describes an event that produced no link.
type Drop struct {
	Source string
	Event  Event
	Err    error
}

// FailureMode controls how audit write errors are handled.
type FailureMode string

const (
	// FailureStrict drops the link when its audit record cannot be written.
	FailureStrict FailureMode = "strict"
	// FailureLenient logs and continues on error.
	FailureLenient FailureMode = "lenient"
)
