package links

import (
	"errors"
	"fmt"
)

// ErrDropped is wrapped by every normalization failure. Dropped events are
// not actionable and are never retried.
var ErrDropped = errors.New("links: event dropped")

var (
	ErrMalformedURL       = fmt.Errorf("%w: malformed url", ErrDropped)
	ErrEmptyDeepLinkPath  = fmt.Errorf("%w: empty deep link path", ErrDropped)
	ErrInvalidPushPayload = fmt.Errorf("%w: invalid holders push payload", ErrDropped)
	ErrUnroutablePush     = fmt.Errorf("%w: notification carries no link", ErrDropped)
	ErrUnknownEvent       = fmt.Errorf("%w: unknown event", ErrDropped)
)
