package core

import "errors"

// Round failures fall into two classes the caller must be able to tell
// apart: a network problem (retryable, show "connection" messaging) and a
// data-shape problem (not retryable, show "service" messaging). Both are
// non-fatal; the last-known-good FeedResult stays on display.
var (
	// ErrFetch marks transport-level failures: connection errors, timeouts,
	// non-2xx responses from the events API.
	ErrFetch = errors.New("fetch failed")

	// ErrBadData marks responses that arrived but could not be decoded
	// into the expected shape.
	ErrBadData = errors.New("malformed response")
)
