package core

import (
	"context"
	"time"
)

// EventsQuery narrows what the source returns. It is a pre-filter
// optimization only; the local pipeline still filters the result.
type EventsQuery struct {
	// League restricts results to one league; empty means all leagues.
	League string
	// Day restricts results to one civil date (YYYY-MM-DD); empty means
	// no day constraint at the source.
	Day string
	// IncludePredictions asks the source to precompute prediction joins.
	IncludePredictions bool
	// Limit caps the number of returned events.
	Limit int
}

// EventSource pulls raw events and predictions from the remote API.
type EventSource interface {
	FetchEvents(ctx context.Context, q EventsQuery) ([]Event, error)
	FetchPredictions(ctx context.Context) ([]Prediction, error)
}

// SnapshotStore persists the last successful snapshot so a restarted
// process can warm-start with a stale-but-valid feed.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

// Clock supplies the reference instant. Injected so the pipeline stays a
// pure function under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
