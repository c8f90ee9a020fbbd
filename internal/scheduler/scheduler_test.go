package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/courtside/internal/core"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeSource counts fetch rounds and can hold them open until released.
type fakeSource struct {
	mu          sync.Mutex
	eventCalls  int
	events      []core.Event
	predictions []core.Prediction
	err         error
	block       chan struct{} // when non-nil, FetchEvents waits on it
	started     chan struct{} // signaled once per FetchEvents entry
}

func (f *fakeSource) FetchEvents(ctx context.Context, q core.EventsQuery) ([]core.Event, error) {
	f.mu.Lock()
	f.eventCalls++
	block := f.block
	started := f.started
	events := f.events
	err := f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return events, err
}

func (f *fakeSource) FetchPredictions(ctx context.Context) ([]core.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.predictions, f.err
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventCalls
}

type updateRecorder struct {
	mu      sync.Mutex
	updates []Update
	notify  chan struct{}
}

func newUpdateRecorder() *updateRecorder {
	return &updateRecorder{notify: make(chan struct{}, 16)}
}

func (r *updateRecorder) record(u Update) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *updateRecorder) wait(t *testing.T) Update {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an update")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func (r *updateRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func newTestScheduler(t *testing.T, src *fakeSource, rec *updateRecorder) *Scheduler {
	t.Helper()
	loc := testLocation(t)
	return New(Config{
		Source:   src,
		Interval: time.Hour, // ticks are driven manually via trigger
		Location: loc,
		Clock:    fixedClock{now: time.Date(2024, time.January, 15, 12, 0, 0, 0, loc)},
		Filter: core.FilterState{
			League:    core.LeagueAll,
			Bucket:    core.BucketAll,
			Direction: core.SortSoonest,
		},
		OnUpdate: rec.record,
	})
}

func TestScheduler_AtMostOneRoundInFlight(t *testing.T) {
	src := &fakeSource{block: make(chan struct{}), started: make(chan struct{}, 4)}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)
	defer s.Stop()

	ctx := context.Background()
	s.trigger(ctx, false)
	<-src.started // first round is now mid-fetch

	s.trigger(ctx, true) // fires while the first round is still fetching
	s.trigger(ctx, true)

	if got := src.calls(); got != 1 {
		t.Fatalf("expected exactly 1 network round, got %d", got)
	}

	close(src.block)
	rec.wait(t)
	if got := src.calls(); got != 1 {
		t.Errorf("dropped triggers must not be queued, got %d rounds", got)
	}
}

func TestScheduler_ForegroundThenBackground(t *testing.T) {
	src := &fakeSource{events: []core.Event{{ID: "a", StartsAt: "2024-01-15T19:00:00-05:00"}}}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)
	defer s.Stop()

	ctx := context.Background()
	s.trigger(ctx, false)
	first := rec.wait(t)
	if first.Background {
		t.Error("initial round must be foreground")
	}

	s.trigger(ctx, true)
	second := rec.wait(t)
	if !second.Background {
		t.Error("timer-driven round must be background")
	}
}

func TestScheduler_FilterChangeInvalidatesInFlightRound(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{
		block:   block,
		started: make(chan struct{}, 4),
		events:  []core.Event{{ID: "stale", League: "NBA", StartsAt: "2024-01-15T19:00:00-05:00"}},
	}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)
	defer s.Stop()

	ctx := context.Background()
	s.trigger(ctx, false)
	<-src.started // first round is now held open mid-fetch

	// League change: in-flight round becomes stale, a new foreground
	// round starts immediately.
	src.mu.Lock()
	src.block = nil
	src.events = []core.Event{{ID: "fresh", League: "NHL", StartsAt: "2024-01-15T19:00:00-05:00"}}
	src.mu.Unlock()

	next := core.FilterState{League: "NHL", Bucket: core.BucketAll, Direction: core.SortSoonest}
	s.UpdateFilter(ctx, next)

	u := rec.wait(t)
	if len(u.Result.Records) != 1 || u.Result.Records[0].Event.ID != "fresh" {
		t.Fatalf("expected the fresh round's data, got %+v", u.Result.Records)
	}

	// Release the stale round; its result must be discarded silently.
	close(block)
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("stale round must be discarded, got %d updates", rec.count())
	}
	snap, ok := s.LastSnapshot()
	if !ok || len(snap.Events) != 1 || snap.Events[0].ID != "fresh" {
		t.Errorf("stale round must not overwrite the snapshot, got %+v", snap.Events)
	}
}

func TestScheduler_SearchChangeRefiltersWithoutFetch(t *testing.T) {
	src := &fakeSource{events: []core.Event{
		{ID: "a", HomeTeam: "Celtics", AwayTeam: "Lakers", StartsAt: "2024-01-15T19:00:00-05:00"},
		{ID: "b", HomeTeam: "Knicks", AwayTeam: "Heat", StartsAt: "2024-01-15T20:00:00-05:00"},
	}}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)
	defer s.Stop()

	ctx := context.Background()
	s.trigger(ctx, false)
	rec.wait(t)
	before := src.calls()

	next := core.FilterState{League: core.LeagueAll, Search: "heat", Bucket: core.BucketAll, Direction: core.SortSoonest}
	s.UpdateFilter(ctx, next)

	u := rec.wait(t)
	if src.calls() != before {
		t.Errorf("search-only change must not hit the network: %d -> %d calls", before, src.calls())
	}
	if len(u.Result.Records) != 1 || u.Result.Records[0].Event.ID != "b" {
		t.Errorf("expected refiltered result [b], got %+v", u.Result.Records)
	}
	if !u.Background {
		t.Error("client-side refilter must not blank the display")
	}
}

func TestScheduler_FailedRoundKeepsSnapshot(t *testing.T) {
	src := &fakeSource{events: []core.Event{{ID: "a", StartsAt: "2024-01-15T19:00:00-05:00"}}}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)
	defer s.Stop()

	ctx := context.Background()
	s.trigger(ctx, false)
	rec.wait(t)

	src.mu.Lock()
	src.err = core.ErrFetch
	src.mu.Unlock()

	s.trigger(ctx, true)
	u := rec.wait(t)
	if !errors.Is(u.Err, core.ErrFetch) {
		t.Fatalf("expected fetch error in update, got %v", u.Err)
	}

	snap, ok := s.LastSnapshot()
	if !ok || len(snap.Events) != 1 {
		t.Error("failed round must leave the last-known-good snapshot intact")
	}
}

func TestScheduler_StopIsIdempotentAndFinal(t *testing.T) {
	src := &fakeSource{}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)

	s.Stop()
	s.Stop() // second call must not panic or resume anything

	s.trigger(context.Background(), false)
	if src.calls() != 0 {
		t.Error("triggers after Stop must be no-ops")
	}
}

func TestScheduler_LateResultAfterStopDiscarded(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{block: block, events: []core.Event{{ID: "a", StartsAt: "2024-01-15T19:00:00-05:00"}}}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)

	s.trigger(context.Background(), false)
	s.Stop()

	close(block)
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("result arriving after teardown must be discarded, got %d updates", rec.count())
	}
}

func TestScheduler_SeedWarmStart(t *testing.T) {
	src := &fakeSource{}
	rec := newUpdateRecorder()
	s := newTestScheduler(t, src, rec)
	defer s.Stop()

	loc := testLocation(t)
	s.Seed(core.Snapshot{
		Events:    []core.Event{{ID: "cached", StartsAt: "2024-01-15T19:00:00-05:00"}},
		FetchedAt: time.Date(2024, time.January, 15, 8, 0, 0, 0, loc),
	})

	state := core.FilterState{League: core.LeagueAll, Bucket: core.BucketAll, Direction: core.SortSoonest}
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, loc)
	result := s.Feed(state, now)
	if len(result.Records) != 1 || result.Records[0].Event.ID != "cached" {
		t.Errorf("expected seeded snapshot to serve the feed, got %+v", result.Records)
	}
}
