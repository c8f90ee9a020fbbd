package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/courtside/internal/core"
	"github.com/sandevgo/courtside/internal/feed"
	"github.com/sandevgo/courtside/pkg/log"
)

// Update is delivered to the consumer after every completed round and
// after every client-side refilter.
//
// Background tells the consumer how to apply the update: a foreground
// update may replace the whole view (full loading indicator beforehand),
// a background one must not clear currently displayed data. Err is set on
// failed rounds; the previous result stays valid and on display.
type Update struct {
	Result     core.FeedResult
	Background bool
	Err        error
}

// Config wires a Scheduler. OnUpdate is invoked from the scheduler's own
// goroutines and must not block for long.
type Config struct {
	Source     core.EventSource
	Interval   time.Duration
	Location   *time.Location
	Clock      core.Clock
	FetchLimit int
	Filter     core.FilterState
	OnUpdate   func(Update)
}

// Scheduler owns the recurring refresh cycle around the feed pipeline.
//
// It is a two-state machine (idle / refreshing). Timer triggers that fire
// while a round is in flight are dropped, never queued. A filter change
// that needs a refetch starts a new round immediately and invalidates the
// in-flight one: the stale round's result is detected by generation at
// completion time and discarded. After Stop, late results are discarded
// too, and Stop itself is idempotent.
type Scheduler struct {
	source   core.EventSource
	interval time.Duration
	loc      *time.Location
	clock    core.Clock
	limit    int
	onUpdate func(Update)

	mu         sync.Mutex
	state      core.FilterState
	gen        uint64
	refreshing bool
	stopped    bool
	hasData    bool
	snapshot   core.Snapshot

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = core.SystemClock{}
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		source:   cfg.Source,
		interval: interval,
		loc:      loc,
		clock:    clock,
		limit:    cfg.FetchLimit,
		onUpdate: cfg.OnUpdate,
		state:    cfg.Filter,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one immediate foreground round, then background rounds on
// the interval until the context is cancelled or Stop is called. It
// blocks, fitting the srv.Service contract.
func (s *Scheduler) Start(ctx context.Context) error {
	s.trigger(ctx, false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.trigger(ctx, true)
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-s.stopCh:
			return nil
		}
	}
}

// Stop cancels the timer and marks the scheduler torn down. Safe to call
// any number of times; an in-flight round's result is discarded at
// completion rather than applied.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.stopCh)
	})
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.Stop()
	return nil
}

// UpdateFilter installs a new filter state. Changes to league, bucket, or
// direction start a fresh foreground round (any in-flight round becomes
// stale). A search-text-only change re-filters the last snapshot
// synchronously without a network round.
func (s *Scheduler) UpdateFilter(ctx context.Context, next core.FilterState) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.state = next

	if !prev.RequiresRefetch(next) {
		if !s.hasData {
			s.mu.Unlock()
			return
		}
		result := feed.Build(s.snapshot.Events, s.snapshot.Predictions, next, s.clock.Now(), s.loc)
		s.mu.Unlock()
		s.emit(Update{Result: result, Background: true})
		return
	}

	// Invalidate whatever is in flight and take over the refreshing slot.
	s.gen++
	gen := s.gen
	s.refreshing = true
	state := s.state
	s.mu.Unlock()

	go s.runRound(ctx, gen, state, false)
}

// Feed runs the pipeline over the last snapshot. Pure given the snapshot:
// filter state and reference instant are explicit inputs.
func (s *Scheduler) Feed(state core.FilterState, now time.Time) core.FeedResult {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	return feed.Build(snap.Events, snap.Predictions, state, now, s.loc)
}

// Seed installs a persisted snapshot for warm starts. It is a no-op once
// live data has arrived.
func (s *Scheduler) Seed(snap core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.hasData {
		return
	}
	s.snapshot = snap
	s.hasData = true
}

// LastSnapshot returns the raw data of the most recent successful round.
func (s *Scheduler) LastSnapshot() (core.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.hasData
}

// trigger starts a round unless one is already in flight (dropped, not
// queued) or the scheduler is stopped.
func (s *Scheduler) trigger(ctx context.Context, background bool) {
	s.mu.Lock()
	if s.stopped || s.refreshing {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	gen := s.gen
	state := s.state
	s.mu.Unlock()

	go s.runRound(ctx, gen, state, background)
}

func (s *Scheduler) runRound(ctx context.Context, gen uint64, state core.FilterState, background bool) {
	snap, err := s.fetch(ctx, state)

	s.mu.Lock()
	if gen != s.gen {
		// A newer round owns the refreshing slot; this result is stale.
		s.mu.Unlock()
		log.FromCtx(ctx).Debug().Uint64("gen", gen).Msg("discarding stale refresh round")
		return
	}
	s.refreshing = false
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		log.FromCtx(ctx).Warn().Err(err).Bool("background", background).Msg("refresh round failed")
		s.emit(Update{Background: background, Err: err})
		return
	}

	s.snapshot = snap
	s.hasData = true
	result := feed.Build(snap.Events, snap.Predictions, s.state, s.clock.Now(), s.loc)
	s.mu.Unlock()

	s.emit(Update{Result: result, Background: background})
}

// fetch pulls both collections for one round. The league pre-filter is
// pushed to the source since the fallback never changes it; the day
// constraint is not, because a widened fallback pass needs off-day events
// in the snapshot.
func (s *Scheduler) fetch(ctx context.Context, state core.FilterState) (core.Snapshot, error) {
	q := core.EventsQuery{IncludePredictions: true, Limit: s.limit}
	if state.League != "" && state.League != core.LeagueAll {
		q.League = state.League
	}

	events, err := s.source.FetchEvents(ctx, q)
	if err != nil {
		return core.Snapshot{}, err
	}
	predictions, err := s.source.FetchPredictions(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}

	return core.Snapshot{
		Events:      events,
		Predictions: predictions,
		FetchedAt:   s.clock.Now(),
	}, nil
}

func (s *Scheduler) emit(u Update) {
	if s.onUpdate != nil {
		s.onUpdate(u)
	}
}
