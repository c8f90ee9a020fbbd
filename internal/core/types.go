package core

import "time"

const (
	CourtsideName      = "Courtside"
	CourtsideUserAgent = "Courtside-Feed/0.1"
	CourtsideVersion   = "0.1.0"

	// CivilDateLayout is the canonical calendar-day format used for all
	// day bucketing, always rendered in the reference timezone.
	CivilDateLayout = "2006-01-02"

	// LeagueAll disables league filtering.
	LeagueAll = "all"
)

// Event is a schedulable game fetched from the remote API. Events are
// immutable once fetched and replaced wholesale on every refresh round.
type Event struct {
	ID       string `json:"id"`
	League   string `json:"league"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	// StartsAt is the raw source timestamp (RFC 3339). It may be
	// unparseable; such events are unscheduleable and never appear in
	// day-bucketed or sorted output.
	StartsAt string `json:"starts_at"`
	// LocalDate is an optional pre-computed civil date (YYYY-MM-DD)
	// carried through from the data source. When present it wins over
	// recomputing the date from StartsAt, so two timezone conversions
	// cannot disagree near midnight.
	LocalDate string `json:"local_date,omitempty"`
}

// StartTime parses the source timestamp. ok is false for events that
// cannot be scheduled.
func (e Event) StartTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, e.StartsAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Prediction is a model-derived confidence attached to an Event by ID.
// Zero or one prediction exists per event; absence is valid.
type Prediction struct {
	EventID     string    `json:"event_id"`
	Confidence  float64   `json:"confidence"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// MergedRecord pairs an Event with its Prediction, if any. Records are
// rebuilt from scratch on every pipeline run so stale references cannot
// leak across refresh rounds.
type MergedRecord struct {
	Event      Event       `json:"event"`
	Prediction *Prediction `json:"prediction,omitempty"`
}

// DayBucket is a coarse temporal filter over civil dates.
type DayBucket string

const (
	BucketToday    DayBucket = "today"
	BucketTomorrow DayBucket = "tomorrow"
	BucketThisWeek DayBucket = "thisWeek"
	BucketAll      DayBucket = "all"
)

// Narrow reports whether the bucket is eligible for the empty-result
// fallback (everything except BucketAll).
func (b DayBucket) Narrow() bool {
	return b != BucketAll
}

// SortDirection orders records chronologically by event start time.
type SortDirection string

const (
	SortSoonest SortDirection = "soonest"
	SortLatest  SortDirection = "latest"
)

// FilterState is the caller-owned filter configuration, passed by value
// into every pipeline run. The engine never holds mutable filter state.
type FilterState struct {
	League    string        `json:"league"`
	Search    string        `json:"search"`
	Bucket    DayBucket     `json:"bucket"`
	Direction SortDirection `json:"direction"`
}

// RequiresRefetch reports whether switching from s to next needs a new
// network round. Search-text changes re-filter the last snapshot
// client-side and never hit the network.
func (s FilterState) RequiresRefetch(next FilterState) bool {
	return s.League != next.League ||
		s.Bucket != next.Bucket ||
		s.Direction != next.Direction
}

// FeedResult is the single output contract of one pipeline run.
type FeedResult struct {
	Records      []MergedRecord `json:"records"`
	UsedFallback bool           `json:"used_fallback"`
}

// Snapshot is the raw data of the last successful fetch round. It is the
// only state retained between rounds and is replaced atomically.
type Snapshot struct {
	Events      []Event      `json:"events"`
	Predictions []Prediction `json:"predictions"`
	FetchedAt   time.Time    `json:"fetched_at"`
}
