package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/courtside/internal/core"
)

// Build runs the full pipeline for one refresh round: merge, filter,
// sort, and the empty-result fallback. It is a pure function of its
// inputs; the reference instant is always passed in, never read from the
// wall clock, so the same snapshot and filter always produce the same
// ordered output.
func Build(events []core.Event, predictions []core.Prediction, state core.FilterState, now time.Time, loc *time.Location) core.FeedResult {
	records := Merge(events, predictions)

	first := filterAndSort(records, state, now, loc)
	if len(first) > 0 || !state.Bucket.Narrow() {
		return core.FeedResult{Records: first, UsedFallback: false}
	}

	// An empty narrow bucket almost always means "nothing scheduled in
	// that window", not "show nothing". Widen to all days, keep league
	// and search intact, and tell the caller a substitution happened.
	widened := state
	widened.Bucket = core.BucketAll
	return core.FeedResult{
		Records:      filterAndSort(records, widened, now, loc),
		UsedFallback: true,
	}
}

// filterAndSort applies the conjunctive predicates and the chronological
// order. Events whose instant cannot be parsed are excluded: they cannot
// be bucketed or ordered.
func filterAndSort(records []core.MergedRecord, state core.FilterState, now time.Time, loc *time.Location) []core.MergedRecord {
	win := bucketWindowFor(state.Bucket, now, loc)
	needle := strings.ToLower(strings.TrimSpace(state.Search))

	type keyed struct {
		rec   core.MergedRecord
		start time.Time
	}

	kept := make([]keyed, 0, len(records))
	for _, rec := range records {
		start, ok := rec.Event.StartTime()
		if !ok {
			continue
		}
		if !leagueMatch(rec.Event, state.League) {
			continue
		}
		if !searchMatch(rec.Event, needle) {
			continue
		}
		civil, _ := eventCivilDate(rec.Event, loc)
		if !win.contains(civil) {
			continue
		}
		kept = append(kept, keyed{rec: rec, start: start})
	}

	// Stable sort keeps merge order for identical instants.
	sort.SliceStable(kept, func(i, j int) bool {
		if state.Direction == core.SortLatest {
			return kept[j].start.Before(kept[i].start)
		}
		return kept[i].start.Before(kept[j].start)
	})

	out := make([]core.MergedRecord, 0, len(kept))
	for _, k := range kept {
		out = append(out, k.rec)
	}
	return out
}

func leagueMatch(e core.Event, league string) bool {
	return league == "" || league == core.LeagueAll || e.League == league
}

func searchMatch(e core.Event, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.HomeTeam), needle) ||
		strings.Contains(strings.ToLower(e.AwayTeam), needle)
}

// bucketWindow is an inclusive civil-date range. Canonical YYYY-MM-DD
// strings compare lexicographically in date order, so containment is a
// pair of string comparisons.
type bucketWindow struct {
	from, to string // empty bounds mean unbounded
}

func (w bucketWindow) contains(civil string) bool {
	if w.from != "" && civil < w.from {
		return false
	}
	if w.to != "" && civil > w.to {
		return false
	}
	return true
}

// bucketWindowFor computes the window for a bucket from the reference
// instant. Day offsets use calendar arithmetic in the reference zone, not
// hour arithmetic on the instant, so the window does not drift across a
// daylight-saving transition.
func bucketWindowFor(bucket core.DayBucket, now time.Time, loc *time.Location) bucketWindow {
	ref := now.In(loc)
	today := ref.Format(core.CivilDateLayout)

	switch bucket {
	case core.BucketToday:
		return bucketWindow{from: today, to: today}
	case core.BucketTomorrow:
		tomorrow := ref.AddDate(0, 0, 1).Format(core.CivilDateLayout)
		return bucketWindow{from: tomorrow, to: tomorrow}
	case core.BucketThisWeek:
		weekEnd := ref.AddDate(0, 0, 7).Format(core.CivilDateLayout)
		return bucketWindow{from: today, to: weekEnd}
	default: // BucketAll
		return bucketWindow{}
	}
}
