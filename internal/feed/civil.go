package feed

import (
	"time"

	"github.com/sandevgo/courtside/internal/core"
)

// CivilDate maps an instant to the calendar day it falls on in the given
// reference timezone, as YYYY-MM-DD. Pure function of (instant, zone);
// the viewer's local timezone never participates.
func CivilDate(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format(core.CivilDateLayout)
}

// eventCivilDate resolves the calendar day for an event. A pre-supplied
// LocalDate from the source wins over recomputation so two independent
// timezone conversions cannot land the same game on different days near
// midnight. ok is false when the event is unscheduleable.
func eventCivilDate(e core.Event, loc *time.Location) (string, bool) {
	start, ok := e.StartTime()
	if !ok {
		return "", false
	}
	if e.LocalDate != "" {
		return e.LocalDate, true
	}
	return CivilDate(start, loc), true
}
