package feed

import "github.com/sandevgo/courtside/internal/core"

// Merge joins events with their predictions by event ID. Exactly one
// record is produced per event; a missing prediction is valid and leaves
// the pointer nil. Predictions without a matching event carry no
// independent identity here and are dropped.
//
// Both inputs can run to the hundreds and this executes every refresh
// round, so the join is index-first rather than a nested scan.
func Merge(events []core.Event, predictions []core.Prediction) []core.MergedRecord {
	index := make(map[string]core.Prediction, len(predictions))
	for _, p := range predictions {
		index[p.EventID] = p
	}

	records := make([]core.MergedRecord, 0, len(events))
	for _, e := range events {
		rec := core.MergedRecord{Event: e}
		if p, ok := index[e.ID]; ok {
			// Copy into a fresh allocation so records never alias
			// prediction storage from a previous round.
			pred := p
			rec.Prediction = &pred
		}
		records = append(records, rec)
	}
	return records
}
