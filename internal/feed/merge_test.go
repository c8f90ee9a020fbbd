package feed

import (
	"testing"

	"github.com/sandevgo/courtside/internal/core"
)

func TestMerge_OneRecordPerEvent(t *testing.T) {
	t.Parallel()

	events := []core.Event{
		{ID: "a", League: "NBA"},
		{ID: "b", League: "NFL"},
		{ID: "c", League: "NHL"},
	}
	predictions := []core.Prediction{
		{EventID: "a", Confidence: 0.8},
		{EventID: "c", Confidence: 0.55},
		{EventID: "zz", Confidence: 0.99}, // orphan, silently dropped
	}

	records := Merge(events, predictions)

	if len(records) != len(events) {
		t.Fatalf("expected %d records, got %d", len(events), len(records))
	}
	if records[0].Prediction == nil || records[0].Prediction.Confidence != 0.8 {
		t.Errorf("event a should carry its prediction, got %+v", records[0].Prediction)
	}
	if records[1].Prediction != nil {
		t.Errorf("event b has no prediction, got %+v", records[1].Prediction)
	}
	if records[2].Prediction == nil || records[2].Prediction.Confidence != 0.55 {
		t.Errorf("event c should carry its prediction, got %+v", records[2].Prediction)
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	t.Parallel()

	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d records", len(got))
	}
	if got := Merge([]core.Event{{ID: "a"}}, nil); len(got) != 1 {
		t.Errorf("missing predictions must not shrink the result, got %d records", len(got))
	}
}

func TestMerge_RecordsDoNotAliasInput(t *testing.T) {
	t.Parallel()

	predictions := []core.Prediction{{EventID: "a", Confidence: 0.8}}
	records := Merge([]core.Event{{ID: "a"}}, predictions)

	predictions[0].Confidence = 0.1
	if records[0].Prediction.Confidence != 0.8 {
		t.Error("merged record must not alias the prediction slice from the fetch round")
	}
}
