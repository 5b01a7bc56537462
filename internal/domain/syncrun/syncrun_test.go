package syncrun

import (
	"errors"
	"testing"
	"time"
)

func TestOutcomeConstructors(t *testing.T) {
	q := Queued("A")
	if q.Key() != "A" || q.Status() != StatusQueued || q.Err() != nil {
		t.Errorf("Queued = %+v", q)
	}

	s := Skipped("B", SkipAlreadyIndexed)
	if s.Status() != StatusSkipped || s.Reason() != SkipAlreadyIndexed {
		t.Errorf("Skipped = %+v", s)
	}

	boom := errors.New("boom")
	f := Fault("C", boom)
	if f.Status() != StatusFault || !errors.Is(f.Err(), boom) {
		t.Errorf("Fault = %+v", f)
	}
}

func TestReport_Record(t *testing.T) {
	var r Report
	r.Record(Queued("a"))
	r.Record(Queued("b"))
	r.Record(Skipped("", SkipMissingKey))
	r.Record(Fault("c", errors.New("x")))

	if r.ProcessedItems != 2 {
		t.Errorf("ProcessedItems = %d, want 2", r.ProcessedItems)
	}
	if r.SkippedItems != 1 {
		t.Errorf("SkippedItems = %d, want 1", r.SkippedItems)
	}
	if r.Errors != 1 {
		t.Errorf("Errors = %d, want 1", r.Errors)
	}
	if r.AddedItems != 0 {
		t.Errorf("AddedItems = %d, want 0", r.AddedItems)
	}
}

func TestReport_Finish(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Report{StartTime: start}
	r.Finish(start.Add(1500 * time.Millisecond))

	if r.Duration != "1.5s" {
		t.Errorf("Duration = %q, want 1.5s", r.Duration)
	}
	if r.Failed() {
		t.Error("Failed() = true for a report without error")
	}
}
