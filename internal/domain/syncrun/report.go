package syncrun

import "time"

// Report summarises one sync run. It is returned to the caller and never stored.
type Report struct {
	TotalItems     int       `json:"total_items"`
	ProcessedItems int       `json:"processed_items"`
	AddedItems     int       `json:"added_items"`
	UpdatedItems   int       `json:"updated_items"`
	SkippedItems   int       `json:"skipped_items"`
	Errors         int       `json:"errors"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       string    `json:"duration"`
	Error          string    `json:"error,omitempty"`
}

// Record folds one item outcome into the running totals.
// Queued items are counted as processed; added is settled per batch.
func (r *Report) Record(o Outcome) {
	switch o.Status() {
	case StatusQueued:
		r.ProcessedItems++
	case StatusSkipped:
		r.SkippedItems++
	case StatusFault:
		r.Errors++
	}
}

// Finish stamps the end time and display duration.
func (r *Report) Finish(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime).String()
}

// Failed reports whether the run aborted.
func (r *Report) Failed() bool { return r.Error != "" }
