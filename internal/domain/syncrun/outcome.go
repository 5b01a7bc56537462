package syncrun

// Status is the processing outcome of a single item in a sync batch.
type Status string

// Item status values.
const (
	StatusQueued  Status = "queued"
	StatusSkipped Status = "skipped"
	StatusFault   Status = "fault"
)

// SkipReason explains why an item was left out without error.
type SkipReason string

// Skip reasons.
const (
	SkipMissingKey     SkipReason = "missing_key"
	SkipAlreadyIndexed SkipReason = "already_indexed"
	SkipEmptyText      SkipReason = "empty_text"
)

// Outcome is the result of examining one item before the batch upsert.
type Outcome struct {
	key    string
	status Status
	reason SkipReason
	err    error
}

// Queued marks an item as ready for upsert.
func Queued(key string) Outcome { return Outcome{key: key, status: StatusQueued} }

// Skipped marks an item as intentionally left out.
func Skipped(key string, reason SkipReason) Outcome {
	return Outcome{key: key, status: StatusSkipped, reason: reason}
}

// Fault marks an item as failed.
func Fault(key string, err error) Outcome { return Outcome{key: key, status: StatusFault, err: err} }

// Key returns the item key, possibly empty.
func (o Outcome) Key() string { return o.key }

// Status returns the outcome kind.
func (o Outcome) Status() Status { return o.status }

// Reason returns the skip reason for skipped items.
func (o Outcome) Reason() SkipReason { return o.reason }

// Err returns the fault, if any.
func (o Outcome) Err() error { return o.err }
