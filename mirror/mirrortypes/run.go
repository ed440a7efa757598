package mirrortypes

import "time"

// RunState is the phase a sync run is in.
type RunState int

const (
	StateInit RunState = iota
	StateLoading
	StateDiffing
	StateIdle
	StateProcessing
	StateFinalizing
	StateDone
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoading:
		return "loading"
	case StateDiffing:
		return "diffing"
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ItemStatus is what happened to one WorkItem.
type ItemStatus string

const (
	ItemCommitted    ItemStatus = "committed"
	ItemFetchFailed  ItemStatus = "fetch-failed"
	ItemInvalid      ItemStatus = "invalid"
	ItemUploadFailed ItemStatus = "upload-failed"
)

// ItemReport is the outcome of one WorkItem.
type ItemReport struct {
	Item   WorkItem
	Status ItemStatus
	Kind   InvalidKind
	Reason string
	Size   int64
}

// ProgressReporter receives run progress as it happens. Calls are made from
// the orchestrating goroutine, one at a time.
type ProgressReporter interface {
	StateChanged(from, to RunState)
	ItemDone(report ItemReport)
}

// Result summarizes a sync run.
type Result struct {
	RunID     string
	State     RunState
	StartedAt time.Time
	Duration  time.Duration

	// Source is where the initial state came from: "snapshot" or "enumeration".
	Source string
	Known  int

	Candidates  int
	Missing     int
	Committed   int
	FetchFailed int
	Invalid     int
	Bytes       int64

	ArtifactsWritten int
	ArtifactsFailed  int

	PeakInFlight int
	PeakBuffered int

	Items []ItemReport
}

// Skipped returns the number of items skipped for recoverable reasons.
func (r *Result) Skipped() int {
	return r.FetchFailed + r.Invalid
}

// CleanupResult summarizes a cleanup run.
type CleanupResult struct {
	RunID      string
	DryRun     bool
	Duration   time.Duration
	Candidates int
	Stored     int

	// Stale are the mirrored keys no longer in the catalog, in lexical order.
	Stale          []string
	Deleted        int
	DeleteFailures int

	ArtifactsWritten int
	ArtifactsFailed  int
}
