package models

// JobStatus is the lifecycle state of a room-creation job.
type JobStatus string

// Job lifecycle states. The wire representation is exactly these uppercase
// words; clients poll against them.
const (
	StatusQueued     JobStatus = "QUEUED"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether s is a final state.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// step. The only legal path is QUEUED → PROCESSING → (COMPLETED | FAILED).
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}
