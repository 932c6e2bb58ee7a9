package payment

// Status is the state of one push-payment attempt. COMPLETED, FAILED,
// CANCELLED and TIMED_OUT are terminal.
type Status string

const (
	StatusInitiated Status = "INITIATED"
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusTimedOut  Status = "TIMED_OUT"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

func CanTransitionTo(from, to Status) bool {
	switch from {
	case StatusInitiated:
		return to == StatusPending
	case StatusPending:
		return to.IsTerminal()
	default:
		return false
	}
}
