package dispatch

import "fmt"

// Status is a target's lifecycle state.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransition reports whether the state machine allows s → to. A pending
// target may fail directly when it cannot be started (unknown provider,
// missing credential, cancellation).
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusRunning || to == StatusError
	case StatusRunning:
		return to == StatusSuccess || to == StatusError
	}
	return false
}

// ErrInvalidTransition is returned for a transition the state machine forbids.
type ErrInvalidTransition struct {
	From, To Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid target transition %s → %s", e.From, e.To)
}
