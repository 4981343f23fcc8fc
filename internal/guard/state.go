package guard

// State is a step of a guarded run.
type State int

const (
	StateIdle State = iota
	StateAwaitingConfirmation
	StateConfirmed
	StateCancelled
	StateLocked
	StateRunning
	StateCompleted
	StateFailed
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	case StateLocked:
		return "locked"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}
