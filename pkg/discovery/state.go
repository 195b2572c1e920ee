package discovery

// State is the step a Loop is currently in.
type State int32

const (
	StateIdle State = iota
	StateGenerating
	StateFiltering
	StateProbing
	StateReporting
	// StateExhausted is terminal: the run ended without cancellation because
	// no further candidate could be produced.
	StateExhausted
	// StateStopped is terminal: the run's context ended.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateFiltering:
		return "filtering"
	case StateProbing:
		return "probing"
	case StateReporting:
		return "reporting"
	case StateExhausted:
		return "exhausted"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
