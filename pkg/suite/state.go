package suite

// State is the lifecycle phase of a Run.
type State int

const (
	// StateNotStarted means no hook or test has executed yet.
	StateNotStarted State = iota
	// StateBeforeAllRunning means before-all hooks are executing.
	StateBeforeAllRunning
	// StateTestsRunning means before-all hooks finished and
	// tests may execute.
	StateTestsRunning
	// StateAfterAllRunning means teardown has fired and
	// after-all hooks are executing.
	StateAfterAllRunning
	// StateDone means teardown finished.
	StateDone
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateBeforeAllRunning:
		return "before_all_running"
	case StateTestsRunning:
		return "tests_running"
	case StateAfterAllRunning:
		return "after_all_running"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
