package worker

import "sync"

// State is the lifecycle phase of the single worker.
type State int

const (
	// StateInitializing means startup (schema init) has not finished.
	StateInitializing State = iota
	// StateInitialized means startup finished and no cycle has run yet.
	StateInitialized
	// StateWorking means a cycle is currently in flight.
	StateWorking
	// StateAvailable means the last cycle settled and a new one may start.
	StateAvailable
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateWorking:
		return "working"
	case StateAvailable:
		return "available"
	}
	return "unknown"
}

// StateMachine guards the worker lifecycle. Valid transitions are
// Initializing→Initialized (startup), Initialized/Available→Working
// (cycle start), Working→Available (cycle end).
type StateMachine struct {
	mu    sync.Mutex
	state State
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateInitializing}
}

func (m *StateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// MarkInitialized records that startup completed.
func (m *StateMachine) MarkInitialized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateInitializing {
		m.state = StateInitialized
	}
}

// TryBegin attempts to start a cycle. It returns false while startup is
// pending or another cycle is in flight, which is the single-flight
// guarantee.
func (m *StateMachine) TryBegin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInitialized && m.state != StateAvailable {
		return false
	}
	m.state = StateWorking
	return true
}

// Finish releases the worker after a cycle, regardless of its outcome.
func (m *StateMachine) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAvailable
}
