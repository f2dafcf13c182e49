package worker

import "testing"

func TestStateMachineLifecycle(t *testing.T) {
	m := NewStateMachine()

	if got := m.Current(); got != StateInitializing {
		t.Fatalf("initial state = %v, want initializing", got)
	}
	if m.TryBegin() {
		t.Fatalf("cycle must not start while initializing")
	}

	m.MarkInitialized()
	if got := m.Current(); got != StateInitialized {
		t.Fatalf("state = %v, want initialized", got)
	}

	if !m.TryBegin() {
		t.Fatalf("cycle should start from initialized")
	}
	if got := m.Current(); got != StateWorking {
		t.Fatalf("state = %v, want working", got)
	}

	// Single flight: a second begin while working must fail.
	if m.TryBegin() {
		t.Fatalf("second cycle must not start while working")
	}

	m.Finish()
	if got := m.Current(); got != StateAvailable {
		t.Fatalf("state = %v, want available", got)
	}

	if !m.TryBegin() {
		t.Fatalf("cycle should start from available")
	}
}

func TestMarkInitializedOnlyFromInitializing(t *testing.T) {
	m := NewStateMachine()
	m.MarkInitialized()
	m.TryBegin()

	// A late init signal must not clobber an in-flight cycle.
	m.MarkInitialized()
	if got := m.Current(); got != StateWorking {
		t.Fatalf("state = %v, want working", got)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateInitializing: "initializing",
		StateInitialized:  "initialized",
		StateWorking:      "working",
		StateAvailable:    "available",
		State(42):         "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
