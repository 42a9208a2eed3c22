package tts

import "testing"

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusUninitialized: "uninitialized",
		StatusInitializing:  "initializing",
		StatusReady:         "ready",
		StatusGenerating:    "generating",
		StatusSpeaking:      "speaking",
		StatusPaused:        "paused",
		StatusError:         "error",
		Status(99):          "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestStatusMachineLifecycle(t *testing.T) {
	m := newStatusMachine(nil)

	if m.Current() != StatusUninitialized {
		t.Fatalf("initial status = %s", m.Current())
	}

	path := []Status{
		StatusInitializing,
		StatusReady,
		StatusGenerating,
		StatusSpeaking,
		StatusPaused,
		StatusSpeaking,
		StatusReady,
	}
	for _, s := range path {
		if !m.Transition(s) {
			t.Fatalf("transition %s -> %s rejected", m.Current(), s)
		}
	}
}

func TestStatusMachineRejectsIllegalMoves(t *testing.T) {
	cases := []struct {
		from, to Status
	}{
		{StatusUninitialized, StatusReady},
		{StatusUninitialized, StatusSpeaking},
		{StatusReady, StatusSpeaking},
		{StatusReady, StatusPaused},
		{StatusGenerating, StatusPaused},
		{StatusError, StatusReady},
		{StatusError, StatusSpeaking},
	}
	for _, tc := range cases {
		m := newStatusMachine(nil)
		m.current = tc.from
		if m.Transition(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
		if m.Current() != tc.from {
			t.Errorf("rejected transition moved state to %s", m.Current())
		}
	}
}

func TestStatusMachineErrorReachableFromAnywhere(t *testing.T) {
	active := []Status{StatusInitializing, StatusReady, StatusGenerating, StatusSpeaking, StatusPaused}
	for _, from := range active {
		m := newStatusMachine(nil)
		m.current = from
		if !m.Transition(StatusError) {
			t.Errorf("%s -> error should be legal", from)
		}
	}

	// Only re-initialization leaves the error state.
	m := newStatusMachine(nil)
	m.current = StatusError
	if !m.Transition(StatusInitializing) {
		t.Error("error -> initializing should be legal")
	}
}

func TestStatusMachineSameStateNoOp(t *testing.T) {
	var changes []Status
	m := newStatusMachine(func(s Status) { changes = append(changes, s) })

	m.Transition(StatusInitializing)
	if !m.Transition(StatusInitializing) {
		t.Error("same-state transition should report success")
	}
	if len(changes) != 1 {
		t.Errorf("same-state transition fired the callback: %v", changes)
	}
}

func TestStatusMachineNotifiesOnChange(t *testing.T) {
	var changes []Status
	m := newStatusMachine(func(s Status) { changes = append(changes, s) })

	m.Transition(StatusInitializing)
	m.Transition(StatusReady)
	m.Transition(StatusSpeaking) // illegal, no callback

	want := []Status{StatusInitializing, StatusReady}
	if len(changes) != len(want) {
		t.Fatalf("callbacks = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("callback %d = %s, want %s", i, changes[i], want[i])
		}
	}
}
