package tts

import "sync"

// Status represents the lifecycle state of the narration engine.
type Status int

const (
	// StatusUninitialized is the zero state before Initialize.
	StatusUninitialized Status = iota
	// StatusInitializing indicates collaborators are being prepared.
	StatusInitializing
	// StatusReady indicates the engine is idle and can start a session.
	StatusReady
	// StatusGenerating indicates the first chunk of a session is being
	// synthesized, before any audio has started.
	StatusGenerating
	// StatusSpeaking indicates audio is playing on the device.
	StatusSpeaking
	// StatusPaused indicates playback is suspended mid-session.
	StatusPaused
	// StatusError indicates an unrecoverable failure; Initialize clears it.
	StatusError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitializing:
		return "initializing"
	case StatusReady:
		return "ready"
	case StatusGenerating:
		return "generating"
	case StatusSpeaking:
		return "speaking"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// statusMachine guards status transitions. StatusError is reachable from
// every state; everything else follows the session lifecycle.
type statusMachine struct {
	mu          sync.Mutex
	current     Status
	transitions map[Status][]Status
	onChange    func(Status)
}

func newStatusMachine(onChange func(Status)) *statusMachine {
	return &statusMachine{
		current: StatusUninitialized,
		transitions: map[Status][]Status{
			StatusUninitialized: {StatusInitializing},
			StatusInitializing:  {StatusReady, StatusError},
			StatusReady:         {StatusGenerating, StatusInitializing, StatusError},
			StatusGenerating:    {StatusSpeaking, StatusReady, StatusError},
			StatusSpeaking:      {StatusPaused, StatusReady, StatusError},
			StatusPaused:        {StatusSpeaking, StatusReady, StatusError},
			StatusError:         {StatusInitializing},
		},
		onChange: onChange,
	}
}

// Current returns the current status.
func (m *statusMachine) Current() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Transition moves to the target status if the move is legal. The change
// callback runs while the machine lock is held so observers see transitions
// in order; it must not call back into the machine.
func (m *statusMachine) Transition(to Status) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == to {
		return true
	}
	legal := false
	for _, s := range m.transitions[m.current] {
		if s == to {
			legal = true
			break
		}
	}
	if !legal {
		return false
	}
	m.current = to
	if m.onChange != nil {
		m.onChange(to)
	}
	return true
}

// Is reports whether the current status equals s.
func (m *statusMachine) Is(s Status) bool {
	return m.Current() == s
}
