package tts

import (
	"sync"
	"sync/atomic"
)

// playSession tracks the cancellation flag and the device resources of one
// narration pass. The engine owns exactly one chunk's source/playback pair
// at a time; the pair is released before the next chunk is loaded.
type playSession struct {
	stop atomic.Bool

	mu        sync.Mutex
	source    int64
	playback  int64
	hasActive bool
	paused    bool
}

func (s *playSession) stopped() bool {
	return s.stop.Load()
}

// setActive records the handles of the chunk now playing.
func (s *playSession) setActive(source, playback int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.playback = playback
	s.hasActive = true
}

// playing reports whether the active playback is still producing audio.
func (s *playSession) playing(d Device) bool {
	s.mu.Lock()
	playback, ok := s.playback, s.hasActive
	s.mu.Unlock()
	if !ok {
		return false
	}
	return d.Playing(playback)
}

// setPaused toggles the device pause primitive on the active playback, if
// any, and remembers the desired state for the control loop.
func (s *playSession) setPaused(d Device, paused bool) error {
	s.mu.Lock()
	s.paused = paused
	playback, ok := s.playback, s.hasActive
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := d.SetPaused(playback, paused); err != nil {
		return err
	}
	return nil
}

// release disposes the active source after its playback finished normally.
// Idempotent: a session halted by Stop has already released everything.
func (s *playSession) release(d Device) {
	s.mu.Lock()
	source, ok := s.source, s.hasActive
	s.hasActive = false
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = d.DisposeSource(source)
}

// haltDevice synchronously stops the active playback and disposes its
// source, so no audio bleeds past a stop. Idempotent.
func (s *playSession) haltDevice(d Device) {
	s.mu.Lock()
	source, playback, ok := s.source, s.playback, s.hasActive
	s.hasActive = false
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = d.Stop(playback)
	_ = d.DisposeSource(source)
}
