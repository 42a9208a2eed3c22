package audio

import (
	"errors"
	"sync"
	"time"
)

// MockDevice simulates timed playback without touching real audio hardware.
// Playback "finishes" when wall time passes the buffer's play duration,
// scaled by TimeScale so tests run fast. It records enough history to
// verify the engine's resource and ordering guarantees.
type MockDevice struct {
	// TimeScale multiplies simulated play durations; 0.01 plays a second
	// of audio in ten milliseconds. Zero means real time.
	TimeScale float64

	// Failure injection
	FailLoad bool
	FailPlay bool

	mu        sync.Mutex
	nextID    int64
	sources   map[int64]*mockSource
	playbacks map[int64]*mockPlayback

	loadCalls    int
	playCalls    int
	disposeCalls int
	stopCalls    int
	overlapped   bool
}

type mockSource struct {
	pcm      []byte
	rate     int
	disposed bool
}

type mockPlayback struct {
	source   int64
	start    time.Time
	duration time.Duration
	paused   bool
	pausedAt time.Time
	idle     time.Duration
	stopped  bool
}

// NewMockDevice creates a mock running at the given time scale.
func NewMockDevice(timeScale float64) *MockDevice {
	return &MockDevice{
		TimeScale: timeScale,
		sources:   make(map[int64]*mockSource),
		playbacks: make(map[int64]*mockPlayback),
	}
}

func (d *MockDevice) LoadBuffer(pcm []byte, sampleRate int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loadCalls++
	if d.FailLoad {
		return 0, errors.New("mock: load failure")
	}
	if len(pcm) == 0 {
		return 0, errors.New("mock: empty PCM buffer")
	}

	d.nextID++
	id := d.nextID
	data := make([]byte, len(pcm))
	copy(data, pcm)
	d.sources[id] = &mockSource{pcm: data, rate: sampleRate}
	return id, nil
}

func (d *MockDevice) Play(sourceID int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.playCalls++
	if d.FailPlay {
		return 0, errors.New("mock: play failure")
	}
	src, ok := d.sources[sourceID]
	if !ok || src.disposed {
		return 0, ErrUnknownSource
	}

	// The engine must never start a second playback while one is active.
	now := time.Now()
	for _, pb := range d.playbacks {
		if d.activeLocked(pb, now) {
			d.overlapped = true
		}
	}

	duration := EstimateDuration(len(src.pcm), src.rate)
	if d.TimeScale > 0 {
		duration = time.Duration(float64(duration) * d.TimeScale)
	}

	d.nextID++
	id := d.nextID
	d.playbacks[id] = &mockPlayback{source: sourceID, start: now, duration: duration}
	return id, nil
}

func (d *MockDevice) SetPaused(playbackID int64, paused bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pb, ok := d.playbacks[playbackID]
	if !ok {
		return ErrUnknownPlayback
	}
	now := time.Now()
	if paused && !pb.paused {
		pb.paused = true
		pb.pausedAt = now
	} else if !paused && pb.paused {
		pb.paused = false
		pb.idle += now.Sub(pb.pausedAt)
	}
	return nil
}

func (d *MockDevice) Stop(playbackID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pb, ok := d.playbacks[playbackID]
	if !ok {
		return ErrUnknownPlayback
	}
	d.stopCalls++
	pb.stopped = true
	return nil
}

func (d *MockDevice) Playing(playbackID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pb, ok := d.playbacks[playbackID]
	if !ok {
		return false
	}
	return d.activeLocked(pb, time.Now())
}

func (d *MockDevice) DisposeSource(sourceID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	src, ok := d.sources[sourceID]
	if !ok || src.disposed {
		return ErrUnknownSource
	}
	d.disposeCalls++
	src.disposed = true
	return nil
}

func (d *MockDevice) activeLocked(pb *mockPlayback, now time.Time) bool {
	if pb.stopped {
		return false
	}
	if pb.paused {
		return true
	}
	return now.Sub(pb.start)-pb.idle < pb.duration
}

// PlayCalls returns how many times Play was invoked.
func (d *MockDevice) PlayCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playCalls
}

// StopCalls returns how many times Stop was invoked.
func (d *MockDevice) StopCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopCalls
}

// Overlapped reports whether two playbacks were ever active at once.
func (d *MockDevice) Overlapped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlapped
}

// UndisposedSources returns the number of loaded sources never disposed.
func (d *MockDevice) UndisposedSources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, src := range d.sources {
		if !src.disposed {
			n++
		}
	}
	return n
}

// AnyPaused reports whether any playback is currently device-paused.
func (d *MockDevice) AnyPaused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, pb := range d.playbacks {
		if pb.paused && !pb.stopped {
			return true
		}
	}
	return false
}
