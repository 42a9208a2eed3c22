// Package audio provides audio output devices for the narration engine:
// a cross-platform implementation over oto and an in-memory mock for tests.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	// ErrUnknownSource is returned for a handle that was never loaded or
	// was already disposed.
	ErrUnknownSource = errors.New("unknown source handle")

	// ErrUnknownPlayback is returned for a playback handle that is not
	// active.
	ErrUnknownPlayback = errors.New("unknown playback handle")

	// ErrSampleRateMismatch is returned when a buffer's sample rate does
	// not match the rate the device was opened with.
	ErrSampleRateMismatch = errors.New("buffer sample rate does not match device")

	// ErrDeviceClosed is returned after Close.
	ErrDeviceClosed = errors.New("audio device is closed")
)

// Device plays 16-bit mono PCM through the platform audio backend via oto.
// Buffers are registered as sources and played one at a time by the engine;
// the source's data is held alive until it is disposed, which prevents the
// GC from collecting audio mid-playback.
type Device struct {
	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate int
	closed     bool

	nextID    int64
	sources   map[int64]*source
	playbacks map[int64]*playback
}

type source struct {
	data []byte
}

type playback struct {
	player *oto.Player
	source int64
}

// NewDevice opens the platform audio backend at the given sample rate,
// mono, 16-bit signed little endian.
func NewDevice(sampleRate int) (*Device, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio context: %w", err)
	}
	<-ready

	return &Device{
		ctx:        ctx,
		sampleRate: sampleRate,
		sources:    make(map[int64]*source),
		playbacks:  make(map[int64]*playback),
	}, nil
}

// LoadBuffer registers a PCM buffer and returns its source handle. The
// buffer is copied; the caller may reuse its slice.
func (d *Device) LoadBuffer(pcm []byte, sampleRate int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDeviceClosed
	}
	if len(pcm) == 0 {
		return 0, errors.New("empty PCM buffer")
	}
	if sampleRate != d.sampleRate {
		return 0, fmt.Errorf("%w: got %d, device is %d", ErrSampleRateMismatch, sampleRate, d.sampleRate)
	}

	data := make([]byte, len(pcm))
	copy(data, pcm)

	d.nextID++
	id := d.nextID
	d.sources[id] = &source{data: data}
	return id, nil
}

// Play starts a source and returns the playback handle.
func (d *Device) Play(sourceID int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDeviceClosed
	}
	src, ok := d.sources[sourceID]
	if !ok {
		return 0, ErrUnknownSource
	}

	player := d.ctx.NewPlayer(bytes.NewReader(src.data))
	player.Play()

	d.nextID++
	id := d.nextID
	d.playbacks[id] = &playback{player: player, source: sourceID}
	return id, nil
}

// SetPaused suspends or resumes a playback.
func (d *Device) SetPaused(playbackID int64, paused bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pb, ok := d.playbacks[playbackID]
	if !ok {
		return ErrUnknownPlayback
	}
	if paused {
		pb.player.Pause()
	} else {
		pb.player.Play()
	}
	return nil
}

// Stop halts a playback immediately and releases the underlying player.
func (d *Device) Stop(playbackID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pb, ok := d.playbacks[playbackID]
	if !ok {
		return ErrUnknownPlayback
	}
	pb.player.Pause()
	delete(d.playbacks, playbackID)
	return pb.player.Close()
}

// Playing reports whether a playback is still producing audio. Unknown or
// finished handles report false.
func (d *Device) Playing(playbackID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pb, ok := d.playbacks[playbackID]
	if !ok {
		return false
	}
	return pb.player.IsPlaying()
}

// DisposeSource releases a source's buffer, closing any playback that still
// references it.
func (d *Device) DisposeSource(sourceID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sources[sourceID]; !ok {
		return ErrUnknownSource
	}
	for id, pb := range d.playbacks {
		if pb.source == sourceID {
			pb.player.Pause()
			_ = pb.player.Close()
			delete(d.playbacks, id)
		}
	}
	delete(d.sources, sourceID)
	return nil
}

// SampleRate returns the rate the device was opened with.
func (d *Device) SampleRate() int {
	return d.sampleRate
}

// Close stops all playback and marks the device closed. The oto context
// itself has no close operation in v3; it is dropped for the GC.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	for id, pb := range d.playbacks {
		pb.player.Pause()
		_ = pb.player.Close()
		delete(d.playbacks, id)
	}
	d.sources = make(map[int64]*source)
	d.ctx = nil
	d.closed = true
	return nil
}

// EstimateDuration reports the play time of a PCM byte buffer at a rate,
// useful for logging and for mock timing.
func EstimateDuration(pcmBytes, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := pcmBytes / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
