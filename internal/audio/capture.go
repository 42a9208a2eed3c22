package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// CaptureDevice collects PCM instead of playing it, so a narration session
// can be rendered to a file. Every playback reports finished immediately;
// the session runs as fast as synthesis allows.
type CaptureDevice struct {
	mu         sync.Mutex
	nextID     int64
	sources    map[int64][]byte
	pcm        []byte
	sampleRate int
}

// ErrCaptureRateMismatch reports a buffer whose sample rate differs from
// previously captured audio.
var ErrCaptureRateMismatch = errors.New("audio: capture sample rate mismatch")

// NewCaptureDevice creates an empty capture sink.
func NewCaptureDevice() *CaptureDevice {
	return &CaptureDevice{sources: make(map[int64][]byte)}
}

func (d *CaptureDevice) LoadBuffer(pcm []byte, sampleRate int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(pcm) == 0 {
		return 0, errors.New("audio: empty PCM buffer")
	}
	if d.sampleRate == 0 {
		d.sampleRate = sampleRate
	} else if sampleRate != d.sampleRate {
		return 0, ErrCaptureRateMismatch
	}

	d.nextID++
	data := make([]byte, len(pcm))
	copy(data, pcm)
	d.sources[d.nextID] = data
	return d.nextID, nil
}

// Play appends the source's audio to the capture buffer. The returned
// playback handle is already finished.
func (d *CaptureDevice) Play(sourceID int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.sources[sourceID]
	if !ok {
		return 0, ErrUnknownSource
	}
	d.pcm = append(d.pcm, data...)
	d.nextID++
	return d.nextID, nil
}

func (d *CaptureDevice) SetPaused(playbackID int64, paused bool) error { return nil }

func (d *CaptureDevice) Stop(playbackID int64) error { return nil }

// Playing always reports false: captured audio is "played" the instant
// Play returns.
func (d *CaptureDevice) Playing(playbackID int64) bool { return false }

func (d *CaptureDevice) DisposeSource(sourceID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sources, sourceID)
	return nil
}

// SampleRate returns the rate of the captured audio, or 0 when nothing has
// been captured.
func (d *CaptureDevice) SampleRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sampleRate
}

// Len returns the number of captured PCM bytes.
func (d *CaptureDevice) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pcm)
}

// WriteWAV encodes the captured audio as a 16-bit mono WAV stream.
func (d *CaptureDevice) WriteWAV(w io.WriteSeeker) error {
	d.mu.Lock()
	pcm := d.pcm
	rate := d.sampleRate
	d.mu.Unlock()

	if len(pcm) == 0 {
		return errors.New("audio: nothing captured")
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(w, rate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
