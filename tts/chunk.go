package tts

import (
	"encoding/binary"
	"time"
)

// AudioChunk is the audio produced by one synthesis call: mono 16-bit PCM
// samples with their sample rate. Chunks are queued briefly, played once,
// and their device resources disposed afterwards.
type AudioChunk struct {
	PCM        []int16
	SampleRate int
	Duration   time.Duration
}

// NewAudioChunk builds a chunk and derives its duration from the sample
// count and rate.
func NewAudioChunk(pcm []int16, sampleRate int) *AudioChunk {
	return &AudioChunk{
		PCM:        pcm,
		SampleRate: sampleRate,
		Duration:   PCMDuration(len(pcm), sampleRate),
	}
}

// PCMDuration computes the play time of a mono sample count at a rate.
func PCMDuration(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// Bytes encodes the samples as little-endian 16-bit PCM, the layout the
// audio device consumes.
func (c *AudioChunk) Bytes() []byte {
	out := make([]byte, len(c.PCM)*2)
	for i, s := range c.PCM {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// PCMFromBytes decodes little-endian 16-bit PCM back into samples. A
// trailing odd byte is ignored.
func PCMFromBytes(data []byte) []int16 {
	n := len(data) / 2
	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		pcm[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return pcm
}
