package tts

import (
	"strings"

	"github.com/charmbracelet/log"
)

// synthAdapter wraps the Synthesizer with the session's soft-failure
// contract: empty input and engine failures both yield nil, meaning "nothing
// to play for this batch, keep going". A single bad batch never takes down
// a session.
type synthAdapter struct {
	synth  Synthesizer
	logger *log.Logger
}

func (a *synthAdapter) generate(input string, isPhonemes bool, voice string, speed float64) *AudioChunk {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	chunk, err := a.synth.Synthesize(input, voice, speed, isPhonemes)
	if err != nil {
		a.logger.Warn("synthesis failed, skipping batch",
			"error", err, "chars", len(input), "phonemes", isPhonemes)
		return nil
	}
	if chunk == nil || len(chunk.PCM) == 0 {
		return nil
	}
	if chunk.Duration == 0 {
		chunk.Duration = PCMDuration(len(chunk.PCM), chunk.SampleRate)
	}
	return chunk
}
