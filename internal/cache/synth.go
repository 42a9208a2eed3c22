package cache

import "github.com/dgnsrekt/lectern/tts"

// Synthesizer decorates a speech engine with the audio cache. Repeated
// batches, like re-reading a page after a resume, skip the model entirely.
type Synthesizer struct {
	inner tts.Synthesizer
	store *Store
}

// WrapSynthesizer layers the store over an engine.
func WrapSynthesizer(inner tts.Synthesizer, store *Store) *Synthesizer {
	return &Synthesizer{inner: inner, store: store}
}

// Initialize prepares the underlying engine.
func (s *Synthesizer) Initialize(voicePath, modelPath string) error {
	return s.inner.Initialize(voicePath, modelPath)
}

// Available reports whether the underlying engine is ready.
func (s *Synthesizer) Available() bool {
	return s.inner.Available()
}

// Synthesize serves from cache when possible and fills the cache on miss.
// Failures are never cached.
func (s *Synthesizer) Synthesize(input, voice string, speed float64, isPhonemes bool) (*tts.AudioChunk, error) {
	key := Key(voice, speed, isPhonemes, input)
	if chunk, ok := s.store.Get(key); ok {
		return chunk, nil
	}

	chunk, err := s.inner.Synthesize(input, voice, speed, isPhonemes)
	if err != nil {
		return nil, err
	}
	if chunk != nil && len(chunk.PCM) > 0 {
		s.store.Put(key, chunk)
	}
	return chunk, nil
}

// Stats exposes the underlying store's counters.
func (s *Synthesizer) Stats() Stats {
	return s.store.Stats()
}
