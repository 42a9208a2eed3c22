// Package cache stores synthesized audio so re-reading a page or resuming
// a book does not re-run the speech model. It keeps a small in-memory LRU
// in front of an optional zstd-compressed disk layer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgnsrekt/lectern/tts"
)

// DefaultMaxEntries bounds the in-memory layer. Batches average a few
// hundred KB of PCM, so this keeps memory use in the tens of MB.
const DefaultMaxEntries = 128

// Key derives the cache key for one synthesis call. Every input that can
// change the audio is part of the key.
func Key(voice string, rate float64, isPhonemes bool, input string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%.3f|%t|", voice, rate, isPhonemes)
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns the fraction of lookups served from cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Store is a two-level audio cache. The disk layer is optional; with an
// empty directory the store is memory-only.
type Store struct {
	mem  *lru.Cache[string, *tts.AudioChunk]
	disk *diskCache

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a store holding up to maxEntries chunks in memory, backed by
// a disk layer at dir when dir is non-empty.
func New(maxEntries int, dir string) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	mem, err := lru.New[string, *tts.AudioChunk](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	s := &Store{mem: mem}
	if dir != "" {
		disk, err := newDiskCache(dir)
		if err != nil {
			return nil, err
		}
		s.disk = disk
	}
	return s, nil
}

// Get returns the cached chunk for key, promoting disk hits into memory.
func (s *Store) Get(key string) (*tts.AudioChunk, bool) {
	if chunk, ok := s.mem.Get(key); ok {
		s.hits.Add(1)
		return chunk, true
	}
	if s.disk != nil {
		if chunk, ok := s.disk.get(key); ok {
			s.mem.Add(key, chunk)
			s.hits.Add(1)
			return chunk, true
		}
	}
	s.misses.Add(1)
	return nil, false
}

// Put stores a chunk in both layers. Disk write failures are swallowed;
// the cache never fails a synthesis that already succeeded.
func (s *Store) Put(key string, chunk *tts.AudioChunk) {
	if chunk == nil || len(chunk.PCM) == 0 {
		return
	}
	s.mem.Add(key, chunk)
	if s.disk != nil {
		s.disk.put(key, chunk)
	}
}

// Stats returns hit and miss counts since the store was created.
func (s *Store) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// Purge drops the in-memory layer. Disk entries survive.
func (s *Store) Purge() {
	s.mem.Purge()
}
