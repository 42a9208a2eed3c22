// Package batch splits phoneme strings into bounded synthesis units.
//
// Neural synthesis models accept a limited number of tokens per call, so
// long input has to be cut into pieces. Cuts land on the best boundary
// available before the limit: end of sentence first, then phrase
// punctuation, then a word gap, and only as a last resort mid-word.
package batch

import (
	"strings"

	"github.com/dgnsrekt/lectern/tts/vocab"
)

// MaxTokensPerBatch is the token budget of one synthesis call.
const MaxTokensPerBatch = 200

// Splitter cuts phoneme strings into batches no larger than a token budget.
type Splitter struct {
	table     *vocab.Table
	maxTokens int
}

// NewSplitter creates a splitter over the given vocabulary table with the
// default token budget.
func NewSplitter(table *vocab.Table) *Splitter {
	return &Splitter{table: table, maxTokens: MaxTokensPerBatch}
}

// NewSplitterWithBudget creates a splitter with a custom token budget.
// Budgets below one fall back to the default.
func NewSplitterWithBudget(table *vocab.Table, maxTokens int) *Splitter {
	if maxTokens < 1 {
		maxTokens = MaxTokensPerBatch
	}
	return &Splitter{table: table, maxTokens: maxTokens}
}

// MaxTokens returns the splitter's token budget.
func (s *Splitter) MaxTokens() int {
	return s.maxTokens
}

// SplitAtBoundaries cuts a phoneme string into batches whose token count
// stays within the budget. Characters missing from the vocabulary count
// zero tokens. When no sentence, phrase or space boundary exists before the
// budget is reached the batch is hard-split at the limit. Batches are
// trimmed of surrounding whitespace and empty batches are dropped, but no
// phoneme content is otherwise lost or reordered.
func (s *Splitter) SplitAtBoundaries(phonemes string) []string {
	if s.table.TokenCount(phonemes) <= s.maxTokens {
		return appendBatch(nil, phonemes)
	}

	runes := []rune(phonemes)
	var batches []string

	start := 0
	count := 0
	lastSentence, lastPhrase, lastSpace := -1, -1, -1

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if _, ok := s.table.TokenID(r); ok {
			count++
		}
		switch {
		case s.table.IsSentenceEnd(r):
			lastSentence = i
		case s.table.IsPhraseBreak(r):
			lastPhrase = i
		case s.table.IsSpace(r):
			lastSpace = i
		}

		if count < s.maxTokens {
			continue
		}

		// Budget reached: cut at the best boundary seen since the last
		// cut, preferring sentence ends, then phrase breaks, then spaces.
		// With no boundary at all, hard-split after the current rune.
		cut := i + 1
		switch {
		case lastSentence > start:
			cut = lastSentence + 1
		case lastPhrase > start:
			cut = lastPhrase + 1
		case lastSpace > start:
			cut = lastSpace + 1
		}

		batches = appendBatch(batches, string(runes[start:cut]))
		start = cut

		// Characters between the cut point and the scan position already
		// belong to the next batch; rescan them to reseed the running
		// count and the boundary trackers.
		count = 0
		lastSentence, lastPhrase, lastSpace = -1, -1, -1
		for j := start; j <= i && j < len(runes); j++ {
			rj := runes[j]
			if _, ok := s.table.TokenID(rj); ok {
				count++
			}
			switch {
			case s.table.IsSentenceEnd(rj):
				lastSentence = j
			case s.table.IsPhraseBreak(rj):
				lastPhrase = j
			case s.table.IsSpace(rj):
				lastSpace = j
			}
		}
	}

	if start < len(runes) {
		batches = appendBatch(batches, string(runes[start:]))
	}

	return batches
}

func appendBatch(batches []string, b string) []string {
	b = strings.TrimSpace(b)
	if b == "" {
		return batches
	}
	return append(batches, b)
}
