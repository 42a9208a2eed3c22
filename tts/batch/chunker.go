package batch

import (
	"regexp"
	"strings"
)

// FallbackChunkChars is the character budget used when the phonemizer is
// unavailable and exact token counts are unknowable. Roughly 150 characters
// of text phonemize to something near the 200-token budget.
const FallbackChunkChars = 150

var (
	sentenceSplitRegex = regexp.MustCompile(`[^.!?]*[.!?]+(?:\s+|$)|[^.!?]+$`)
	phraseSplitRegex   = regexp.MustCompile(`[^,;:]*[,;:]+(?:\s+|$)|[^,;:]+$`)
)

// ChunkText splits raw text into chunks bounded by a conservative character
// budget. It is the approximation path used when no phonemizer is available:
// sentences are packed greedily up to the budget, and any single sentence
// longer than the budget is split by phrase punctuation, then by words.
func ChunkText(text string) []string {
	return ChunkTextWithBudget(text, FallbackChunkChars)
}

// ChunkTextWithBudget is ChunkText with an explicit character budget.
func ChunkTextWithBudget(text string, budget int) []string {
	if budget < 1 {
		budget = FallbackChunkChars
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= budget {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if c := strings.TrimSpace(current.String()); c != "" {
			chunks = append(chunks, c)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range sentenceSplitRegex.FindAllString(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		n := len([]rune(sentence))
		if n > budget {
			// A single oversized sentence gets its own recursive split.
			flush()
			chunks = append(chunks, splitLongSentence(sentence, budget)...)
			continue
		}

		if currentLen > 0 && currentLen+1+n > budget {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += n
	}
	flush()

	return chunks
}

// splitLongSentence breaks one sentence that exceeds the budget, first at
// phrase punctuation and then at word gaps. A single word longer than the
// budget is sliced at the budget.
func splitLongSentence(sentence string, budget int) []string {
	var parts []string
	for _, phrase := range phraseSplitRegex.FindAllString(sentence, -1) {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		if len([]rune(phrase)) <= budget {
			parts = append(parts, phrase)
			continue
		}
		parts = append(parts, splitByWords(phrase, budget)...)
	}
	return packPieces(parts, budget)
}

func splitByWords(phrase string, budget int) []string {
	var pieces []string
	for _, word := range strings.Fields(phrase) {
		runes := []rune(word)
		for len(runes) > budget {
			pieces = append(pieces, string(runes[:budget]))
			runes = runes[budget:]
		}
		if len(runes) > 0 {
			pieces = append(pieces, string(runes))
		}
	}
	return pieces
}

// packPieces greedily refills small pieces back up to the budget so that a
// long sentence does not degrade into one synthesis call per phrase.
func packPieces(pieces []string, budget int) []string {
	var packed []string
	var current strings.Builder
	currentLen := 0

	for _, p := range pieces {
		n := len([]rune(p))
		if currentLen > 0 && currentLen+1+n > budget {
			packed = append(packed, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(p)
		currentLen += n
	}
	if currentLen > 0 {
		packed = append(packed, current.String())
	}
	return packed
}
