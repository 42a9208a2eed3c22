// Package session assembles the remaining text of a multi-page document
// into one flat sentence stream for gapless cross-page narration.
package session

import (
	"regexp"
	"strings"
)

// Page is one logical page of extracted text.
type Page struct {
	Number int
	Text   string
}

var sentenceRegex = regexp.MustCompile(`[^.!?]*[.!?]+(?:\s+|$)|[^.!?]+$`)

// SplitSentences splits page text at terminal punctuation followed by
// whitespace, keeping each terminated run as one unit. Trailing text without
// terminal punctuation is kept as a final sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	for _, s := range sentenceRegex.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// ParsePages splits document text into numbered pages at form feed
// characters, the page separator used by most PDF text extractors. A
// document without form feeds is one page.
func ParsePages(content string) []Page {
	parts := strings.Split(content, "\f")
	pages := make([]Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, Page{Number: i, Text: part})
	}
	return pages
}

// BuildRemaining gathers every sentence from fromPage onward into one
// ordered list, with a parallel page map recording the page each sentence
// came from. Pages with no usable text are skipped entirely. A change
// between consecutive page map values marks the exact sentence at which
// narration crosses into a new page.
func BuildRemaining(pages []Page, fromPage int) (sentences []string, pageMap []int) {
	for _, page := range pages {
		if page.Number < fromPage {
			continue
		}
		for _, s := range SplitSentences(page.Text) {
			sentences = append(sentences, s)
			pageMap = append(pageMap, page.Number)
		}
	}
	return sentences, pageMap
}

// PageTurns returns the sentence indices at which the page map advances to
// a new page: playing sentence i for any returned index i means narration
// has just crossed onto pageMap[i].
func PageTurns(pageMap []int) []int {
	var turns []int
	for i := 1; i < len(pageMap); i++ {
		if pageMap[i] != pageMap[i-1] {
			turns = append(turns, i)
		}
	}
	return turns
}
