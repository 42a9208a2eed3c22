// Package vocab provides the phoneme vocabulary table used for token
// counting during batching. The table is loaded once from a bundled asset
// and is read-only afterwards.
package vocab

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var vocabAsset []byte

var (
	// ErrNoSymbols is returned when the asset declares an empty inventory.
	ErrNoSymbols = errors.New("vocabulary asset has no symbols")

	// ErrClassNotInVocab is returned when a boundary class references a
	// character missing from the symbol inventory.
	ErrClassNotInVocab = errors.New("boundary class character not in vocabulary")
)

// Table maps phoneme characters to integer token ids and classifies the
// characters the batcher may split at.
type Table struct {
	tokens      map[rune]int
	sentenceEnd map[rune]struct{}
	phraseBreak map[rune]struct{}
	space       rune
}

type asset struct {
	Symbols     string `yaml:"symbols"`
	SentenceEnd string `yaml:"sentence_end"`
	PhraseBreak string `yaml:"phrase_break"`
	Space       string `yaml:"space"`
}

var (
	loadOnce  sync.Once
	loaded    *Table
	loadError error
)

// Load parses the bundled vocabulary asset. Safe to call repeatedly; the
// asset is decoded once and the same table is returned afterwards.
func Load() (*Table, error) {
	loadOnce.Do(func() {
		loaded, loadError = parse(vocabAsset)
	})
	return loaded, loadError
}

func parse(data []byte) (*Table, error) {
	var a asset
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode vocabulary asset: %w", err)
	}

	symbols := []rune(a.Symbols)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	t := &Table{
		tokens:      make(map[rune]int, len(symbols)),
		sentenceEnd: make(map[rune]struct{}, len(a.SentenceEnd)),
		phraseBreak: make(map[rune]struct{}, len(a.PhraseBreak)),
	}

	for id, r := range symbols {
		if _, dup := t.tokens[r]; dup {
			return nil, fmt.Errorf("duplicate symbol %q in vocabulary", r)
		}
		t.tokens[r] = id
	}

	for _, r := range a.SentenceEnd {
		if _, ok := t.tokens[r]; !ok {
			return nil, fmt.Errorf("%w: sentence end %q", ErrClassNotInVocab, r)
		}
		t.sentenceEnd[r] = struct{}{}
	}
	for _, r := range a.PhraseBreak {
		if _, ok := t.tokens[r]; !ok {
			return nil, fmt.Errorf("%w: phrase break %q", ErrClassNotInVocab, r)
		}
		t.phraseBreak[r] = struct{}{}
	}

	spaces := []rune(a.Space)
	if len(spaces) != 1 {
		return nil, fmt.Errorf("vocabulary asset must declare exactly one space character, got %q", a.Space)
	}
	if _, ok := t.tokens[spaces[0]]; !ok {
		return nil, fmt.Errorf("%w: space %q", ErrClassNotInVocab, spaces[0])
	}
	t.space = spaces[0]

	return t, nil
}

// TokenID returns the token id for a character and whether it is known.
func (t *Table) TokenID(r rune) (int, bool) {
	id, ok := t.tokens[r]
	return id, ok
}

// TokenCount counts the tokens in a phoneme string. Characters absent from
// the vocabulary (combining marks and the like) contribute zero.
func (t *Table) TokenCount(s string) int {
	n := 0
	for _, r := range s {
		if _, ok := t.tokens[r]; ok {
			n++
		}
	}
	return n
}

// Size returns the number of symbols in the vocabulary.
func (t *Table) Size() int {
	return len(t.tokens)
}

// IsSentenceEnd reports whether r terminates a sentence.
func (t *Table) IsSentenceEnd(r rune) bool {
	_, ok := t.sentenceEnd[r]
	return ok
}

// IsPhraseBreak reports whether r is phrase-break punctuation.
func (t *Table) IsPhraseBreak(r rune) bool {
	_, ok := t.phraseBreak[r]
	return ok
}

// IsSpace reports whether r is the vocabulary space character.
func (t *Table) IsSpace(r rune) bool {
	return r == t.space
}
