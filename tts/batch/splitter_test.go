package batch

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/lectern/tts/vocab"
)

func newTestSplitter(t *testing.T, budget int) *Splitter {
	t.Helper()
	table, err := vocab.Load()
	if err != nil {
		t.Fatalf("vocab.Load failed: %v", err)
	}
	return NewSplitterWithBudget(table, budget)
}

func TestSplitShortInputSingleBatch(t *testing.T) {
	s := newTestSplitter(t, 200)

	batches := s.SplitAtBoundaries("həˈloʊ wɜːld. ðɪs ɪz ə tɛst.")
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d: %q", len(batches), batches)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s := newTestSplitter(t, 200)

	for _, input := range []string{"", "   ", "\n\t"} {
		if batches := s.SplitAtBoundaries(input); len(batches) != 0 {
			t.Errorf("SplitAtBoundaries(%q) = %q, want no batches", input, batches)
		}
	}
}

func TestTokenBoundProperty(t *testing.T) {
	table, err := vocab.Load()
	if err != nil {
		t.Fatalf("vocab.Load failed: %v", err)
	}

	inputs := []string{
		strings.Repeat("ab əd. ", 40),
		strings.Repeat("long, phrase; heavy: text ", 30),
		strings.Repeat("noboundaries", 50),
		strings.Repeat("word ", 100),
	}

	for _, budget := range []int{20, 50, 200} {
		s := NewSplitterWithBudget(table, budget)
		for _, input := range inputs {
			for i, b := range s.SplitAtBoundaries(input) {
				if got := table.TokenCount(b); got > budget {
					t.Errorf("budget %d batch %d has %d tokens: %q", budget, i, got, b)
				}
			}
		}
	}
}

func TestReconstructionProperty(t *testing.T) {
	s := newTestSplitter(t, 30)

	input := strings.Repeat("wʌn tuː θriː. foʊr faɪv, sɪks ", 12)
	batches := s.SplitAtBoundaries(input)
	if len(batches) < 2 {
		t.Fatalf("expected input to need multiple batches, got %d", len(batches))
	}

	// Collapsing all whitespace, the concatenation of the batches must
	// reproduce the original content with nothing lost or duplicated.
	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	got := normalize(strings.Join(batches, " "))
	want := normalize(input)
	if got != want {
		t.Errorf("reconstruction mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBoundaryPreference(t *testing.T) {
	// Both a sentence end and later a space fit inside the budget; the cut
	// must land after the sentence end, not at the space.
	s := newTestSplitter(t, 20)

	input := "abcde. fghij klmno pqrst uvwxy zabcd efghi"
	batches := s.SplitAtBoundaries(input)
	if len(batches) < 2 {
		t.Fatalf("expected multiple batches, got %q", batches)
	}
	if batches[0] != "abcde." {
		t.Errorf("expected first batch to end at the sentence boundary, got %q", batches[0])
	}
}

func TestPhrasePreferredOverSpace(t *testing.T) {
	s := newTestSplitter(t, 20)

	input := "abcde, fghij klmno pqrst uvwxy zabcd efghi"
	batches := s.SplitAtBoundaries(input)
	if len(batches) < 2 {
		t.Fatalf("expected multiple batches, got %q", batches)
	}
	if batches[0] != "abcde," {
		t.Errorf("expected first batch to end at the phrase boundary, got %q", batches[0])
	}
}

func TestHardSplitOversizedRun(t *testing.T) {
	s := newTestSplitter(t, 50)

	// One run, no boundaries anywhere, exactly twice the budget.
	input := strings.Repeat("a", 100)
	batches := s.SplitAtBoundaries(input)
	if len(batches) != 2 {
		t.Fatalf("expected exactly 2 batches, got %d: %v", len(batches), batches)
	}
	if batches[0] != strings.Repeat("a", 50) || batches[1] != strings.Repeat("a", 50) {
		t.Errorf("expected two equal halves, got lengths %d and %d", len(batches[0]), len(batches[1]))
	}
}

func TestUnknownCharactersCountZero(t *testing.T) {
	s := newTestSplitter(t, 10)

	// Combining tildes are not in the vocabulary, so this stays one batch
	// even though the rune count exceeds the budget.
	input := "ab" + strings.Repeat("̃", 20) + "cd"
	batches := s.SplitAtBoundaries(input)
	if len(batches) != 1 {
		t.Errorf("expected 1 batch, got %d", len(batches))
	}
}

func TestSplitTrimsWhitespace(t *testing.T) {
	s := newTestSplitter(t, 10)

	input := "abcd efgh ijkl mnop qrst uvwx"
	for i, b := range s.SplitAtBoundaries(input) {
		if b != strings.TrimSpace(b) {
			t.Errorf("batch %d not trimmed: %q", i, b)
		}
	}
}
