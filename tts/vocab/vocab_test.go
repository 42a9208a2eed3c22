package vocab

import "testing"

func TestLoad(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Size() == 0 {
		t.Fatal("expected non-empty vocabulary")
	}

	// Load must be idempotent and return the same table.
	again, err := Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again != table {
		t.Error("expected Load to return the same table instance")
	}
}

func TestBoundaryClasses(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, r := range ".!?" {
		if !table.IsSentenceEnd(r) {
			t.Errorf("expected %q to be a sentence end", r)
		}
	}
	for _, r := range ",;:" {
		if !table.IsPhraseBreak(r) {
			t.Errorf("expected %q to be a phrase break", r)
		}
	}
	if !table.IsSpace(' ') {
		t.Error("expected ' ' to be the space character")
	}
	if table.IsSentenceEnd('a') || table.IsPhraseBreak('a') || table.IsSpace('a') {
		t.Error("'a' should not belong to any boundary class")
	}
}

func TestTokenCount(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"plain letters", "abc", 3},
		{"letters and space", "ab cd", 5},
		{"ipa symbols", "həˈloʊ", 6},
		{"unknown combining mark", "ãb", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.TokenCount(tt.input); got != tt.want {
				t.Errorf("TokenCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRejectsBadAssets(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty symbols", `symbols: ""` + "\nspace: \" \""},
		{"class outside vocab", "symbols: \"abc \"\nsentence_end: \".\"\nspace: \" \""},
		{"missing space", "symbols: \"abc\"\nspace: \" \""},
		{"duplicate symbol", "symbols: \"aa \"\nspace: \" \""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse([]byte(tt.data)); err == nil {
				t.Error("expected parse to fail")
			}
		})
	}
}
