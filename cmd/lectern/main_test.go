package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/lectern/internal/audio"
	"github.com/dgnsrekt/lectern/tts"
)

func TestReadSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte("Page one.\fPage two."), 0o644); err != nil {
		t.Fatal(err)
	}

	name, content, err := readSource([]string{path})
	if err != nil {
		t.Fatalf("readSource: %v", err)
	}
	if !strings.HasSuffix(name, "book.txt") {
		t.Errorf("name = %q", name)
	}
	if content != "Page one.\fPage two." {
		t.Errorf("content = %q", content)
	}
}

func TestReadSourceMissingFile(t *testing.T) {
	if _, _, err := readSource([]string{"/nonexistent/book.txt"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildEngine(t *testing.T) {
	device := audio.NewCaptureDevice()
	cfg := tts.DefaultConfig()

	orig := engineName
	defer func() { engineName = orig }()

	engineName = "mock"
	if _, err := buildEngine(cfg, device); err != nil {
		t.Errorf("mock engine: %v", err)
	}

	engineName = "piper"
	if _, err := buildEngine(cfg, device); err != nil {
		t.Errorf("piper engine: %v", err)
	}

	engineName = "festival"
	if _, err := buildEngine(cfg, device); err == nil {
		t.Error("unknown engine should be rejected")
	}
}
