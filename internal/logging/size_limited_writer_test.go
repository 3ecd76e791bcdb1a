package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSizeLimitedWriterTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realtime.log")
	w := &sizeLimitedWriter{path: path, maxBytes: 32}

	line := bytes.Repeat([]byte("a"), 20)
	if _, err := w.Write(line); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := w.Write(line); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(b) != 20 {
		t.Fatalf("file size = %d, want 20 after truncation", len(b))
	}
}

func TestSizeLimitedWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realtime.log")
	w, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	for i := 0; i < 3; i++ {
		if _, err := w.Write([]byte("line\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(b) != 15 {
		t.Fatalf("file size = %d, want 15", len(b))
	}
}
