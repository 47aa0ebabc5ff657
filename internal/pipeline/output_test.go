package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ironsheep/top3colors/internal/imaging"
)

func TestFormatRecord(t *testing.T) {
	t.Parallel()

	red := imaging.NewColor(255, 0, 0)
	green := imaging.NewColor(0, 255, 0)
	blue := imaging.NewColor(0, 0, 255)

	tests := []struct {
		name   string
		colors []imaging.Color
		want   string
	}{
		{"three colors", []imaging.Color{red, green, blue}, "u,#FF0000,#00FF00,#0000FF\n"},
		{"two colors pad with last", []imaging.Color{red, blue}, "u,#FF0000,#0000FF,#0000FF\n"},
		{"one color", []imaging.Color{green}, "u,#00FF00,#00FF00,#00FF00\n"},
		{"no colors", nil, "u\n"},
		{"extra colors ignored", []imaging.Color{blue, green, red, 0}, "u,#0000FF,#00FF00,#FF0000\n"},
		{"leading zero bytes kept", []imaging.Color{0x0000FF, 0x000001, 0x00AB00}, "u,#0000FF,#000001,#00AB00\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatRecord("u", tt.colors); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordWriter_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := CreateRecordWriter(path)
	if err != nil {
		t.Fatalf("CreateRecordWriter failed: %v", err)
	}

	const writers, perWriter = 16, 50
	colors := []imaging.Color{0x112233, 0x445566, 0x778899}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				url := fmt.Sprintf("http://host/%d/%d/%s", i, j, strings.Repeat("x", 200))
				if err := w.Append(FormatRecord(url, colors)); err != nil {
					t.Errorf("Append failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != writers*perWriter {
		t.Fatalf("expected %d lines, got %d", writers*perWriter, len(lines))
	}
	for _, l := range lines {
		if !recordPattern.MatchString(l) || strings.Count(l, ",") != 3 {
			t.Errorf("interleaved or malformed line: %q", l)
		}
	}
}

func TestCreateRecordWriter_ReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("old content\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := CreateRecordWriter(path)
	if err != nil {
		t.Fatalf("CreateRecordWriter failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestCreateRecordWriter_DirectoryPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A non-empty directory cannot be removed and replaced by a file.
	if err := os.WriteFile(filepath.Join(dir, "keep"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := CreateRecordWriter(dir)
	if err == nil {
		t.Fatal("expected an error for a directory path")
	}
	if _, ok := err.(*OutputError); !ok {
		t.Errorf("expected *OutputError, got %T", err)
	}
}

func TestRecordWriter_AppendAfterClose(t *testing.T) {
	t.Parallel()

	w, err := CreateRecordWriter(filepath.Join(t.TempDir(), "out.csv"))
	if err != nil {
		t.Fatalf("CreateRecordWriter failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	err = w.Append("late\n")
	if _, ok := err.(*OutputError); !ok {
		t.Errorf("expected *OutputError, got %T (%v)", err, err)
	}
}
