package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/ironsheep/top3colors/internal/imaging"
)

// RecordWriter appends complete CSV records to the output file.
//
// Each record is written with a single Write call under a mutex on a file
// opened with O_APPEND, so concurrent workers never interleave partial lines.
type RecordWriter struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// CreateRecordWriter removes any existing file at path and creates a fresh
// empty one. Failures are returned as *OutputError.
func CreateRecordWriter(path string) (*RecordWriter, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &OutputError{Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644) //nolint:gosec // output path is user-provided
	if err != nil {
		return nil, &OutputError{Path: path, Err: err}
	}
	return &RecordWriter{path: path, f: f}, nil
}

// Append writes one record line.
func (w *RecordWriter) Append(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.WriteString(line); err != nil {
		return &OutputError{Path: w.path, Err: err}
	}
	return nil
}

// Close closes the underlying file.
func (w *RecordWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.f.Close(); err != nil {
		return &OutputError{Path: w.path, Err: err}
	}
	return nil
}

// FormatRecord renders one output line: "url,#RRGGBB,#RRGGBB,#RRGGBB\n".
//
// When fewer than three colors are given, the last one is repeated so every
// record has the same four fields. With no colors at all only the URL is
// written.
func FormatRecord(url string, colors []imaging.Color) string {
	var b strings.Builder
	b.Grow(len(url) + 3*8 + 1)
	b.WriteString(url)
	for i := 0; i < 3 && len(colors) > 0; i++ {
		c := colors[len(colors)-1]
		if i < len(colors) {
			c = colors[i]
		}
		b.WriteByte(',')
		b.WriteString(c.Hex())
	}
	b.WriteByte('\n')
	return b.String()
}
