package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Writer renders public values onto an io.Writer
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	name   string
}

// NewWriter wraps w
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format, name: "writer"}
}

// NewStdout writes to standard output
func NewStdout(format Format) *Writer {
	return &Writer{w: os.Stdout, format: format, name: "stdout"}
}

func (s *Writer) Write(ctx context.Context, runID string, publicValues []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(render(s.format, publicValues)); err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}
	return nil
}

func (s *Writer) Name() string { return s.name }
func (s *Writer) Close() error { return nil }

// File writes one run's public values to a fixed path, replacing earlier contents
type File struct {
	path   string
	format Format
}

// NewFile creates a file sink
func NewFile(path string, format Format) *File {
	return &File{path: path, format: format}
}

func (s *File) Write(ctx context.Context, runID string, publicValues []byte) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, render(s.format, publicValues), 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *File) Name() string { return "file:" + s.path }
func (s *File) Close() error { return nil }

// Dir writes each run to its own file named after the run id
type Dir struct {
	dir    string
	format Format
}

// NewDir creates a directory sink
func NewDir(dir string, format Format) *Dir {
	return &Dir{dir: dir, format: format}
}

// PathFor returns the file a run is written to
func (s *Dir) PathFor(runID string) string {
	ext := ".hex"
	if s.format == FormatBinary {
		ext = ".bin"
	}
	return filepath.Join(s.dir, runID+ext)
}

func (s *Dir) Write(ctx context.Context, runID string, publicValues []byte) error {
	if runID == "" {
		return fmt.Errorf("dir sink requires a run id")
	}
	return NewFile(s.PathFor(runID), s.format).Write(ctx, runID, publicValues)
}

func (s *Dir) Name() string { return "dir:" + s.dir }
func (s *Dir) Close() error { return nil }
