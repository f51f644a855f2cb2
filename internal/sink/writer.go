package sink

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ez2torta/SConE/internal/button"
)

// Writer prints one line per tick. Neutral ticks print as [] and only the
// final release of a run prints as [RELEASE]:
//
//	Frame   0: [DOWN]
//	Frame   1: []
//	Frame   6: [RELEASE]
type Writer struct {
	mu   sync.Mutex
	w    io.Writer
	tick int
}

// NewWriter returns a sink printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Apply prints set with the running tick number.
func (s *Writer) Apply(set button.Set) error {
	return s.print(set.String())
}

// Release prints the end-of-run release.
func (s *Writer) Release() error {
	return s.print("[RELEASE]")
}

func (s *Writer) print(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "Frame %3d: %s\n", s.tick, label); err != nil {
		return err
	}
	s.tick++
	return nil
}

// Log writes each emission as a debug record.
type Log struct {
	logger *slog.Logger
	mu     sync.Mutex
	tick   int
}

// NewLog returns a sink logging to logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (s *Log) Apply(set button.Set) error {
	s.mu.Lock()
	tick := s.tick
	s.tick++
	s.mu.Unlock()
	s.logger.Debug("emit", "tick", tick, "buttons", set.Names())
	return nil
}
