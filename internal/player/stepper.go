package player

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ez2torta/SConE/internal/button"
)

// Command is a stepping decision.
type Command int

const (
	Advance Command = iota
	Quit
)

// Stepper supplies the Advance/Quit signal in Stepping mode. Await is called
// after tick has been emitted with set.
type Stepper interface {
	Await(ctx context.Context, tick int, set button.Set) (Command, error)
}

// LineStepper reads commands from a line-oriented reader such as a
// terminal: an empty line advances, "q" or "quit" quits, end of input quits.
type LineStepper struct {
	prompt io.Writer

	once  sync.Once
	in    io.Reader
	lines chan string
}

// NewLineStepper reads from in. When prompt is non-nil the current tick is
// printed there before each wait.
func NewLineStepper(in io.Reader, prompt io.Writer) *LineStepper {
	return &LineStepper{in: in, prompt: prompt}
}

func (s *LineStepper) start() {
	s.lines = make(chan string)
	go func() {
		defer close(s.lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			s.lines <- sc.Text()
		}
	}()
}

// Await blocks until a line arrives or ctx is done.
func (s *LineStepper) Await(ctx context.Context, tick int, set button.Set) (Command, error) {
	s.once.Do(s.start)
	if s.prompt != nil {
		fmt.Fprintf(s.prompt, "Frame %3d: %s  [enter: next, q: quit] ", tick, set)
	}
	select {
	case <-ctx.Done():
		return Quit, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return Quit, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q", "quit":
			return Quit, nil
		default:
			return Advance, nil
		}
	}
}
