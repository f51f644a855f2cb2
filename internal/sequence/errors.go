package sequence

import (
	"errors"
	"fmt"
)

// InvalidFrameError reports a FrameEvent that violates start >= 0 or
// duration >= 1, or whose end tick does not fit in an int.
type InvalidFrameError struct {
	// Index is the position of the offending AddFrame call (0-based),
	// or -1 when the event was built directly.
	Index int

	// Field is "start", "duration" or "end".
	Field string

	// Value is the rejected value (the duration for "end").
	Value int
}

func (e *InvalidFrameError) Error() string {
	rule := "must be >= 0"
	switch e.Field {
	case "duration":
		rule = "must be >= 1"
	case "end":
		rule = "overflows the tick range"
	}
	if e.Index >= 0 {
		return fmt.Sprintf("invalid frame #%d: %s %d %s", e.Index, e.Field, e.Value, rule)
	}
	return fmt.Sprintf("invalid frame: %s %d %s", e.Field, e.Value, rule)
}

// IsInvalidFrame reports whether err is (or wraps) an InvalidFrameError.
func IsInvalidFrame(err error) bool {
	var fe *InvalidFrameError
	return errors.As(err, &fe)
}
