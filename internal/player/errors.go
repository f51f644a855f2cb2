package player

import (
	"errors"
	"fmt"
)

// ReleaseTick marks a SinkError raised by the final release.
const ReleaseTick = -1

// SinkError wraps a failure reported by the sink.
type SinkError struct {
	Tick int
	Err  error
}

func (e *SinkError) Error() string {
	if e.Tick == ReleaseTick {
		return fmt.Sprintf("sink failed on release: %v", e.Err)
	}
	return fmt.Sprintf("sink failed at tick %d: %v", e.Tick, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// IsSinkError reports whether err is (or wraps) a SinkError.
func IsSinkError(err error) bool {
	var se *SinkError
	return errors.As(err, &se)
}
