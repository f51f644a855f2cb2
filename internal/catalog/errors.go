package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// LoadError reports a catalog document that could not be read or decoded.
type LoadError struct {
	Source  string
	Line    int
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }

// MotionNotFoundError reports a lookup or reference to a missing motion.
type MotionNotFoundError struct {
	Key Key

	// From is the motion whose step held the reference; zero for a
	// top-level Resolve call.
	From Key
	Step int
}

func (e *MotionNotFoundError) Error() string {
	if e.From != (Key{}) {
		return fmt.Sprintf("motion %s not found (referenced from %s step %d)", e.Key, e.From, e.Step)
	}
	return fmt.Sprintf("motion %s not found", e.Key)
}

// ReferenceCycleError reports a reference chain that re-enters a motion
// already being expanded.
type ReferenceCycleError struct {
	// Path is the chain of motions ending with the re-entered one,
	// e.g. [combos.a combos.b combos.a].
	Path []Key
}

func (e *ReferenceCycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = k.String()
	}
	return "reference cycle: " + strings.Join(parts, " → ")
}

// UnresolvedPlaceholderError reports a {placeholder} with no caller value,
// step binding or declared default.
type UnresolvedPlaceholderError struct {
	Key         Key
	Step        int
	Placeholder string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("%s step %d: no value for placeholder {%s}", e.Key, e.Step, e.Placeholder)
}

// InvalidHoldError reports a hold or wait that is not a usable tick count
// after substitution.
type InvalidHoldError struct {
	Key   Key
	Step  int
	Field string // "hold" or "wait"
	Value string
}

func (e *InvalidHoldError) Error() string {
	return fmt.Sprintf("%s step %d: invalid %s %q", e.Key, e.Step, e.Field, e.Value)
}

// InvalidStepError reports a step that is neither input, wait nor ref.
type InvalidStepError struct {
	Key  Key
	Step int
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("%s step %d: step needs one of input, wait or ref", e.Key, e.Step)
}

// IsNotFound reports whether err is (or wraps) a MotionNotFoundError.
func IsNotFound(err error) bool {
	var e *MotionNotFoundError
	return errors.As(err, &e)
}

// IsCycle reports whether err is (or wraps) a ReferenceCycleError.
func IsCycle(err error) bool {
	var e *ReferenceCycleError
	return errors.As(err, &e)
}

// IsUnresolvedPlaceholder reports whether err is (or wraps) an
// UnresolvedPlaceholderError.
func IsUnresolvedPlaceholder(err error) bool {
	var e *UnresolvedPlaceholderError
	return errors.As(err, &e)
}

// IsResolutionError reports whether err belongs to the resolution family.
func IsResolutionError(err error) bool {
	var (
		hold *InvalidHoldError
		step *InvalidStepError
	)
	return IsNotFound(err) || IsCycle(err) || IsUnresolvedPlaceholder(err) ||
		errors.As(err, &hold) || errors.As(err, &step)
}
