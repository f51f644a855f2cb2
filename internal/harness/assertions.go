package harness

import (
	"fmt"
	"strings"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/player"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			if event.Tick == player.ReleaseTick {
				fmt.Fprintf(&buf, "  release    %s\n", event.Label())
				continue
			}
			fmt.Fprintf(&buf, "  Frame %3d: %s\n", event.Tick, event.Label())
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertFrame:
			err = assertFrame(result.Trace, a)
		case AssertOrder:
			err = assertOrder(result.Trace, a)
		case AssertCount:
			err = assertCount(result.Trace, a)
		case AssertTotalFrames:
			err = assertTotalFrames(result, a)
		case AssertJournal:
			err = assertJournal(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertFrame checks the set emitted at a tick.
func assertFrame(trace []TraceEvent, assertion Assertion) error {
	want, err := parseSet(assertion.Buttons)
	if err != nil {
		return err
	}
	for _, event := range trace {
		if event.Tick != assertion.Tick {
			continue
		}
		got := eventSet(event)
		if got == want {
			return nil
		}
		return &AssertionError{
			Type:     AssertFrame,
			Expected: fmt.Sprintf("tick %d emits %s", assertion.Tick, want),
			Actual:   got.String(),
			Trace:    trace,
		}
	}
	return &AssertionError{
		Type:     AssertFrame,
		Expected: fmt.Sprintf("tick %d emits %s", assertion.Tick, want),
		Actual:   fmt.Sprintf("tick %d was not played", assertion.Tick),
		Trace:    trace,
	}
}

// assertOrder checks that the sets appear in order. Other sets may appear
// between them.
func assertOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Sets) {
			break
		}
		want, err := parseSet(assertion.Sets[next])
		if err != nil {
			return err
		}
		if eventSet(event) == want {
			next++
		}
	}
	if next == len(assertion.Sets) {
		return nil
	}

	missing, _ := parseSet(assertion.Sets[next])
	return &AssertionError{
		Type:     AssertOrder,
		Expected: fmt.Sprintf("sets in order: %v", assertion.Sets),
		Actual:   fmt.Sprintf("%s not found after the first %d set(s)", missing, next),
		Trace:    trace,
	}
}

// assertCount checks how many ticks emit exactly the set. The final release
// is not counted.
func assertCount(trace []TraceEvent, assertion Assertion) error {
	want, err := parseSet(assertion.Buttons)
	if err != nil {
		return err
	}
	count := 0
	for _, event := range trace {
		if event.Tick != player.ReleaseTick && eventSet(event) == want {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d tick(s) of %s", assertion.Count, want),
			Actual:   fmt.Sprintf("%d tick(s)", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertTotalFrames(result *Result, assertion Assertion) error {
	if result.TotalFrames != assertion.Count {
		return &AssertionError{
			Type:     AssertTotalFrames,
			Expected: fmt.Sprintf("%d frames", assertion.Count),
			Actual:   fmt.Sprintf("%d frames", result.TotalFrames),
		}
	}
	return nil
}

// assertJournal checks the recorded session. Only the fields the assertion
// sets are compared.
func assertJournal(result *Result, assertion Assertion) error {
	if result.Session == nil {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: "a journaled session",
			Actual:   "nothing was played",
		}
	}
	sess := result.Session
	if assertion.Outcome != "" && sess.Outcome != assertion.Outcome {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("outcome %q", assertion.Outcome),
			Actual:   fmt.Sprintf("outcome %q", sess.Outcome),
		}
	}
	if assertion.Count != 0 && sess.Emissions != assertion.Count {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("%d emissions", assertion.Count),
			Actual:   fmt.Sprintf("%d emissions", sess.Emissions),
			Trace:    result.Trace,
		}
	}
	if assertion.Matches != nil && result.ReplayMatches != *assertion.Matches {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("replay matches played sequence: %t", *assertion.Matches),
			Actual:   fmt.Sprintf("%t", result.ReplayMatches),
		}
	}
	return nil
}

// eventSet parses names the player produced, so they are always valid.
func eventSet(event TraceEvent) button.Set {
	set, _ := parseSet(event.Buttons)
	return set
}
