package sequence

import (
	"math"

	"github.com/ez2torta/SConE/internal/button"
)

// FrameEvent holds Buttons from Start (inclusive) to Start+Duration (exclusive).
type FrameEvent struct {
	Start    int
	Buttons  button.Set
	Duration int
}

// NewFrameEvent validates and builds a FrameEvent.
func NewFrameEvent(start int, buttons button.Set, duration int) (FrameEvent, error) {
	if err := checkFrame(-1, start, duration); err != nil {
		return FrameEvent{}, err
	}
	return FrameEvent{Start: start, Buttons: buttons, Duration: duration}, nil
}

// End returns the first tick after the event.
func (e FrameEvent) End() int {
	return e.Start + e.Duration
}

// Covers reports whether tick falls inside [Start, End).
func (e FrameEvent) Covers(tick int) bool {
	return e.Start <= tick && tick < e.End()
}

func checkFrame(index, start, duration int) error {
	if start < 0 {
		return &InvalidFrameError{Index: index, Field: "start", Value: start}
	}
	if duration < 1 {
		return &InvalidFrameError{Index: index, Field: "duration", Value: duration}
	}
	if duration > math.MaxInt-start {
		return &InvalidFrameError{Index: index, Field: "end", Value: duration}
	}
	return nil
}

// Sequence is a named, immutable list of timed button holds.
//
// Event order carries no meaning for composition; it is kept only so that
// encoded documents round-trip the way they were written.
type Sequence struct {
	name        string
	description string
	events      []FrameEvent
}

// New validates events and returns a finalized Sequence.
func New(name, description string, events ...FrameEvent) (Sequence, error) {
	for i, ev := range events {
		if err := checkFrame(i, ev.Start, ev.Duration); err != nil {
			return Sequence{}, err
		}
	}
	return Sequence{
		name:        name,
		description: description,
		events:      append([]FrameEvent(nil), events...),
	}, nil
}

// Name returns the sequence name.
func (s Sequence) Name() string { return s.name }

// Description returns the optional free-text description.
func (s Sequence) Description() string { return s.description }

// Len returns the number of events.
func (s Sequence) Len() int { return len(s.events) }

// IsEmpty reports whether the sequence has no events.
func (s Sequence) IsEmpty() bool { return len(s.events) == 0 }

// Events returns a copy of the events in declaration order.
func (s Sequence) Events() []FrameEvent {
	return append([]FrameEvent(nil), s.events...)
}

// Event returns the i-th event.
func (s Sequence) Event(i int) FrameEvent {
	return s.events[i]
}

// TotalFrames is max(Start+Duration) over all events, or 0 when empty.
func (s Sequence) TotalFrames() int {
	total := 0
	for _, ev := range s.events {
		total = max(total, ev.End())
	}
	return total
}

// ActiveButtons is the union of Buttons over every event covering tick.
func (s Sequence) ActiveButtons(tick int) button.Set {
	var held button.Set
	for _, ev := range s.events {
		if ev.Covers(tick) {
			held = held.Union(ev.Buttons)
		}
	}
	return held
}

// Renamed returns a copy of s with a different name and description.
func (s Sequence) Renamed(name, description string) Sequence {
	return Sequence{name: name, description: description, events: s.events}
}
