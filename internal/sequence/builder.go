package sequence

import (
	"github.com/ez2torta/SConE/internal/button"
)

// Builder accumulates events for ad hoc sequences.
//
// AddFrame is fluent. The first invalid frame is recorded and every later
// call becomes a no-op, so a chain stops at the offending call and Build
// reports it:
//
//	seq, err := sequence.NewBuilder("Hadouken", "fireball").
//		AddFrame(0, button.Of(button.Down), 2).
//		AddFrame(2, button.Of(button.Right), 1).
//		Build()
type Builder struct {
	name        string
	description string
	events      []FrameEvent
	calls       int
	err         error
}

// NewBuilder starts an empty sequence.
func NewBuilder(name, description string) *Builder {
	return &Builder{name: name, description: description}
}

// AddFrame appends an event holding buttons for duration ticks from start.
func (b *Builder) AddFrame(start int, buttons button.Set, duration int) *Builder {
	index := b.calls
	b.calls++
	if b.err != nil {
		return b
	}
	if err := checkFrame(index, start, duration); err != nil {
		b.err = err
		return b
	}
	b.events = append(b.events, FrameEvent{Start: start, Buttons: buttons, Duration: duration})
	return b
}

// AddPress appends a single-button hold.
func (b *Builder) AddPress(start int, btn button.Button, duration int) *Builder {
	return b.AddFrame(start, button.Of(btn), duration)
}

// Err returns the first construction error, if any.
func (b *Builder) Err() error {
	return b.err
}

// Len returns the number of accepted events so far.
func (b *Builder) Len() int {
	return len(b.events)
}

// Build finalizes the sequence. The builder can keep being used; later
// additions do not affect sequences already built.
func (b *Builder) Build() (Sequence, error) {
	if b.err != nil {
		return Sequence{}, b.err
	}
	return Sequence{
		name:        b.name,
		description: b.description,
		events:      append([]FrameEvent(nil), b.events...),
	}, nil
}

// FromSamples run-length encodes one button set per tick into a Sequence.
//
// Consecutive identical non-empty samples collapse into a single event;
// released ticks produce no event. For every t in range,
// FromSamples(...).ActiveButtons(t) equals samples[t].
func FromSamples(name, description string, samples []button.Set) Sequence {
	var events []FrameEvent
	start := 0
	for t := 1; t <= len(samples); t++ {
		if t < len(samples) && samples[t].Equal(samples[start]) {
			continue
		}
		if !samples[start].IsEmpty() {
			events = append(events, FrameEvent{Start: start, Buttons: samples[start], Duration: t - start})
		}
		start = t
	}
	return Sequence{name: name, description: description, events: events}
}
