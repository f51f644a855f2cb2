// Package compose reduces a Sequence to per-tick button state.
//
// Everything here is a pure function of its inputs. Membership is a set
// union: overlapping events never conflict, they coalesce.
package compose

import (
	"iter"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/sequence"
)

// TotalFrames returns the number of ticks needed to play seq.
func TotalFrames(seq sequence.Sequence) int {
	return seq.TotalFrames()
}

// ActiveAt returns the buttons held at tick. O(events).
func ActiveAt(seq sequence.Sequence, tick int) button.Set {
	var held button.Set
	for i := 0; i < seq.Len(); i++ {
		if ev := seq.Event(i); ev.Covers(tick) {
			held = held.Union(ev.Buttons)
		}
	}
	return held
}

// Frames yields (tick, held) for every tick in [0, TotalFrames(seq)).
//
// The iterator keeps no state between ranges; each range recomputes from
// scratch, so it can be consumed any number of times.
func Frames(seq sequence.Sequence) iter.Seq2[int, button.Set] {
	return func(yield func(int, button.Set) bool) {
		total := seq.TotalFrames()
		for tick := 0; tick < total; tick++ {
			if !yield(tick, ActiveAt(seq, tick)) {
				return
			}
		}
	}
}

// Collect materializes Frames into a slice indexed by tick.
func Collect(seq sequence.Sequence) []button.Set {
	out := make([]button.Set, 0, seq.TotalFrames())
	for _, held := range Frames(seq) {
		out = append(out, held)
	}
	return out
}

// Mirrored yields the frames of seq with LEFT and RIGHT swapped.
func Mirrored(frames iter.Seq2[int, button.Set]) iter.Seq2[int, button.Set] {
	return func(yield func(int, button.Set) bool) {
		for tick, held := range frames {
			if !yield(tick, held.Mirror()) {
				return
			}
		}
	}
}
