package compose

import (
	"cmp"
	"slices"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/sequence"
)

// Timeline indexes a Sequence by the ticks where its held set changes.
//
// Segment i covers [bounds[i], bounds[i+1]) and holds sets[i]. Memory and
// build cost grow with the number of events, not with their durations, so
// a single very long hold costs no more than a short one. At is a binary
// search.
type Timeline struct {
	bounds []int
	sets   []button.Set
	total  int
}

type edge struct {
	at    int
	set   button.Set
	delta int // +1 when the event starts, -1 when it ends
}

// NewTimeline indexes seq.
func NewTimeline(seq sequence.Sequence) *Timeline {
	edges := make([]edge, 0, 2*seq.Len())
	for _, ev := range seq.Events() {
		edges = append(edges,
			edge{at: ev.Start, set: ev.Buttons, delta: 1},
			edge{at: ev.End(), set: ev.Buttons, delta: -1},
		)
	}
	slices.SortStableFunc(edges, func(a, b edge) int { return cmp.Compare(a.at, b.at) })

	tl := &Timeline{total: seq.TotalFrames()}
	held := make(map[button.Button]int)
	for i := 0; i < len(edges); {
		at := edges[i].at
		for ; i < len(edges) && edges[i].at == at; i++ {
			for _, b := range edges[i].set.Buttons() {
				held[b] += edges[i].delta
			}
		}
		if at >= tl.total {
			break
		}
		var set button.Set
		for b, n := range held {
			if n > 0 {
				set = set.With(b)
			}
		}
		tl.bounds = append(tl.bounds, at)
		tl.sets = append(tl.sets, set)
	}
	return tl
}

// TotalFrames returns the indexed tick count.
func (tl *Timeline) TotalFrames() int {
	return tl.total
}

// At returns the held set at tick, empty outside the indexed range.
func (tl *Timeline) At(tick int) button.Set {
	if tick < 0 || tick >= tl.total {
		return button.Empty
	}
	i, found := slices.BinarySearch(tl.bounds, tick)
	if !found {
		i--
	}
	if i < 0 {
		return button.Empty
	}
	return tl.sets[i]
}
