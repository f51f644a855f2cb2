package button

import "strings"

// Set is an immutable set of held buttons.
//
// The zero value is the empty set (all buttons released). Adding a button
// that is already present is a no-op; there is no notion of conflicting
// buttons, so LEFT and RIGHT may be held together.
type Set struct {
	bits uint16
}

// Empty is the released state.
var Empty = Set{}

// Of builds a set from the given buttons. Invalid buttons are ignored.
func Of(buttons ...Button) Set {
	var s Set
	for _, b := range buttons {
		s = s.With(b)
	}
	return s
}

// With returns s plus b.
func (s Set) With(b Button) Set {
	if !b.Valid() {
		return s
	}
	return Set{bits: s.bits | 1<<b}
}

// Without returns s minus b.
func (s Set) Without(b Button) Set {
	if !b.Valid() {
		return s
	}
	return Set{bits: s.bits &^ (1 << b)}
}

// Has reports whether b is held.
func (s Set) Has(b Button) bool {
	return b.Valid() && s.bits&(1<<b) != 0
}

// Union returns the coalesced union of s and other.
func (s Set) Union(other Set) Set {
	return Set{bits: s.bits | other.bits}
}

// IsEmpty reports whether no button is held.
func (s Set) IsEmpty() bool {
	return s.bits == 0
}

// Len returns the number of held buttons.
func (s Set) Len() int {
	n := 0
	for b := Button(0); b < numButtons; b++ {
		if s.Has(b) {
			n++
		}
	}
	return n
}

// Equal reports whether both sets hold exactly the same buttons.
func (s Set) Equal(other Set) bool {
	return s.bits == other.bits
}

// Buttons lists the held buttons in canonical order.
func (s Set) Buttons() []Button {
	out := make([]Button, 0, 4)
	for b := Button(0); b < numButtons; b++ {
		if s.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

// Names lists the held button names in canonical order.
func (s Set) Names() []string {
	held := s.Buttons()
	out := make([]string, len(held))
	for i, b := range held {
		out[i] = b.String()
	}
	return out
}

// Mirror swaps LEFT and RIGHT, leaving every other button untouched.
// Mirror is its own inverse.
func (s Set) Mirror() Set {
	out := s.Without(Left).Without(Right)
	if s.Has(Left) {
		out = out.With(Right)
	}
	if s.Has(Right) {
		out = out.With(Left)
	}
	return out
}

// String renders the set as "[DOWN RIGHT]", or "[]" when empty.
func (s Set) String() string {
	return "[" + strings.Join(s.Names(), " ") + "]"
}
