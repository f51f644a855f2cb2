package button

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Button identifies one physical control of the emulated pad.
//
// The domain is closed: the values below are the only buttons the engine
// knows about. Transport-specific bit layouts belong to the sink, not here.
type Button uint8

// Buttons in canonical order. Set iteration and Names() follow this order.
const (
	Up Button = iota
	Down
	Left
	Right
	A
	B
	X
	Y
	L
	R
	Select
	Start

	numButtons
)

var names = [numButtons]string{
	Up:     "UP",
	Down:   "DOWN",
	Left:   "LEFT",
	Right:  "RIGHT",
	A:      "A",
	B:      "B",
	X:      "X",
	Y:      "Y",
	L:      "L",
	R:      "R",
	Select: "SELECT",
	Start:  "START",
}

var byName = func() map[string]Button {
	m := make(map[string]Button, numButtons)
	for b := Button(0); b < numButtons; b++ {
		m[names[b]] = b
	}
	return m
}()

// Fold returns the lookup key for a name: trimmed and upper-cased with
// Unicode case mapping. Casers are stateful, so each call builds its own.
func Fold(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}

// All returns every button in canonical order.
func All() []Button {
	out := make([]Button, 0, numButtons)
	for b := Button(0); b < numButtons; b++ {
		out = append(out, b)
	}
	return out
}

// Valid reports whether b belongs to the enumeration.
func (b Button) Valid() bool {
	return b < numButtons
}

// String returns the canonical upper-case name.
func (b Button) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Button(%d)", uint8(b))
	}
	return names[b]
}

// MarshalText implements encoding.TextMarshaler.
func (b Button) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid button %d", uint8(b))
	}
	return []byte(names[b]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Button) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("unknown button %q", string(text))
	}
	*b = parsed
	return nil
}

// Parse looks a button up by name. Matching is case-insensitive and ignores
// surrounding whitespace.
func Parse(name string) (Button, bool) {
	b, ok := byName[Fold(name)]
	return b, ok
}

// MustParse is Parse for names known at compile time. It panics on unknown names.
func MustParse(name string) Button {
	b, ok := Parse(name)
	if !ok {
		panic(fmt.Sprintf("button: unknown name %q", name))
	}
	return b
}
