package sequence

import (
	"sort"

	"github.com/ez2torta/SConE/internal/button"
)

var builtins = map[string]func() *Builder{
	"button-test": func() *Builder {
		return NewBuilder("Button Test", "Test sequence pressing each button").
			AddPress(0, button.Down, 120).
			AddPress(120, button.Right, 120).
			AddPress(240, button.X, 5).
			AddFrame(250, button.Of(button.Right, button.B), 20).
			AddPress(255, button.Y, 10).
			AddFrame(265, button.Of(button.Up, button.Left), 5).
			AddPress(270, button.B, 5).
			AddPress(275, button.A, 10)
	},
	"hadouken": func() *Builder {
		return NewBuilder("Hadouken", "Hadouken fireball combo").
			AddPress(0, button.Down, 2).
			AddPress(2, button.Right, 1).
			AddFrame(3, button.Of(button.Down, button.Right), 1).
			AddFrame(4, button.Of(button.Right, button.Y), 2)
	},
	"shoryuken": func() *Builder {
		return NewBuilder("Shoryuken", "Shoryuken uppercut combo").
			AddPress(0, button.Right, 1).
			AddPress(1, button.Down, 1).
			AddFrame(2, button.Of(button.Right, button.Down), 1).
			AddFrame(3, button.Of(button.Right, button.Y), 3)
	},
	"walk-right": func() *Builder {
		return NewBuilder("Walk Right", "Walk to the right for 30 frames").
			AddPress(0, button.Right, 30)
	},
	"walk-left": func() *Builder {
		return NewBuilder("Walk Left", "Walk to the left for 30 frames").
			AddPress(0, button.Left, 30)
	},
	"run-right": func() *Builder {
		return NewBuilder("Run Right", "Run to the right for 20 frames").
			AddPress(0, button.Right, 20).
			AddPress(0, button.B, 20)
	},
	"flashkick": func() *Builder {
		return NewBuilder("Flashkick", "Down charge move").
			AddFrame(0, button.Of(button.Left, button.Down), 30).
			AddFrame(30, button.Of(button.Up, button.B), 3)
	},
	"konami": func() *Builder {
		b := NewBuilder("Konami Code", "The legendary Konami code")
		for i, btn := range []button.Button{
			button.Up, button.Up, button.Down, button.Down,
			button.Left, button.Right, button.Left, button.Right,
			button.B, button.A,
		} {
			b.AddPress(i*2, btn, 1)
		}
		return b
	},
	"basic-combo": func() *Builder {
		return NewBuilder("Basic Combo", "Simple alternating attack combo").
			AddPress(0, button.A, 2).
			AddPress(3, button.B, 2).
			AddPress(6, button.A, 2).
			AddPress(9, button.B, 2)
	},
	"jump": func() *Builder {
		return NewBuilder("Jump", "Jump with attack").
			AddFrame(0, button.Of(button.Up, button.A), 5)
	},
}

// Builtin returns one of the predefined sequences by key (e.g. "hadouken").
func Builtin(key string) (Sequence, bool) {
	mk, ok := builtins[key]
	if !ok {
		return Sequence{}, false
	}
	seq, err := mk().Build()
	if err != nil {
		// Builtins are static data; a failure here is a programming error.
		panic(err)
	}
	return seq, true
}

// BuiltinKeys lists the predefined sequence keys in sorted order.
func BuiltinKeys() []string {
	keys := make([]string, 0, len(builtins))
	for k := range builtins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
