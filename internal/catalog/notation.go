package catalog

import (
	"fmt"
	"strings"

	"github.com/ez2torta/SConE/internal/button"
)

// numpad maps numeric-pad direction codes to button sets. 5 is neutral.
var numpad = map[string]button.Set{
	"1": button.Of(button.Down, button.Left),
	"2": button.Of(button.Down),
	"3": button.Of(button.Down, button.Right),
	"4": button.Of(button.Left),
	"5": button.Empty,
	"6": button.Of(button.Right),
	"7": button.Of(button.Up, button.Left),
	"8": button.Of(button.Up),
	"9": button.Of(button.Up, button.Right),
}

// aliases maps arcade labels onto the pad. C and D sit on X and Y.
var aliases = map[string]button.Set{
	"C":  button.Of(button.X),
	"D":  button.Of(button.Y),
	"AB": button.Of(button.A, button.B),
	"CD": button.Of(button.X, button.Y),
}

// ParseNotation parses a "+"-joined input string such as "2+B" or "6+C".
// Parts that are not a numpad digit, alias or button name are skipped and
// reported in the returned warnings. Placeholders must already be
// substituted.
func ParseNotation(s string) (button.Set, []string) {
	var (
		set      button.Set
		warnings []string
	)
	for _, raw := range strings.Split(s, "+") {
		part := strings.TrimSpace(raw)
		if part == "" {
			warnings = append(warnings, fmt.Sprintf("empty part in input %q", s))
			continue
		}
		if dir, ok := numpad[part]; ok {
			set = set.Union(dir)
			continue
		}
		if al, ok := aliases[button.Fold(part)]; ok {
			set = set.Union(al)
			continue
		}
		if b, ok := button.Parse(part); ok {
			set = set.With(b)
			continue
		}
		warnings = append(warnings, fmt.Sprintf("unknown input %q in %q", part, s))
	}
	return set, warnings
}
