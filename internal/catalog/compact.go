package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	compactGroupRE = regexp.MustCompile(`\[([^\]]*)\]`)
	// Only lowercase x counts as a separator so the X button stays usable.
	compactHoldRE = regexp.MustCompile(`^(.+?)\s*[×x*]\s*(\d+)$`)
)

// ParseCompact turns compact notation such as "[5×3][5+A][5×5]" into frame
// steps. A group without a count holds for one tick; "x" and "*" are
// accepted in place of "×".
func ParseCompact(notation string) ([]Step, error) {
	groups := compactGroupRE.FindAllStringSubmatch(notation, -1)
	if len(groups) == 0 {
		return nil, fmt.Errorf("compact notation %q: no [input] groups", notation)
	}

	steps := make([]Step, 0, len(groups))
	for i, g := range groups {
		body := strings.TrimSpace(g[1])
		input, hold := body, 1
		if m := compactHoldRE.FindStringSubmatch(body); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("compact notation group %d %q: hold must be >= 1", i, g[0])
			}
			input, hold = strings.TrimSpace(m[1]), n
		}
		if input == "" {
			return nil, fmt.Errorf("compact notation group %d %q: empty input", i, g[0])
		}
		steps = append(steps, Step{Input: &input, Hold: TicksOf(hold)})
	}
	return steps, nil
}

// CompactMotion wraps ParseCompact into a frames motion whose declared
// total_frames is the sum of the holds.
func CompactMotion(name, notation string) (Motion, error) {
	steps, err := ParseCompact(notation)
	if err != nil {
		return Motion{}, err
	}
	total := 0
	for _, s := range steps {
		n, _ := strconv.Atoi(s.Hold.Expr())
		total += n
	}
	return Motion{Name: name, Frames: steps, TotalFrames: total}, nil
}

// FormatCompact renders frame steps back into compact notation. Steps
// without an input are skipped.
func FormatCompact(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		if s.Input == nil {
			continue
		}
		b.WriteByte('[')
		b.WriteString(*s.Input)
		if s.Hold.IsSet() && s.Hold.Expr() != "1" {
			b.WriteString("×")
			b.WriteString(s.Hold.Expr())
		}
		b.WriteByte(']')
	}
	return b.String()
}
