package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Known category names, in listing order.
const (
	BasicAttacks      = "basic_attacks"
	SpecialMotions    = "special_motions"
	Movement          = "movement"
	AerialAttacks     = "aerial_attacks"
	Combos            = "combos"
	AdvancedSequences = "advanced_sequences"
	TrainingDrills    = "training_drills"
)

// KnownCategories lists the standard categories in listing order.
var KnownCategories = []string{
	BasicAttacks,
	SpecialMotions,
	Movement,
	AerialAttacks,
	Combos,
	AdvancedSequences,
	TrainingDrills,
}

// reservedKeys are top-level document keys that are not categories.
var reservedKeys = map[string]bool{
	"metadata":       true,
	"button_mapping": true,
}

// IsReservedKey reports whether a top-level key is not a category.
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// Key identifies a motion by category and name.
type Key struct {
	Category string
	Name     string
}

// String renders the dotted reference form "category.name", or just the
// name when the category is unknown.
func (k Key) String() string {
	if k.Category == "" {
		return k.Name
	}
	return k.Category + "." + k.Name
}

// ParseRef splits a dotted "category.name" reference.
func ParseRef(ref string) (Key, error) {
	category, name, ok := strings.Cut(strings.TrimSpace(ref), ".")
	if !ok || category == "" || name == "" {
		return Key{}, fmt.Errorf("invalid reference %q: want category.name", ref)
	}
	return Key{Category: category, Name: name}, nil
}

// Metadata describes the catalog.
type Metadata struct {
	Game    string `yaml:"game"`
	FPS     int    `yaml:"fps"`
	Version string `yaml:"version"`
}

// Parameter is a declared motion parameter.
type Parameter struct {
	Default     any    `yaml:"default"`
	Description string `yaml:"description,omitempty"`
}

// Ticks is a step duration: either an integer or a string that may contain
// {placeholders} and must become an integer after substitution.
type Ticks struct {
	set  bool
	n    int
	expr string
}

// TicksOf returns a literal duration.
func TicksOf(n int) Ticks {
	return Ticks{set: true, n: n}
}

// TicksExpr returns a templated duration such as "{duration}".
func TicksExpr(expr string) Ticks {
	return Ticks{set: true, expr: expr}
}

// IsSet reports whether the field was present in the document.
func (t Ticks) IsSet() bool { return t.set }

// IsZero lets yaml omitempty drop absent durations.
func (t Ticks) IsZero() bool { return !t.set }

// Expr returns the textual form, used for placeholder substitution.
func (t Ticks) Expr() string {
	if t.expr != "" {
		return t.expr
	}
	return strconv.Itoa(t.n)
}

// UnmarshalYAML accepts integer and string scalars.
func (t *Ticks) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be an integer or string", node.Line)
	}
	switch node.ShortTag() {
	case "!!int":
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		*t = TicksOf(n)
	case "!!str":
		*t = TicksExpr(node.Value)
	default:
		return fmt.Errorf("line %d: duration must be an integer or string, got %s", node.Line, node.ShortTag())
	}
	return nil
}

// MarshalYAML writes literal durations as integers.
func (t Ticks) MarshalYAML() (any, error) {
	if t.expr != "" {
		return t.expr, nil
	}
	return t.n, nil
}

// Step is one entry of a motion's frames or sequence list.
//
// Exactly one of Input, Wait or Ref is meaningful for a sequence step;
// frame steps only use Input and Hold.
type Step struct {
	Input   *string        `yaml:"input,omitempty"`
	Hold    Ticks          `yaml:"hold,omitempty"`
	Wait    Ticks          `yaml:"wait,omitempty"`
	Ref     string         `yaml:"ref,omitempty"`
	Params  map[string]any `yaml:"params,omitempty"`
	Button  string         `yaml:"button,omitempty"`
	Comment string         `yaml:"comment,omitempty"`
}

// StepKind classifies a step.
type StepKind int

const (
	StepInvalid StepKind = iota
	StepInput
	StepWait
	StepRef
)

// Kind reports what the step does. Input wins over Ref, Ref over Wait,
// matching the order the fields are checked at expansion time.
func (s Step) Kind() StepKind {
	switch {
	case s.Input != nil:
		return StepInput
	case s.Ref != "":
		return StepRef
	case s.Wait.IsSet():
		return StepWait
	default:
		return StepInvalid
	}
}

// Motion is one catalog entry.
type Motion struct {
	Key Key `yaml:"-"`

	Name        string               `yaml:"name,omitempty"`
	Description string               `yaml:"description,omitempty"`
	Difficulty  int                  `yaml:"difficulty,omitempty"`
	TotalFrames int                  `yaml:"total_frames,omitempty"`
	Properties  []string             `yaml:"properties,omitempty"`
	Parameters  map[string]Parameter `yaml:"parameters,omitempty"`
	Frames      []Step               `yaml:"frames,omitempty"`
	Sequence    []Step               `yaml:"sequence,omitempty"`
	Category    string               `yaml:"category,omitempty"`
}

// Steps returns the body to expand: frames when present, else sequence.
func (m *Motion) Steps() []Step {
	if m.Frames != nil {
		return m.Frames
	}
	return m.Sequence
}

// DisplayName returns the human name, falling back to the key name.
func (m *Motion) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Key.Name
}

// Level returns the difficulty, defaulting to 1.
func (m *Motion) Level() int {
	if m.Difficulty == 0 {
		return 1
	}
	return m.Difficulty
}

// defaults renders declared parameter defaults as strings.
func (m *Motion) defaults() map[string]string {
	if len(m.Parameters) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Parameters))
	for name, p := range m.Parameters {
		if p.Default != nil {
			out[name] = fmt.Sprint(p.Default)
		}
	}
	return out
}
