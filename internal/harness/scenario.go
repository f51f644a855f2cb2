package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
)

// Scenario defines a conformance test scenario.
// A scenario names one motion (or builtin), how to play it, and what the
// resulting frames must look like.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the motion catalog to resolve Motion against.
	// Relative paths are relative to the scenario file location.
	Catalog string `yaml:"catalog,omitempty"`

	// Motion is a "category.name" reference into Catalog.
	Motion string `yaml:"motion,omitempty"`

	// Builtin names a predefined sequence instead of a catalog motion.
	Builtin string `yaml:"builtin,omitempty"`

	// Params are the caller's placeholder bindings.
	Params map[string]string `yaml:"params,omitempty"`

	Mirror bool `yaml:"mirror,omitempty"`
	Start  int  `yaml:"start,omitempty"`

	// Steps switches playback to stepping mode. Each entry answers one
	// tick: "advance" or "quit". Ticks past the script advance.
	Steps []string `yaml:"steps,omitempty"`

	// Expect describes an expected resolution failure.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the emitted frames and the journal.
	// Supported types: frame, order, count, total_frames, journal
	Assertions []Assertion `yaml:"assertions"`
}

// ExpectClause specifies an expected resolution failure.
type ExpectClause struct {
	// Error is the failure kind: not_found, cycle, unresolved_placeholder,
	// invalid_hold or invalid_step.
	Error string `yaml:"error"`
}

// Assertion validates the trace or the journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "frame": set emitted at Tick equals Buttons
	// - "order": Sets appear in the trace in order
	// - "count": Buttons is emitted on exactly Count ticks
	// - "total_frames": the sequence is Count ticks long
	// - "journal": session Outcome, emission Count, replay Matches
	Type string `yaml:"type"`

	// Tick is the emitted tick (used by frame).
	Tick int `yaml:"tick,omitempty"`

	// Buttons is an exact button set; empty means released
	// (used by frame and count).
	Buttons []string `yaml:"buttons,omitempty"`

	// Sets is the expected set order (used by order).
	Sets [][]string `yaml:"sets,omitempty"`

	// Count is a number of ticks or emissions (used by count,
	// total_frames and journal).
	Count int `yaml:"count,omitempty"`

	// Outcome is the expected session outcome (used by journal).
	Outcome string `yaml:"outcome,omitempty"`

	// Matches is the expected replay comparison (used by journal).
	Matches *bool `yaml:"matches,omitempty"`
}

// Assertion type constants.
const (
	AssertFrame       = "frame"
	AssertOrder       = "order"
	AssertCount       = "count"
	AssertTotalFrames = "total_frames"
	AssertJournal     = "journal"
)

// Expected resolution failure kinds.
const (
	ErrorNotFound    = "not_found"
	ErrorCycle       = "cycle"
	ErrorPlaceholder = "unresolved_placeholder"
	ErrorInvalidHold = "invalid_hold"
	ErrorInvalidStep = "invalid_step"
)

const (
	stepAdvance = "advance"
	stepQuit    = "quit"
)

var errorKinds = []string{ErrorNotFound, ErrorCycle, ErrorPlaceholder, ErrorInvalidHold, ErrorInvalidStep}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The catalog path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the catalog path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the catalog path BEFORE validation
	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) && basePath != "" {
		scenario.Catalog = filepath.Join(basePath, scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Motion == "" && s.Builtin == "":
		return fmt.Errorf("one of motion or builtin is required")
	case s.Motion != "" && s.Builtin != "":
		return fmt.Errorf("motion and builtin are mutually exclusive")
	case s.Motion != "":
		if s.Catalog == "" {
			return fmt.Errorf("catalog is required for motion %s", s.Motion)
		}
		if _, err := catalog.ParseRef(s.Motion); err != nil {
			return err
		}
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	default:
		if _, ok := sequence.Builtin(s.Builtin); !ok {
			return fmt.Errorf("unknown builtin %q", s.Builtin)
		}
	}

	if s.Start < 0 {
		return fmt.Errorf("start must be non-negative")
	}

	for i, step := range s.Steps {
		if step != stepAdvance && step != stepQuit {
			return fmt.Errorf("steps[%d]: want %s or %s, got %q", i, stepAdvance, stepQuit, step)
		}
	}

	if s.Expect != nil {
		if !slices.Contains(errorKinds, s.Expect.Error) {
			return fmt.Errorf("expect.error: unknown kind %q", s.Expect.Error)
		}
		// A failing resolution plays nothing, so there is nothing to assert.
		return nil
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFrame:
		if a.Tick < 0 {
			return fmt.Errorf("assertions[%d]: tick must be non-negative for frame", index)
		}
		if _, err := parseSet(a.Buttons); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertOrder:
		if len(a.Sets) == 0 {
			return fmt.Errorf("assertions[%d]: sets list is required for order", index)
		}
		for _, names := range a.Sets {
			if _, err := parseSet(names); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for count", index)
		}
		if _, err := parseSet(a.Buttons); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertTotalFrames:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for total_frames", index)
		}
	case AssertJournal:
		if a.Outcome == "" && a.Count == 0 && a.Matches == nil {
			return fmt.Errorf("assertions[%d]: journal needs outcome, count or matches", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// parseSet turns button names into a set.
func parseSet(names []string) (button.Set, error) {
	var set button.Set
	for _, name := range names {
		b, ok := button.Parse(name)
		if !ok {
			return button.Empty, fmt.Errorf("unknown button %q", name)
		}
		set = set.With(b)
	}
	return set, nil
}

// stepperCommands converts the scripted steps.
func stepperCommands(steps []string) []player.Command {
	cmds := make([]player.Command, len(steps))
	for i, s := range steps {
		cmds[i] = player.Advance
		if s == stepQuit {
			cmds[i] = player.Quit
		}
	}
	return cmds
}
