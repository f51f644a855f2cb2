package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ez2torta/SConE/internal/sequence"
)

// Params are caller-supplied placeholder values. They take precedence over
// every binding and default in the catalog.
type Params map[string]string

// Resolution is a resolved motion plus the notation warnings raised while
// expanding it.
type Resolution struct {
	Sequence sequence.Sequence
	Warnings []string
}

var placeholderRE = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolve expands category.name into a flat Sequence.
func (c *Catalog) Resolve(category, name string, params Params) (sequence.Sequence, error) {
	res, err := c.ResolveDetailed(Key{Category: category, Name: name}, params)
	if err != nil {
		return sequence.Sequence{}, err
	}
	return res.Sequence, nil
}

// ResolveRef is Resolve for a dotted "category.name" reference.
func (c *Catalog) ResolveRef(ref string, params Params) (sequence.Sequence, error) {
	key, err := ParseRef(ref)
	if err != nil {
		return sequence.Sequence{}, err
	}
	return c.Resolve(key.Category, key.Name, params)
}

// ResolveDetailed expands key and also returns the warnings for skipped
// notation parts.
func (c *Catalog) ResolveDetailed(key Key, params Params) (Resolution, error) {
	m, ok := c.motions[key]
	if !ok {
		return Resolution{}, &MotionNotFoundError{Key: key}
	}

	r := &resolver{
		c:       c,
		params:  params,
		onStack: make(map[Key]bool),
	}
	if err := r.expand(key, Key{}, 0, nil, nil); err != nil {
		return Resolution{}, err
	}

	seq, err := sequence.New(m.DisplayName(), m.Description, r.events...)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve %s: %w", key, err)
	}
	return Resolution{Sequence: seq, Warnings: r.warnings}, nil
}

// scope is one level of placeholder lookup: the bindings carried by the
// step that referenced the motion, then the motion's declared defaults,
// then the referencing motion's scope.
type scope struct {
	parent   *scope
	bindings map[string]string
	defaults map[string]string
}

// resolver holds the state of a single Resolve call.
type resolver struct {
	c        *Catalog
	params   Params
	stack    []Key
	onStack  map[Key]bool
	cursor   int
	events   []sequence.FrameEvent
	warnings []string
}

func (r *resolver) expand(key, from Key, fromStep int, parent *scope, bindings map[string]string) error {
	m, ok := r.c.motions[key]
	if !ok {
		return &MotionNotFoundError{Key: key, From: from, Step: fromStep}
	}
	if r.onStack[key] {
		start := slices.Index(r.stack, key)
		path := append(slices.Clone(r.stack[start:]), key)
		return &ReferenceCycleError{Path: path}
	}
	r.onStack[key] = true
	r.stack = append(r.stack, key)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.onStack, key)
	}()

	sc := &scope{parent: parent, bindings: bindings, defaults: m.defaults()}
	for i, st := range m.Steps() {
		var err error
		switch st.Kind() {
		case StepInput:
			err = r.input(key, i, st, sc)
		case StepWait:
			var n int
			if n, err = r.ticks(key, i, "wait", st.Wait, sc, 0); err == nil {
				r.cursor += n
			}
		case StepRef:
			err = r.ref(key, i, st, sc)
		default:
			err = &InvalidStepError{Key: key, Step: i}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) input(key Key, i int, st Step, sc *scope) error {
	text, err := r.substitute(key, i, *st.Input, sc)
	if err != nil {
		return err
	}
	set, warnings := ParseNotation(text)
	for _, w := range warnings {
		r.warnings = append(r.warnings, fmt.Sprintf("%s step %d: %s", key, i, w))
		r.c.logger.Warn("skipping input part", "motion", key.String(), "step", i, "detail", w)
	}

	hold := 1
	if st.Hold.IsSet() {
		if hold, err = r.ticks(key, i, "hold", st.Hold, sc, 1); err != nil {
			return err
		}
	}
	// Neutral steps still occupy time, so they are kept as empty events.
	r.events = append(r.events, sequence.FrameEvent{Start: r.cursor, Buttons: set, Duration: hold})
	r.cursor += hold
	return nil
}

func (r *resolver) ref(key Key, i int, st Step, sc *scope) error {
	target, err := ParseRef(st.Ref)
	if err != nil {
		return fmt.Errorf("%s step %d: %w", key, i, err)
	}

	var bindings map[string]string
	if len(st.Params) > 0 || st.Button != "" {
		bindings = make(map[string]string, len(st.Params)+1)
		for name, v := range st.Params {
			if bindings[name], err = r.substitute(key, i, fmt.Sprint(v), sc); err != nil {
				return err
			}
		}
		if st.Button != "" {
			if bindings["button"], err = r.substitute(key, i, st.Button, sc); err != nil {
				return err
			}
		}
	}
	return r.expand(target, key, i, sc, bindings)
}

// ticks substitutes and parses a duration, requiring at least floor.
func (r *resolver) ticks(key Key, i int, field string, t Ticks, sc *scope, floor int) (int, error) {
	text, err := r.substitute(key, i, t.Expr(), sc)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < floor {
		return 0, &InvalidHoldError{Key: key, Step: i, Field: field, Value: text}
	}
	return n, nil
}

// substitute replaces every {name} in text. All names are looked up before
// anything is replaced, so a missing value is reported on its own.
func (r *resolver) substitute(key Key, i int, text string, sc *scope) (string, error) {
	matches := placeholderRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	values := make(map[string]string, len(matches))
	for _, m := range matches {
		v, ok := r.lookup(m[1], sc)
		if !ok {
			return "", &UnresolvedPlaceholderError{Key: key, Step: i, Placeholder: m[1]}
		}
		values[m[1]] = v
	}
	return placeholderRE.ReplaceAllStringFunc(text, func(s string) string {
		return values[s[1:len(s)-1]]
	}), nil
}

func (r *resolver) lookup(name string, sc *scope) (string, bool) {
	if v, ok := r.params[name]; ok {
		return v, true
	}
	for ; sc != nil; sc = sc.parent {
		if v, ok := sc.bindings[name]; ok {
			return v, true
		}
		if v, ok := sc.defaults[name]; ok {
			return v, true
		}
	}
	return "", false
}
