// Package validate checks a raw catalog document before it is used.
//
// The checks run on the parsed *yaml.Node, not on the loaded catalog, so a
// document that would fail to load still gets a full report with line
// numbers. Validation never mutates the document.
package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ez2torta/SConE/internal/catalog"
)

// Finding codes (E2xx errors, W2xx warnings).
const (
	ErrMetadataMissing   = "E201" // no metadata block
	ErrMetadataField     = "E202" // game, fps or version missing
	ErrFPSNotInteger     = "E203" // metadata.fps is not an integer
	ErrCategoryNotMap    = "E204" // a known category is not a mapping
	ErrMotionNotMap      = "E205" // a motion is not a mapping
	ErrNoBody            = "E206" // neither frames nor sequence
	ErrBodyNotList       = "E207" // frames or sequence is not a list
	ErrFrameNoInput      = "E208" // frame step without input
	ErrStepKind          = "E209" // sequence step needs exactly one of ref, input, wait
	ErrDifficulty        = "E210" // difficulty not an integer in [1,5]
	ErrTotalFrames       = "E211" // total_frames not an integer
	ErrStepNotMap        = "E212" // step is not a mapping
	ErrRefFormat         = "E213" // ref is not "category.name"
	ErrRefMissing        = "E214" // ref target does not exist
	ErrRefCycle          = "E215" // reference graph has a cycle
	ErrDocumentNotMap    = "E216" // document root is not a mapping
	WarnCategoryMissing  = "W201" // known category absent
	WarnHoldMissing      = "W202" // frame step without hold, defaults to 1
	WarnUnknownTopLevel  = "W203" // top-level key that is neither a category map nor reserved
)

// Finding is one validation result.
type Finding struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", f.Code, f.Line, f.Path, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Code, f.Path, f.Message)
}

// Report holds errors and warnings in document order.
type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Valid reports whether there are no errors. Warnings never block.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateFile reads path (JSON, YAML or CUE) and validates it. The error is
// non-nil only when the file cannot be read or parsed at all.
func ValidateFile(path string) (Report, error) {
	root, err := catalog.ReadDocument(path)
	if err != nil {
		return Report{}, err
	}
	return Validate(root), nil
}

// ValidateBytes parses data in the given format and validates it.
func ValidateBytes(data []byte, format catalog.Format) (Report, error) {
	root, err := catalog.DecodeDocument(data, format, "")
	if err != nil {
		return Report{}, err
	}
	return Validate(root), nil
}

type checker struct {
	report Report
	refs   *refGraph
}

func (c *checker) errorf(n *yaml.Node, path, code, format string, args ...any) {
	c.report.Errors = append(c.report.Errors, Finding{Path: path, Code: code, Message: fmt.Sprintf(format, args...), Line: line(n)})
}

func (c *checker) warnf(n *yaml.Node, path, code, format string, args ...any) {
	c.report.Warnings = append(c.report.Warnings, Finding{Path: path, Code: code, Message: fmt.Sprintf(format, args...), Line: line(n)})
}

// Validate runs every structural check and then the reference analysis.
func Validate(root *yaml.Node) Report {
	c := &checker{refs: newRefGraph()}

	body := root
	if body != nil && body.Kind == yaml.DocumentNode && len(body.Content) > 0 {
		body = body.Content[0]
	}
	if body == nil || body.Kind != yaml.MappingNode {
		c.errorf(body, "$", ErrDocumentNotMap, "catalog must be a mapping")
		return c.report
	}

	c.metadata(body)

	present := make(map[string]bool)
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]
		name := k.Value
		if catalog.IsReservedKey(name) {
			continue
		}
		present[name] = true
		if v.Kind != yaml.MappingNode {
			if isKnownCategory(name) {
				c.errorf(v, name, ErrCategoryNotMap, "category must be a mapping of motions")
			} else {
				c.warnf(k, name, WarnUnknownTopLevel, "ignored top-level key")
			}
			continue
		}
		c.category(name, v)
	}

	for _, cat := range catalog.KnownCategories {
		if !present[cat] {
			c.warnf(nil, cat, WarnCategoryMissing, "category not found")
		}
	}

	c.refs.check(c)
	return c.report
}

func (c *checker) metadata(body *yaml.Node) {
	meta := lookup(body, "metadata")
	if meta == nil {
		c.errorf(body, "metadata", ErrMetadataMissing, "missing metadata section")
		return
	}
	if meta.Kind != yaml.MappingNode {
		c.errorf(meta, "metadata", ErrMetadataField, "metadata must be a mapping with game, fps and version")
		return
	}
	for _, field := range []string{"game", "fps", "version"} {
		if lookup(meta, field) == nil {
			c.errorf(meta, "metadata."+field, ErrMetadataField, "missing field")
		}
	}
	if fps := lookup(meta, "fps"); fps != nil && !isInt(fps) {
		c.errorf(fps, "metadata.fps", ErrFPSNotInteger, "fps must be an integer, got %q", fps.Value)
	}
}

func (c *checker) category(cat string, node *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		c.motion(catalog.Key{Category: cat, Name: k.Value}, v)
	}
}

func (c *checker) motion(key catalog.Key, node *yaml.Node) {
	path := key.String()
	c.refs.addNode(key, node)

	if node.Kind != yaml.MappingNode {
		c.errorf(node, path, ErrMotionNotMap, "motion must be a mapping")
		return
	}

	frames := lookup(node, "frames")
	seq := lookup(node, "sequence")
	if frames == nil && seq == nil {
		c.errorf(node, path, ErrNoBody, "must have 'frames' or 'sequence'")
	}

	if frames != nil {
		if frames.Kind != yaml.SequenceNode {
			c.errorf(frames, path+".frames", ErrBodyNotList, "'frames' must be a list")
		} else {
			for i, step := range frames.Content {
				c.frameStep(key, fmt.Sprintf("%s.frames[%d]", path, i), step)
			}
		}
	}
	if seq != nil {
		if seq.Kind != yaml.SequenceNode {
			c.errorf(seq, path+".sequence", ErrBodyNotList, "'sequence' must be a list")
		} else {
			for i, step := range seq.Content {
				c.sequenceStep(key, fmt.Sprintf("%s.sequence[%d]", path, i), step)
			}
		}
	}

	if tf := lookup(node, "total_frames"); tf != nil && !isInt(tf) {
		c.errorf(tf, path+".total_frames", ErrTotalFrames, "'total_frames' must be an integer")
	}
	if d := lookup(node, "difficulty"); d != nil {
		n, err := strconv.Atoi(d.Value)
		if !isInt(d) || err != nil || n < 1 || n > 5 {
			c.errorf(d, path+".difficulty", ErrDifficulty, "'difficulty' must be an integer from 1 to 5")
		}
	}
}

func (c *checker) frameStep(key catalog.Key, path string, step *yaml.Node) {
	if step.Kind != yaml.MappingNode {
		c.errorf(step, path, ErrStepNotMap, "step must be a mapping")
		return
	}
	if lookup(step, "input") == nil {
		c.errorf(step, path, ErrFrameNoInput, "missing 'input'")
	}
	if lookup(step, "hold") == nil {
		c.warnf(step, path, WarnHoldMissing, "missing 'hold', assuming 1")
	}
	c.stepRef(key, path, step)
}

func (c *checker) sequenceStep(key catalog.Key, path string, step *yaml.Node) {
	if step.Kind != yaml.MappingNode {
		c.errorf(step, path, ErrStepNotMap, "step must be a mapping")
		return
	}
	var kinds []string
	for _, field := range []string{"ref", "input", "wait"} {
		if lookup(step, field) != nil {
			kinds = append(kinds, field)
		}
	}
	if len(kinds) != 1 {
		msg := "needs one of 'ref', 'input' or 'wait'"
		if len(kinds) > 1 {
			msg = fmt.Sprintf("has %s; only one of 'ref', 'input' or 'wait' is allowed", strings.Join(kinds, " and "))
		}
		c.errorf(step, path, ErrStepKind, "%s", msg)
	}
	c.stepRef(key, path, step)
}

func (c *checker) stepRef(key catalog.Key, path string, step *yaml.Node) {
	ref := lookup(step, "ref")
	if ref == nil {
		return
	}
	target, err := catalog.ParseRef(ref.Value)
	if ref.Kind != yaml.ScalarNode || err != nil {
		c.errorf(ref, path+".ref", ErrRefFormat, "ref must be \"category.name\", got %q", ref.Value)
		return
	}
	c.refs.addEdge(key, target, path+".ref", ref)
}

// Stats counts motions per category on the raw document.
func Stats(root *yaml.Node) catalog.Stats {
	s := catalog.Stats{ByCategory: make(map[string]int, len(catalog.KnownCategories))}
	for _, cat := range catalog.KnownCategories {
		s.ByCategory[cat] = 0
	}
	body := root
	if body != nil && body.Kind == yaml.DocumentNode && len(body.Content) > 0 {
		body = body.Content[0]
	}
	if body == nil || body.Kind != yaml.MappingNode {
		return s
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]
		if catalog.IsReservedKey(k.Value) || v.Kind != yaml.MappingNode {
			continue
		}
		n := len(v.Content) / 2
		s.ByCategory[k.Value] += n
		s.Total += n
	}
	return s
}

// lookup returns the value for key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isInt(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!int"
}

func isKnownCategory(name string) bool {
	return slices.Contains(catalog.KnownCategories, name)
}

func line(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}
