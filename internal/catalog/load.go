package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// Format is the source syntax of a catalog document.
type Format int

const (
	// FormatYAML covers YAML and JSON; JSON is a subset yaml.v3 parses.
	FormatYAML Format = iota
	// FormatCUE is compiled with cuelang.org/go and exported as JSON.
	FormatCUE
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return 0, fmt.Errorf("unsupported catalog extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Catalog is a loaded, read-only set of motions.
type Catalog struct {
	meta       Metadata
	motions    map[Key]*Motion
	order      []Key
	categories []string
	logger     *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for resolution warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// Load reads and parses the catalog at path. The raw document is returned
// alongside so callers can run the validator over the same bytes.
func Load(path string, opts ...Option) (*Catalog, *yaml.Node, error) {
	root, err := ReadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := FromDocument(root, opts...)
	if err != nil {
		return nil, root, withSource(err, path)
	}
	return c, root, nil
}

// Parse decodes data in the given format into a Catalog.
func Parse(data []byte, format Format, opts ...Option) (*Catalog, *yaml.Node, error) {
	root, err := DecodeDocument(data, format, "")
	if err != nil {
		return nil, nil, err
	}
	c, err := FromDocument(root, opts...)
	if err != nil {
		return nil, root, err
	}
	return c, root, nil
}

// ReadDocument reads path into a raw document node without interpreting it.
func ReadDocument(path string) (*yaml.Node, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: "unsupported file", Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: "read failed", Err: err}
	}
	return DecodeDocument(data, format, path)
}

// DecodeDocument parses data into a raw document node. source is only used
// in error messages and may be empty.
func DecodeDocument(data []byte, format Format, source string) (*yaml.Node, error) {
	if format == FormatCUE {
		exported, err := exportCUE(data, source)
		if err != nil {
			return nil, err
		}
		data = exported
	}

	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: source, Message: "empty document"}
		}
		return nil, &LoadError{Source: source, Message: "parse failed", Err: err}
	}
	if body := documentBody(&root); body == nil || body.Kind != yaml.MappingNode {
		return nil, &LoadError{Source: source, Line: root.Line, Message: "catalog must be a mapping"}
	}
	return &root, nil
}

// exportCUE evaluates a CUE source and renders it as JSON. Field order
// follows declaration order.
func exportCUE(data []byte, source string) ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(source))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(source, "compile failed", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(source, "catalog is not concrete", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(source, "export failed", err)
	}
	return out, nil
}

func cueLoadError(source, msg string, err error) *LoadError {
	le := &LoadError{Source: source, Message: msg, Err: err}
	if pos := cueerrors.Positions(err); len(pos) > 0 && pos[0].IsValid() {
		le.Line = pos[0].Line()
	}
	return le
}

// FromDocument builds a Catalog from a raw document. Categories and motions
// keep document order; reserved top-level keys other than metadata are
// ignored, as are top-level values that are not mappings.
func FromDocument(root *yaml.Node, opts ...Option) (*Catalog, error) {
	body := documentBody(root)
	if body == nil || body.Kind != yaml.MappingNode {
		return nil, &LoadError{Message: "catalog must be a mapping"}
	}

	c := &Catalog{
		motions: make(map[Key]*Motion),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i := 0; i+1 < len(body.Content); i += 2 {
		keyNode, valNode := body.Content[i], body.Content[i+1]
		name := keyNode.Value

		switch {
		case name == "metadata":
			if err := valNode.Decode(&c.meta); err != nil {
				return nil, &LoadError{Line: valNode.Line, Message: "invalid metadata", Err: err}
			}
			continue
		case IsReservedKey(name):
			continue
		case valNode.Kind != yaml.MappingNode:
			c.logger.Debug("skipping non-mapping top-level key", "key", name, "line", keyNode.Line)
			continue
		}

		c.categories = append(c.categories, name)
		for j := 0; j+1 < len(valNode.Content); j += 2 {
			mKey, mVal := valNode.Content[j], valNode.Content[j+1]
			key := Key{Category: name, Name: mKey.Value}

			m := &Motion{}
			if err := mVal.Decode(m); err != nil {
				return nil, &LoadError{Line: mVal.Line, Message: "invalid motion " + key.String(), Err: err}
			}
			m.Key = key
			if _, dup := c.motions[key]; dup {
				return nil, &LoadError{Line: mKey.Line, Message: "duplicate motion " + key.String()}
			}
			c.motions[key] = m
			c.order = append(c.order, key)
		}
	}
	return c, nil
}

func documentBody(root *yaml.Node) *yaml.Node {
	if root == nil {
		return nil
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		return root.Content[0]
	}
	return root
}

func withSource(err error, source string) error {
	var le *LoadError
	if errors.As(err, &le) && le.Source == "" {
		le.Source = source
	}
	return err
}

// Metadata returns the catalog metadata block.
func (c *Catalog) Metadata() Metadata { return c.meta }

// Categories returns the category names in document order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Keys returns every motion key in document order.
func (c *Catalog) Keys() []Key {
	return append([]Key(nil), c.order...)
}

// Len returns the number of motions.
func (c *Catalog) Len() int { return len(c.order) }

// Motion looks up a motion by key. The returned motion must not be modified.
func (c *Catalog) Motion(key Key) (*Motion, bool) {
	m, ok := c.motions[key]
	return m, ok
}

// Find looks a motion up by name alone, searching the known categories in
// listing order and then any extra categories in document order.
func (c *Catalog) Find(name string) (*Motion, error) {
	for _, cat := range c.searchOrder() {
		if m, ok := c.motions[Key{Category: cat, Name: name}]; ok {
			return m, nil
		}
	}
	return nil, &MotionNotFoundError{Key: Key{Name: name}}
}

func (c *Catalog) searchOrder() []string {
	seen := make(map[string]bool, len(KnownCategories))
	out := make([]string, 0, len(KnownCategories)+len(c.categories))
	for _, cat := range KnownCategories {
		seen[cat] = true
		out = append(out, cat)
	}
	for _, cat := range c.categories {
		if !seen[cat] {
			out = append(out, cat)
		}
	}
	return out
}
