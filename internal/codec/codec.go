// Package codec converts Sequences to and from their persisted document form.
//
// Document shape:
//
//	{
//	  "name": "Hadouken",
//	  "description": "fireball",
//	  "total_frames": 6,
//	  "frames": [{"frame": 0, "buttons": ["DOWN"], "duration_frames": 2}, ...]
//	}
//
// total_frames is informational and ignored on decode; the authoritative
// value is always derived from the frames.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/sequence"
)

// Document is the structured form of a Sequence.
type Document struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	TotalFrames int             `json:"total_frames" yaml:"total_frames"`
	Frames      []FrameDocument `json:"frames" yaml:"frames"`
}

// FrameDocument is one encoded FrameEvent.
//
// DurationFrames is a pointer so that an absent field can default to 1.
type FrameDocument struct {
	Frame          int      `json:"frame" yaml:"frame"`
	Buttons        []string `json:"buttons" yaml:"buttons"`
	DurationFrames *int     `json:"duration_frames,omitempty" yaml:"duration_frames,omitempty"`
}

// Duration returns the encoded duration, defaulting to 1 when absent.
func (f FrameDocument) Duration() int {
	if f.DurationFrames == nil {
		return 1
	}
	return *f.DurationFrames
}

// Encode converts seq to its document form.
func Encode(seq sequence.Sequence) Document {
	doc := Document{
		Name:        seq.Name(),
		Description: seq.Description(),
		TotalFrames: seq.TotalFrames(),
		Frames:      make([]FrameDocument, 0, seq.Len()),
	}
	for _, ev := range seq.Events() {
		d := ev.Duration
		doc.Frames = append(doc.Frames, FrameDocument{
			Frame:          ev.Start,
			Buttons:        ev.Buttons.Names(),
			DurationFrames: &d,
		})
	}
	return doc
}

// Decode is the inverse of Encode. An empty name is legal, as it is for
// the Builder.
func Decode(doc Document) (sequence.Sequence, error) {
	b := sequence.NewBuilder(doc.Name, doc.Description)
	for i, fd := range doc.Frames {
		var held button.Set
		for j, token := range fd.Buttons {
			btn, ok := button.Parse(token)
			if !ok {
				return sequence.Sequence{}, &UnknownButtonError{Token: token, Frame: i, Index: j}
			}
			held = held.With(btn)
		}
		b.AddFrame(fd.Frame, held, fd.Duration())
	}

	seq, err := b.Build()
	if err != nil {
		return sequence.Sequence{}, &MalformedDocumentError{Field: "frames", Err: err}
	}
	return seq, nil
}

// Marshal encodes seq as indented JSON.
func Marshal(seq sequence.Sequence) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Encode(seq)); err != nil {
		return nil, fmt.Errorf("encode sequence %q: %w", seq.Name(), err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a JSON or YAML document.
//
// YAML is a superset of JSON, so both go through the same yaml.v3 decoder.
// Unknown fields are rejected to catch typos such as "duration" for
// "duration_frames". The name key must be present, though its value may
// be empty.
func Unmarshal(data []byte) (sequence.Sequence, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return sequence.Sequence{}, &MalformedDocumentError{Message: "cannot parse", Err: err}
	}

	var keys struct {
		Name *string `yaml:"name"`
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return sequence.Sequence{}, &MalformedDocumentError{Message: "cannot parse", Err: err}
	}
	if keys.Name == nil {
		return sequence.Sequence{}, &MalformedDocumentError{Field: "name", Message: "is required"}
	}
	return Decode(doc)
}

// ReadFile loads a sequence document from disk.
func ReadFile(path string) (sequence.Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("read sequence file: %w", err)
	}
	seq, err := Unmarshal(data)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("%s: %w", path, err)
	}
	return seq, nil
}

// WriteFile saves seq as indented JSON.
func WriteFile(path string, seq sequence.Sequence) error {
	data, err := Marshal(seq)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sequence file: %w", err)
	}
	return nil
}
