package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/ez2torta/SConE/internal/sequence"
)

// DomainSequence separates sequence fingerprints from any other hash space.
const DomainSequence = "scone/sequence/v1"

// MarshalCanonical renders doc as canonical JSON: object keys in UTF-16
// code unit order, strings NFC-normalized, no HTML escaping, no
// insignificant whitespace. Two documents describing the same events in the
// same order produce identical bytes.
func MarshalCanonical(doc Document) ([]byte, error) {
	frames := make([]any, len(doc.Frames))
	for i, fd := range doc.Frames {
		buttons := make([]any, len(fd.Buttons))
		for j, b := range fd.Buttons {
			buttons[j] = b
		}
		frames[i] = map[string]any{
			"frame":           fd.Frame,
			"buttons":         buttons,
			"duration_frames": fd.Duration(),
		}
	}
	return marshalCanonical(map[string]any{
		"name":         doc.Name,
		"description":  doc.Description,
		"total_frames": doc.TotalFrames,
		"frames":       frames,
	})
}

// Fingerprint returns a stable content hash of seq.
// Format: hex(SHA256(domain + 0x00 + canonical JSON)).
func Fingerprint(seq sequence.Sequence) (string, error) {
	canonical, err := MarshalCanonical(Encode(seq))
	if err != nil {
		return "", fmt.Errorf("fingerprint %q: %w", seq.Name(), err)
	}
	h := sha256.New()
	h.Write([]byte(DomainSequence))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("value for key %q: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
