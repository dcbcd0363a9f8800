package motion

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"gopkg.in/yaml.v3"
)

// Value is a sealed interface representing the value kinds an animated
// property can carry. Only Number, Color, Text, and Bool implement it.
type Value interface {
	Kind() Kind
	motionValue() // Sealed - only these types implement it
}

// Kind identifies the concrete type behind a Value.
type Kind int

const (
	// KindNumber is a float64-backed numeric value.
	KindNumber Kind = iota + 1
	// KindColor is a color string in a recognized form (#rgb, #rrggbb,
	// rgb()/rgba(), or a CSS color name).
	KindColor
	// KindText is any other string value.
	KindText
	// KindBool is a boolean value.
	KindBool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindColor:
		return "color"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Number is a numeric property value.
type Number float64

func (Number) motionValue() {}

// Kind returns KindNumber.
func (Number) Kind() Kind { return KindNumber }

// Color is a color-typed property value. The string is kept in its source
// form; parsing happens at blend time.
type Color string

func (Color) motionValue() {}

// Kind returns KindColor.
func (Color) Kind() Kind { return KindColor }

// Text is a non-color string property value.
type Text string

func (Text) motionValue() {}

// Kind returns KindText.
func (Text) Kind() Kind { return KindText }

// Bool is a boolean property value.
type Bool bool

func (Bool) motionValue() {}

// Kind returns KindBool.
func (Bool) Kind() Kind { return KindBool }

// DetectString classifies a string as Color when it parses as a recognized
// color form, Text otherwise. Decoders use this so that tagged values
// round-trip from the plain scalars in serialized documents.
func DetectString(s string) Value {
	if IsColor(s) {
		return Color(s)
	}
	return Text(s)
}

// Scalar returns the plain Go scalar behind a Value, suitable for handing
// to generic encoders.
func Scalar(v Value) any {
	switch val := v.(type) {
	case Number:
		return float64(val)
	case Color:
		return string(val)
	case Text:
		return string(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Properties is a string-keyed map of property values with deterministic
// key ordering. It is the snapshot unit keyframes store and interpolation
// produces.
type Properties map[string]Value

// SortedKeys returns keys ordered by UTF-16 code units, the ordering the
// canonical encoder uses. For ASCII keys this matches lexicographic order.
func (p Properties) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// Clone returns an independent copy of the map. Values are immutable, so a
// shallow copy of the entries is a full snapshot.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with every entry of overrides laid over it.
// Neither input is modified. A nil overrides map returns a plain clone.
func (p Properties) Merge(overrides Properties) Properties {
	out := make(Properties, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// compareKeysUTF16 compares strings by UTF-16 code units. Go's native
// string ordering compares UTF-8 bytes, which disagrees with the canonical
// JSON key order for characters outside the BMP.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes the map with sorted keys and plain scalar values.
func (p Properties) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(p)
}

// UnmarshalJSON decodes plain JSON scalars into tagged values: numbers
// become Number, booleans Bool, and strings Color or Text depending on
// whether they parse as a color. Null, arrays, and objects are rejected.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = make(Properties, len(raw))
	for k, v := range raw {
		val, err := unmarshalValue(v)
		if err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
		(*p)[k] = val
	}
	return nil
}

// unmarshalValue decodes a single JSON scalar into the matching Value.
func unmarshalValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return DetectString(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return nil, fmt.Errorf("null property values are not allowed")

	case '[', '{':
		return nil, fmt.Errorf("property values must be scalars")

	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}

// MarshalYAML renders the map as plain scalars so documents stay editable
// by hand.
func (p Properties) MarshalYAML() (any, error) {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = Scalar(v)
	}
	return out, nil
}

// UnmarshalYAML decodes a YAML mapping of scalars using the same tagging
// rules as UnmarshalJSON.
func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("properties must be a mapping, got %s", yamlKindName(node.Kind))
	}

	out := make(Properties, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		val, err := yamlScalarValue(valNode)
		if err != nil {
			return fmt.Errorf("property %q: %w", keyNode.Value, err)
		}
		out[keyNode.Value] = val
	}
	*p = out
	return nil
}

// yamlScalarValue converts a scalar YAML node into a tagged Value.
func yamlScalarValue(node *yaml.Node) (Value, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("property values must be scalars, got %s", yamlKindName(node.Kind))
	}

	switch node.Tag {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", node.Value)
		}
		return Number(f), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", node.Value)
		}
		return Bool(b), nil
	case "!!str":
		return DetectString(node.Value), nil
	case "!!null":
		return nil, fmt.Errorf("null property values are not allowed")
	default:
		return nil, fmt.Errorf("unsupported value tag %s", node.Tag)
	}
}

// yamlKindName names a yaml.Kind for error messages.
func yamlKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
