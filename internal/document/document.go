package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/keyline/keyline/internal/timeline"
)

// Format identifies a timeline document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat maps a file extension to its document format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}
}

// Load reads a timeline document, validates it against the embedded CUE
// schema, and decodes it into a fresh model. Schema violations and
// invariant failures both surface as MALFORMED_STATE errors; a file
// that fails either leaves no model behind.
func Load(path string, opts ...timeline.Option) (*timeline.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timeline document: %w", err)
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := validateDocument(filepath.Base(path), data, format)
	if err != nil {
		return nil, err
	}

	m := timeline.New(opts...)
	if err := m.FromJSON(jsonBytes); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks a document file without building a model, so callers
// get schema diagnostics plus the model's invariant re-validation.
func Validate(path string) error {
	_, err := Load(path)
	return err
}

// Save writes the model's state to path, JSON or YAML by extension.
// JSON output is the canonical encoding, indented for editability; the
// YAML form carries the same document.
func Save(path string, m *timeline.Model) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	canonical, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing timeline: %w", err)
	}

	var out []byte
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, canonical, "", "  "); err != nil {
			return fmt.Errorf("indenting timeline document: %w", err)
		}
		buf.WriteByte('\n')
		out = buf.Bytes()
	case FormatYAML:
		var doc any
		if err := json.Unmarshal(canonical, &doc); err != nil {
			return fmt.Errorf("decoding canonical form: %w", err)
		}
		out, err = yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding YAML document: %w", err)
		}
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing timeline document: %w", err)
	}
	return nil
}
