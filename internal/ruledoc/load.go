package ruledoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported document extension %q (expected .json, .yaml or .yml)", filepath.Ext(path))
}

// LoadFile reads a rule document from a JSON or YAML file.
func LoadFile(path string) (*Document, error) {
	var doc Document
	if err := readFile(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Parse decodes a rule document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	if err := decode(data, format, &doc); err != nil {
		return nil, fmt.Errorf("parsing rule document: %w", err)
	}
	return &doc, nil
}

// Marshal encodes a rule document.
func Marshal(doc *Document, format Format) ([]byte, error) {
	return encode(doc, format)
}

// readFile decodes path into out. Plain YAML scalars under textKeys keep their
// leading zeros.
func readFile(path string, out any, textKeys ...string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := decode(data, format, out, textKeys...); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// decode reads JSON, or YAML normalized through JSON so that both formats share
// the json struct tags. Numbers are kept as written.
func decode(data []byte, format Format, out any, textKeys ...string) error {
	switch format {
	case FormatJSON:
		return unmarshalJSON(data, out)
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return err
		}
		keepLeadingZeros(&node, textKeys)
		raw, err := yamlValue(&node)
		if err != nil {
			return err
		}
		normalized, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		return unmarshalJSON(normalized, out)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// UnmarshalRule decodes a single rule stored as JSON.
func UnmarshalRule(data []byte) (RuleDoc, error) {
	var doc RuleDoc
	err := unmarshalJSON(data, &doc)
	return doc, err
}

func unmarshalJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

// keepLeadingZeros retags plain scalars such as 01 as strings when they are
// the value of one of keys. YAML would otherwise read them as numbers and drop
// the zero of a department code.
func keepLeadingZeros(n *yaml.Node, keys []string) {
	if len(keys) == 0 {
		return
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind == yaml.ScalarNode && v.Style == 0 && slices.Contains(keys, k.Value) && hasLeadingZero(v.Value) {
				if tag := v.ShortTag(); tag == "!!int" || tag == "!!float" {
					v.Tag = "!!str"
				}
			}
		}
	}
	for _, c := range n.Content {
		keepLeadingZeros(c, keys)
	}
}

func hasLeadingZero(v string) bool {
	return len(v) > 1 && v[0] == '0' && v[1] >= '0' && v[1] <= '9'
}

func encode(v any, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return append(data, '\n'), nil
	case FormatYAML:
		var raw any
		if err := unmarshalJSON(data, &raw); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(yamlNumbers(raw)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}
