package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inventory-sync/core/reconcile"

	"gopkg.in/yaml.v3"
)

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions other than .json, .yaml and .yml.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ReadFile reads the records stored in path.
func ReadFile(path string) ([]reconcile.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteFile writes records to path, creating or truncating it.
func WriteFile(path string, records []reconcile.Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Decode reads one record or a list of records, keeping field order.
func Decode(r io.Reader, format Format) ([]reconcile.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Encode writes records as a list.
func Encode(w io.Writer, format Format, records []reconcile.Record) error {
	if records == nil {
		records = []reconcile.Record{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recordsNode(records)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func decodeJSON(data []byte) ([]reconcile.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []reconcile.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var rec reconcile.Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, err
	}
	return []reconcile.Record{rec}, nil
}

func decodeYAML(data []byte) ([]reconcile.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		rec, err := recordFromNode(root)
		if err != nil {
			return nil, err
		}
		return []reconcile.Record{rec}, nil
	case yaml.SequenceNode:
		records := make([]reconcile.Record, 0, len(root.Content))
		for i, item := range root.Content {
			rec, err := recordFromNode(item)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			records = append(records, rec)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list of mappings", root.Line)
	}
}

func recordFromNode(n *yaml.Node) (reconcile.Record, error) {
	var rec reconcile.Record
	if n.Kind != yaml.MappingNode {
		return rec, fmt.Errorf("line %d: record must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, value := n.Content[i], n.Content[i+1]
		cell, err := cellFromNode(value)
		if err != nil {
			return rec, fmt.Errorf("field %s: %w", name.Value, err)
		}
		rec.Set(name.Value, cell)
	}
	return rec, nil
}

func cellFromNode(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("line %d: list items must be scalars", item.Line)
			}
			parts = append(parts, item.Value)
		}
		return strings.Join(parts, reconcile.MultiValueSeparator), nil
	case yaml.AliasNode:
		return cellFromNode(n.Alias)
	default:
		return "", fmt.Errorf("line %d: nested mappings are not supported", n.Line)
	}
}

func recordsNode(records []reconcile.Record) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, rec := range records {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range rec.Fields() {
			value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value}
			if strings.Contains(f.Value, "\n") {
				value.Style = yaml.LiteralStyle
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				value,
			)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}
