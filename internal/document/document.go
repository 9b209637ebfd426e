// Package document reads and writes IR documents: the serialized raw Types
// handed over by a front-end, in JSON or YAML.
package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"schema-compiler/internal/ir"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the top-level shape of an IR document.
type Document struct {
	Types []*ir.Type `json:"types" yaml:"types"`
}

// FormatOf picks the format from a file extension. Unknown extensions are JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads the document at path. Types without a location get the path.
func Load(path string) ([]*ir.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	defer f.Close()

	types, err := Decode(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", path, err)
	}

	for _, t := range types {
		if t.Location == "" {
			t.Location = path
		}
	}

	return types, nil
}

// Decode reads one document. Identities are not trusted from input: every
// handle and reference binding is cleared so that the core allocates its own.
func Decode(r io.Reader, format Format) ([]*ir.Type, error) {
	var doc Document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)

		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()

		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}

	for i, t := range doc.Types {
		if t == nil {
			return nil, fmt.Errorf("type %d is empty", i)
		}

		if t.QName.Local == "" {
			return nil, fmt.Errorf("type %d has no name", i)
		}

		clearIdentity(t)
	}

	return doc.Types, nil
}

func clearIdentity(t *ir.Type) {
	t.Walk(func(cur *ir.Type) {
		cur.ID = 0
		for _, ft := range cur.FieldTypes() {
			ft.Reference = 0
		}

		for _, f := range cur.Fields {
			clearDefaultEnum(f)
		}
	})
}

func clearDefaultEnum(f *ir.Field) {
	if f.DefaultEnum != nil {
		f.DefaultEnum.Ref = 0
	}

	for _, choice := range f.Choices {
		clearDefaultEnum(choice)
	}
}

// Encode writes types as one document.
func Encode(w io.Writer, types []*ir.Type, format Format) error {
	doc := Document{Types: types}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	case FormatJSON:
		var buf bytes.Buffer

		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		_, err := w.Write(buf.Bytes())

		return err
	default:
		return fmt.Errorf("unknown document format %q", format)
	}
}
