package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
)

// Format selects the encoding of documents and scripts.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath derives the format from path's extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// =============================================================================
// Flow Serialization API
// =============================================================================

// MarshalFlow encodes g as a flow document.
func MarshalFlow(g *flow.Graph, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFlow(g, &buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFlow writes g as a flow document to w.
func WriteFlow(g *flow.Graph, w io.Writer, f Format) error {
	return encode(w, f, FromGraph(g))
}

// WriteFlowFile writes g to path in the format its extension selects.
func WriteFlowFile(g *flow.Graph, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WriteFlow(g, file, FormatFromPath(path))
}

// ReadFlow decodes a flow document from r and returns the validated graph.
// ReadFlow does not close r.
func ReadFlow(r io.Reader, f Format) (*flow.Graph, error) {
	var doc Document
	if err := decode(r, f, &doc); err != nil {
		return nil, err
	}
	return ToGraph(doc)
}

// ReadFlowFile reads the flow document at path.
func ReadFlowFile(path string) (*flow.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadFlow(file, FormatFromPath(path))
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
}

func decode(r io.Reader, f Format, v any) error {
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	return nil
}
