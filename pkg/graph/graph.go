package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conceptmap/conceptmerge/pkg/errors"
)

// =============================================================================
// Combined Graph Serialization API
// =============================================================================

// Marshal encodes g as indented JSON with a trailing newline.
func Marshal(g *Combined) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes g as indented JSON with a trailing newline to w.
func Write(g *Combined, w io.Writer) error {
	out := *g
	if out.Nodes == nil {
		out.Nodes = []*Node{}
	}
	if out.Links == nil {
		out.Links = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes g to path. The file is written to a temporary sibling
// and renamed into place, so a failed write never leaves a partial artifact.
func WriteFile(g *Combined, path string) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a combined graph written by [WriteFile].
func ReadFile(path string) (*Combined, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a combined graph and checks its link endpoints.
func Read(r io.Reader) (*Combined, error) {
	var g Combined
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// DecodeRaw decodes a single course graph and checks required node fields.
func DecodeRaw(data []byte) (RawGraph, error) {
	var g RawGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return RawGraph{}, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode graph")
	}
	if err := g.Validate(); err != nil {
		return RawGraph{}, err
	}
	return g, nil
}
