// Package source loads course graphs from the documents they are published
// in.
//
// A course map page carries its graph as JSON inside a script block:
//
//	<script id="graph-data" type="application/json">{"nodes": [...], "links": [...]}</script>
//
// [Extract] pulls that block out of an HTML document. [Load] reads a file
// and dispatches on its extension: ".json" files are taken to hold the graph
// object directly, anything else is treated as a host document.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conceptmap/conceptmerge/pkg/errors"
	"github.com/conceptmap/conceptmerge/pkg/graph"
)

// MarkerID is the id attribute of the script block holding the graph.
const MarkerID = "graph-data"

var markerPattern = regexp.MustCompile(
	`<script id="` + regexp.QuoteMeta(MarkerID) + `" type="application/json">([\s\S]*?)</script>`)

// Extract returns the graph JSON embedded in an HTML document. A document
// without the marker block is an ErrCodeMarkerNotFound error.
func Extract(doc []byte) ([]byte, error) {
	m := markerPattern.FindSubmatch(doc)
	if m == nil {
		return nil, errors.New(errors.ErrCodeMarkerNotFound, "%s script not found", MarkerID)
	}
	return m[1], nil
}

// Parse decodes the course graph embedded in doc.
func Parse(doc []byte) (graph.RawGraph, error) {
	data, err := Extract(doc)
	if err != nil {
		return graph.RawGraph{}, err
	}
	return graph.DecodeRaw(data)
}

// Load reads the course graph stored at path.
func Load(path string) (graph.RawGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return graph.RawGraph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return graph.RawGraph{}, fmt.Errorf("read %s: %w", path, err)
	}

	var g graph.RawGraph
	if strings.EqualFold(filepath.Ext(path), ".json") {
		g, err = graph.DecodeRaw(data)
	} else {
		g, err = Parse(data)
	}
	if err != nil {
		return graph.RawGraph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
