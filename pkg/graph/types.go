package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/conceptmap/conceptmerge/pkg/errors"
)

// IDSeparator joins a course tag and a base concept ID.
const IDSeparator = ":"

// Keys of source node fields interpreted by this package.
const (
	keyID          = "id"
	keyModuleNum   = "module_num"
	keyModuleTitle = "module_title"
)

// =============================================================================
// RawGraph - Source Course Graph
// =============================================================================

// RawGraph is a single course graph as embedded in its host document.
type RawGraph struct {
	Nodes []RawNode `json:"nodes"`
	Links []RawLink `json:"links"`
}

// RawNode is a source concept node. Only id, module_num and module_title are
// interpreted; all other fields are carried in Fields.
type RawNode struct {
	ID          string
	ModuleNum   int
	ModuleTitle string
	Fields      map[string]json.RawMessage

	hasID     bool
	hasModule bool
}

// UnmarshalJSON decodes a node object, keeping unknown fields verbatim.
func (n *RawNode) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*n = RawNode{Fields: make(map[string]json.RawMessage, len(fields))}
	for k, v := range fields {
		switch k {
		case keyID:
			id, ok := scalarString(v)
			if !ok {
				return fmt.Errorf("node id must be a string or number, got %s", v)
			}
			n.ID, n.hasID = id, id != ""
		case keyModuleNum:
			num, err := integer(v)
			if err != nil {
				return fmt.Errorf("module_num: %w", err)
			}
			n.ModuleNum, n.hasModule = num, true
		case keyModuleTitle:
			n.ModuleTitle, _ = scalarString(v)
		default:
			n.Fields[k] = v
		}
	}
	return nil
}

// Validate checks that every node has an id and a module_num.
func (g *RawGraph) Validate() error {
	for i, n := range g.Nodes {
		if !n.hasID {
			return errors.New(errors.ErrCodeInvalidGraph, "node %d: missing %q", i, keyID)
		}
		if !n.hasModule {
			return errors.New(errors.ErrCodeInvalidGraph, "node %s: missing %q", n.ID, keyModuleNum)
		}
	}
	return nil
}

// RawLink is a source link between two base IDs of the same course.
type RawLink struct {
	Source string
	Target string
	Tags   []string
}

// UnmarshalJSON decodes a link. Tags that are absent or not an array are
// treated as empty; number and boolean entries are kept as their literal
// text, other non-string entries are dropped.
func (l *RawLink) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source json.RawMessage `json:"source"`
		Target json.RawMessage `json:"target"`
		Tags   json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = RawLink{}
	l.Source, _ = scalarString(raw.Source)
	l.Target, _ = scalarString(raw.Target)

	var items []json.RawMessage
	if json.Unmarshal(raw.Tags, &items) != nil {
		return nil
	}
	for _, it := range items {
		if s, ok := tagString(it); ok {
			l.Tags = append(l.Tags, s)
		}
	}
	return nil
}

// tagString converts a tag entry to text: strings as-is, numbers and
// booleans by their literal. Null, arrays and objects are rejected.
func tagString(v json.RawMessage) (string, bool) {
	if string(bytes.TrimSpace(v)) == "null" {
		return "", false
	}
	if s, ok := scalarString(v); ok {
		return s, true
	}
	var b bool
	if json.Unmarshal(v, &b) == nil {
		return strconv.FormatBool(b), true
	}
	return "", false
}

// scalarString returns a JSON string's value, or a JSON number's literal text.
func scalarString(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", false
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s, true
	}
	var num json.Number
	if json.Unmarshal(v, &num) == nil {
		return num.String(), true
	}
	return "", false
}

func integer(v json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		// Some exports quote numbers.
		s, ok := scalarString(v)
		if !ok {
			return 0, fmt.Errorf("not a number: %s", v)
		}
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, fmt.Errorf("not a number: %s", v)
		}
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %s", v)
	}
	return int(f), nil
}

// =============================================================================
// Node - Namespaced Concept
// =============================================================================

// Node is a concept in the combined graph.
//
// SX/SY hold the row layout, X/Y the working copy a renderer may move and
// RX/RY the ring layout.
type Node struct {
	ID              string
	BaseID          string
	Course          string
	ModuleNum       int
	CourseModuleNum int
	ModuleTitle     string

	SX, SY float64
	X, Y   float64
	RX, RY float64

	// Extra holds source fields not listed above.
	Extra map[string]json.RawMessage
}

// nodeFields is the serialized form of the typed Node fields.
type nodeFields struct {
	ID              string  `json:"id"`
	BaseID          string  `json:"base_id"`
	Course          string  `json:"course"`
	ModuleNum       int     `json:"module_num"`
	CourseModuleNum int     `json:"course_module_num"`
	ModuleTitle     string  `json:"module_title"`
	SX              float64 `json:"sx"`
	SY              float64 `json:"sy"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	RX              float64 `json:"rx"`
	RY              float64 `json:"ry"`
}

var nodeKeys = map[string]bool{
	"id": true, "base_id": true, "course": true, "module_num": true,
	"course_module_num": true, "module_title": true,
	"sx": true, "sy": true, "x": true, "y": true, "rx": true, "ry": true,
}

// MarshalJSON writes the typed fields merged with Extra. Keys are sorted so
// output is byte-for-byte reproducible.
func (n *Node) MarshalJSON() ([]byte, error) {
	typed, err := marshalRaw(nodeFields{
		ID: n.ID, BaseID: n.BaseID, Course: n.Course,
		ModuleNum: n.ModuleNum, CourseModuleNum: n.CourseModuleNum, ModuleTitle: n.ModuleTitle,
		SX: n.SX, SY: n.SY, X: n.X, Y: n.Y, RX: n.RX, RY: n.RY,
	})
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(typed, &merged); err != nil {
		return nil, err
	}
	for k, v := range n.Extra {
		if !nodeKeys[k] {
			merged[k] = v
		}
	}
	return marshalRaw(merged)
}

// marshalRaw is json.Marshal without HTML escaping; concept titles routinely
// contain '&' and '<'.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON reads a node written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var typed nodeFields
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	*n = Node{
		ID: typed.ID, BaseID: typed.BaseID, Course: typed.Course,
		ModuleNum: typed.ModuleNum, CourseModuleNum: typed.CourseModuleNum, ModuleTitle: typed.ModuleTitle,
		SX: typed.SX, SY: typed.SY, X: typed.X, Y: typed.Y, RX: typed.RX, RY: typed.RY,
	}
	for k, v := range all {
		if nodeKeys[k] {
			continue
		}
		if n.Extra == nil {
			n.Extra = make(map[string]json.RawMessage)
		}
		n.Extra[k] = v
	}
	return nil
}

// =============================================================================
// Edge - Undirected Tagged Link
// =============================================================================

// Edge is an undirected link. In a combined graph Source < Target and Tags
// is sorted.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Tags   []string `json:"tags"`
}

// HasTag reports whether the edge carries tag.
func (e Edge) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// =============================================================================
// Combined - Merged Artifact
// =============================================================================

// Combined is the merged multi-course graph.
type Combined struct {
	Nodes []*Node `json:"nodes"`
	Links []Edge  `json:"links"`
}

// NodeIDs returns the set of node IDs.
func (g *Combined) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// Node returns the node with the given ID.
func (g *Combined) Node(id string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// CrossCourse returns the number of links whose endpoints belong to
// different courses. It reads node courses, not link tags, so the count does
// not depend on which tags the linker attaches; a same-course link tagged
// "cross-course" is not counted and an untagged link between courses is.
func (g *Combined) CrossCourse() int {
	course := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		course[n.ID] = n.Course
	}
	count := 0
	for _, e := range g.Links {
		if course[e.Source] != course[e.Target] {
			count++
		}
	}
	return count
}

// Validate checks that node IDs are unique and every link endpoint exists.
func (g *Combined) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range g.Links {
		if !ids[e.Source] || !ids[e.Target] {
			return errors.New(errors.ErrCodeInvalidGraph, "link %s-%s references unknown node", e.Source, e.Target)
		}
	}
	return nil
}
