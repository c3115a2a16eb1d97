package graph

import (
	"encoding/json"
	"fmt"
)

// NodeID returns the combined-graph ID of a course concept.
func NodeID(course, baseID string) string {
	return course + IDSeparator + baseID
}

// Namespace rewrites one course graph into the combined ID space.
//
// Node IDs become "course:base_id", module numbers are shifted by offset
// (the original is kept in CourseModuleNum) and module titles are prefixed
// with the course and original module number. Link endpoints are prefixed
// the same way; link tags pass through unchanged.
//
// Namespace does not validate raw; call [RawGraph.Validate] first.
func Namespace(raw RawGraph, course string, offset int) ([]*Node, []Edge) {
	nodes := make([]*Node, 0, len(raw.Nodes))
	for _, rn := range raw.Nodes {
		n := &Node{
			ID:              NodeID(course, rn.ID),
			BaseID:          rn.ID,
			Course:          course,
			ModuleNum:       rn.ModuleNum + offset,
			CourseModuleNum: rn.ModuleNum,
			ModuleTitle:     fmt.Sprintf("%s M%d: %s", course, rn.ModuleNum, rn.ModuleTitle),
		}
		if len(rn.Fields) > 0 {
			n.Extra = make(map[string]json.RawMessage, len(rn.Fields))
			for k, v := range rn.Fields {
				n.Extra[k] = v
			}
		}
		nodes = append(nodes, n)
	}

	links := make([]Edge, 0, len(raw.Links))
	for _, rl := range raw.Links {
		tags := rl.Tags
		if tags == nil {
			tags = []string{}
		}
		links = append(links, Edge{
			Source: NodeID(course, rl.Source),
			Target: NodeID(course, rl.Target),
			Tags:   tags,
		})
	}
	return nodes, links
}
