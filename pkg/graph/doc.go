// Package graph defines the concept graph types shared by every stage of
// the merge: the raw course graphs embedded in source documents, the
// namespaced nodes of the combined graph, undirected tagged edges and the
// combined artifact itself.
//
// # Namespacing
//
// Two courses may reuse the same concept IDs ("3A" exists in both). Before any
// cross-course work each course is passed through [Namespace], which prefixes
// IDs with the course tag and shifts module numbers by a per-course offset:
//
//	nodes, links := graph.Namespace(raw, "6C", 10)
//	// "3A" in module 3 becomes "6C:3A" in combined module 13
//
// # Serialization
//
// The combined graph is written as
//
//	{
//	  "nodes": [{"id": "6A:1A", "base_id": "1A", ...}],
//	  "links": [{"source": "6A:1A", "target": "6C:3B", "tags": ["6A-6C", "cross-course"]}]
//	}
//
// Fields of the source nodes that this package does not interpret are kept
// in [Node.Extra] and written back unchanged.
package graph
