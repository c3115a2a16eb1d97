// Package edges accumulates undirected, tagged edges from several sources
// into one deduplicated edge list.
//
// Every edge of the combined graph enters through [Set.Add]: links of each
// course graph and the cross-course links derived from spreadsheets alike.
// Two assertions of the same unordered pair collapse into one edge whose tags
// are the union of both, regardless of direction or insertion order.
//
//	s := edges.New(nil)
//	s.Add("6C:3A", "6A:1B", "prereq")
//	s.Add("6A:1B", "6C:3A", "cross-course")
//	s.Edges() // [{6A:1B 6C:3A [cross-course prereq]}]
//
// A Set is not safe for concurrent use.
package edges

import (
	"slices"
	"strings"

	"github.com/conceptmap/conceptmerge/pkg/graph"
)

// Pair is an unordered endpoint pair in canonical order.
type Pair struct {
	Source, Target string
}

// entry is the mutable accumulator for one canonical pair.
type entry struct {
	pair Pair
	tags map[string]struct{}
}

// Set deduplicates edges by unordered endpoint pair.
type Set struct {
	known   func(id string) bool
	entries map[Pair]*entry
	order   []Pair // first-insertion order
}

// New creates an empty Set. If known is non-nil, Add ignores any edge with
// an endpoint for which known returns false.
func New(known func(id string) bool) *Set {
	return &Set{
		known:   known,
		entries: make(map[Pair]*entry),
	}
}

// Canonical orders a and b so the smaller ID (byte-wise) comes first.
func Canonical(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Key returns the canonical pair of {a, b}.
func Key(a, b string) Pair {
	s, t := Canonical(a, b)
	return Pair{Source: s, Target: t}
}

// Add records the undirected edge {a, b} and unions tags into it.
// Tags are trimmed and empty tags are dropped.
//
// Add is a no-op when either endpoint is empty, when a == b, or when an
// endpoint is rejected by the Set's known function. It reports whether the
// edge was accepted.
func (s *Set) Add(a, b string, tags ...string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	if s.known != nil && (!s.known(a) || !s.known(b)) {
		return false
	}

	key := Key(a, b)
	e, ok := s.entries[key]
	if !ok {
		e = &entry{pair: key, tags: make(map[string]struct{})}
		s.entries[key] = e
		s.order = append(s.order, key)
	}
	for _, tag := range tags {
		if clean := strings.TrimSpace(tag); clean != "" {
			e.tags[clean] = struct{}{}
		}
	}
	return true
}

// AddAll adds every edge of links with its own tags.
func (s *Set) AddAll(links []graph.Edge) {
	for _, l := range links {
		s.Add(l.Source, l.Target, l.Tags...)
	}
}

// Has reports whether the unordered pair {a, b} has been added.
func (s *Set) Has(a, b string) bool {
	_, ok := s.entries[Key(a, b)]
	return ok
}

// Len returns the number of distinct pairs.
func (s *Set) Len() int { return len(s.order) }

// Edges returns the accumulated edges in first-insertion order. Each edge
// has Source < Target and its tags sorted; Tags is never nil.
func (s *Set) Edges() []graph.Edge {
	out := make([]graph.Edge, 0, len(s.order))
	for _, key := range s.order {
		e := s.entries[key]
		tags := make([]string, 0, len(e.tags))
		for t := range e.tags {
			tags = append(tags, t)
		}
		slices.Sort(tags)
		out = append(out, graph.Edge{Source: e.pair.Source, Target: e.pair.Target, Tags: tags})
	}
	return out
}
