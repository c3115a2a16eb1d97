// Package pipeline merges course graphs into one combined, laid-out graph.
//
// The pipeline is a strict sequential pass:
//
//  1. Load: read each course graph from its source document
//  2. Namespace: rewrite IDs and module numbers into the combined space
//  3. Dedup: feed every course link into one edge set
//  4. Link: derive cross-course edges from spreadsheet exports (same set)
//  5. Layout: assign row and ring coordinates
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.DefaultOptions()
//	result, err := runner.Build(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	graph.WriteFile(result.Graph, "graph_6AC.json")
//	fmt.Println(result.Summary("graph_6AC.json"))
//
// Callers that already hold decoded graphs use [Runner.Merge] instead.
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/conceptmap/conceptmerge/pkg/crossref"
	"github.com/conceptmap/conceptmerge/pkg/errors"
	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultOutput is the combined graph artifact path.
	DefaultOutput = "graph_6AC.json"

	// DefaultCrossRefDir holds the 6A-6C connection sheets.
	DefaultCrossRefDir = "6A-6C connections"

	// DefaultSecondOffset shifts the second course's module numbers so they
	// never collide with the first course's.
	DefaultSecondOffset = 10
)

// DefaultCourses returns the two course sources merged by default.
func DefaultCourses() []Course {
	return []Course{
		{Tag: crossref.DefaultSourceCourse, Path: "map_6A.html", ModuleOffset: 0},
		{Tag: crossref.DefaultTargetCourse, Path: "map_6C.html", ModuleOffset: DefaultSecondOffset},
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Course names one course graph and where it sits in the combined graph.
type Course struct {
	Tag          string `json:"tag"`
	Path         string `json:"path"`
	ModuleOffset int    `json:"module_offset"`
}

// Options configures a pipeline run.
type Options struct {
	Courses     []Course      `json:"courses"`
	CrossRefDir string        `json:"crossref_dir,omitempty"` // empty disables cross-reference linking
	Canvas      layout.Canvas `json:"canvas"`

	// Link configures cross-reference linking. Its Logger is replaced by the
	// runner's logger.
	Link crossref.Linker `json:"link"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the options reproducing the 6A/6C merge.
func DefaultOptions() Options {
	return Options{
		Courses:     DefaultCourses(),
		CrossRefDir: DefaultCrossRefDir,
		Canvas:      layout.DefaultCanvas(),
		Link:        *crossref.Default(),
	}
}

// SetDefaults fills zero-valued fields from [DefaultOptions].
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if len(o.Courses) == 0 {
		o.Courses = d.Courses
	}
	o.Canvas = o.Canvas.WithDefaults()
	if o.Link.SourceCourse == "" {
		o.Link.SourceCourse = d.Link.SourceCourse
	}
	if o.Link.TargetCourse == "" {
		o.Link.TargetCourse = d.Link.TargetCourse
	}
	if o.Link.LabelColumn == "" {
		o.Link.LabelColumn = d.Link.LabelColumn
	}
	if o.Link.ConnectionsColumn == "" {
		o.Link.ConnectionsColumn = d.Link.ConnectionsColumn
	}
	if len(o.Link.Tags) == 0 {
		o.Link.Tags = slices.Clone(d.Link.Tags)
	}
}

// Validate checks course tags and canvas dimensions.
func (o *Options) Validate() error {
	if len(o.Courses) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one course is required")
	}
	tags := make([]string, len(o.Courses))
	for i, c := range o.Courses {
		if c.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "course %q: path is required", c.Tag)
		}
		if c.ModuleOffset < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "course %q: module offset must not be negative", c.Tag)
		}
		tags[i] = c.Tag
	}
	if err := errors.ValidateDistinctTags(tags); err != nil {
		return err
	}
	if o.CrossRefDir != "" {
		for _, t := range []string{o.Link.SourceCourse, o.Link.TargetCourse} {
			if !slices.Contains(tags, t) {
				return errors.New(errors.ErrCodeInvalidConfig, "link course %q is not one of the merged courses", t)
			}
		}
	}
	c := o.Canvas
	if c.UsableWidth() <= 0 || c.UsableHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas %gx%g leaves no room inside its margins", c.Width, c.Height)
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Graph is the combined, laid-out graph.
	Graph *graph.Combined

	// Stats contains counts and timings.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes       int
	Links       int
	CrossCourse int
	CrossRef    crossref.Stats

	LoadTime   time.Duration
	MergeTime  time.Duration
	LayoutTime time.Duration
}

// Summary returns the one-line report for an artifact written to output.
func (r *Result) Summary(output string) string {
	return fmt.Sprintf("Wrote %s with %d nodes, %d links (%d cross-course).",
		output, r.Stats.Nodes, r.Stats.Links, r.Stats.CrossCourse)
}
