package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/conceptmap/conceptmerge/pkg/edges"
	"github.com/conceptmap/conceptmerge/pkg/errors"
	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/layout"
	"github.com/conceptmap/conceptmerge/pkg/observability"
	"github.com/conceptmap/conceptmerge/pkg/source"
)

// Input is a decoded course graph paired with its course settings.
type Input struct {
	Course Course
	Graph  graph.RawGraph
}

// Runner executes the merge pipeline.
//
// The Runner holds no per-run state; each Build or Merge call allocates its
// own edge set.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Build loads every course source named in opts and merges them.
//
// A source that cannot be read or lacks its embedded graph aborts the run
// before anything is merged.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	hooks := observability.Pipeline()
	start := time.Now()
	inputs := make([]Input, 0, len(opts.Courses))
	for _, c := range opts.Courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hooks.OnLoadStart(ctx, c.Tag, c.Path)
		loadStart := time.Now()
		g, err := source.Load(c.Path)
		hooks.OnLoadComplete(ctx, c.Tag, len(g.Nodes), time.Since(loadStart), err)
		if err != nil {
			return nil, fmt.Errorf("load course %s: %w", c.Tag, err)
		}
		logger.Debug("loaded course", "course", c.Tag, "path", c.Path,
			"nodes", len(g.Nodes), "links", len(g.Links))
		inputs = append(inputs, Input{Course: c, Graph: g})
	}
	loadTime := time.Since(start)

	res, err := r.Merge(ctx, inputs, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = loadTime
	return res, nil
}

// Merge namespaces inputs, deduplicates their links together with the
// cross-reference links and lays out the result.
func (r *Runner) Merge(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	opts.SetDefaults()
	logger := r.logger(opts)

	res := &Result{RunID: uuid.NewString()}
	logger = logger.With("run", res.RunID)

	// Stage 1: namespace every course and collect base links
	start := time.Now()
	var (
		nodes []*graph.Node
		links [][]graph.Edge
	)
	for _, in := range inputs {
		ns, ls := graph.Namespace(in.Graph, in.Course.Tag, in.Course.ModuleOffset)
		nodes = append(nodes, ns...)
		links = append(links, ls)
	}
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if known[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node %s", n.ID)
		}
		known[n.ID] = true
	}

	set := edges.New(func(id string) bool { return known[id] })
	for _, ls := range links {
		set.AddAll(ls)
	}
	logger.Debug("deduplicated course links", "edges", set.Len())

	// Stage 2: cross-reference links share the same edge set
	if opts.CrossRefDir != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		linker := opts.Link
		linker.Logger = logger
		linkStart := time.Now()
		stats, err := linker.LinkDir(opts.CrossRefDir, known, set)
		observability.Pipeline().OnLinkComplete(ctx, stats.Files, stats.Edges, time.Since(linkStart), err)
		if err != nil {
			return nil, fmt.Errorf("link: %w", err)
		}
		res.Stats.CrossRef = stats
		logger.Info("linked cross-references",
			"sheets", stats.Files,
			"skipped_sheets", stats.SkippedFiles,
			"rows", stats.Rows,
			"edges", stats.Edges)
	}
	res.Stats.MergeTime = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: layout
	start = time.Now()
	layout.Apply(nodes, layout.Rows{Canvas: opts.Canvas}, layout.Rings{Canvas: opts.Canvas})
	res.Stats.LayoutTime = time.Since(start)
	observability.Pipeline().OnLayoutComplete(ctx, len(nodes), res.Stats.LayoutTime)

	if nodes == nil {
		nodes = []*graph.Node{}
	}
	res.Graph = &graph.Combined{Nodes: nodes, Links: set.Edges()}
	res.Stats.Nodes = len(res.Graph.Nodes)
	res.Stats.Links = len(res.Graph.Links)
	res.Stats.CrossCourse = res.Graph.CrossCourse()

	logger.Info("merged graph",
		"nodes", res.Stats.Nodes,
		"links", res.Stats.Links,
		"cross_course", res.Stats.CrossCourse,
		"duration", res.Stats.MergeTime+res.Stats.LayoutTime)

	return res, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
