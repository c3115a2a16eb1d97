// Package config loads pipeline settings from a TOML or HCL file.
//
// The format is chosen by extension. A TOML file:
//
//	output       = "graph_6AC.json"
//	crossref_dir = "6A-6C connections"
//
//	[[course]]
//	tag  = "6A"
//	path = "map_6A.html"
//
//	[[course]]
//	tag           = "6C"
//	path          = "map_6C.html"
//	module_offset = 10
//
//	[link]
//	tags = ["cross-course", "6A-6C"]
//
// The same settings in HCL:
//
//	output       = "graph_6AC.json"
//	crossref_dir = "6A-6C connections"
//
//	course "6A" {
//	  path = "map_6A.html"
//	}
//
//	course "6C" {
//	  path          = "map_6C.html"
//	  module_offset = 10
//	}
//
// Relative paths are resolved against the directory holding the config file.
// Unset fields keep the built-in defaults; this includes individual [canvas]
// fields, so a zero margin cannot be configured.
package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/conceptmap/conceptmerge/pkg/errors"
	"github.com/conceptmap/conceptmerge/pkg/layout"
	"github.com/conceptmap/conceptmerge/pkg/pipeline"
)

// Config is the on-disk configuration.
type Config struct {
	Output      string         `toml:"output" hcl:"output,optional"`
	CrossRefDir string         `toml:"crossref_dir" hcl:"crossref_dir,optional"`
	Courses     []Course       `toml:"course" hcl:"course,block"`
	Link        *Link          `toml:"link" hcl:"link,block"`
	Canvas      *layout.Canvas `toml:"canvas" hcl:"canvas,block"`
}

// Course is one course source.
type Course struct {
	Tag          string `toml:"tag" hcl:"tag,label"`
	Path         string `toml:"path" hcl:"path"`
	ModuleOffset int    `toml:"module_offset" hcl:"module_offset,optional"`
}

// Link configures cross-reference linking.
type Link struct {
	SourceCourse      string   `toml:"source_course" hcl:"source_course,optional"`
	TargetCourse      string   `toml:"target_course" hcl:"target_course,optional"`
	LabelColumn       string   `toml:"label_column" hcl:"label_column,optional"`
	ConnectionsColumn string   `toml:"connections_column" hcl:"connections_column,optional"`
	Tags              []string `toml:"tags" hcl:"tags,optional"`
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".hcl":
		if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml or .hcl)", filepath.Ext(path))
	}
	cfg.resolve(filepath.Dir(path))
	return &cfg, nil
}

// resolve makes relative paths relative to base.
func (c *Config) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Output = abs(c.Output)
	c.CrossRefDir = abs(c.CrossRefDir)
	for i := range c.Courses {
		c.Courses[i].Path = abs(c.Courses[i].Path)
	}
}

// OutputPath returns the configured output path or the default.
func (c *Config) OutputPath() string {
	if c == nil || c.Output == "" {
		return pipeline.DefaultOutput
	}
	return c.Output
}

// Options converts the config into pipeline options, starting from
// pipeline.DefaultOptions for anything left unset.
func (c *Config) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	if c == nil {
		return opts
	}
	if c.CrossRefDir != "" {
		opts.CrossRefDir = c.CrossRefDir
	}
	if len(c.Courses) > 0 {
		opts.Courses = make([]pipeline.Course, len(c.Courses))
		for i, cc := range c.Courses {
			opts.Courses[i] = pipeline.Course{Tag: cc.Tag, Path: cc.Path, ModuleOffset: cc.ModuleOffset}
		}
	}
	if c.Canvas != nil {
		opts.Canvas = c.Canvas.WithDefaults()
	}
	if l := c.Link; l != nil {
		if l.SourceCourse != "" {
			opts.Link.SourceCourse = l.SourceCourse
		}
		if l.TargetCourse != "" {
			opts.Link.TargetCourse = l.TargetCourse
		}
		if l.LabelColumn != "" {
			opts.Link.LabelColumn = l.LabelColumn
		}
		if l.ConnectionsColumn != "" {
			opts.Link.ConnectionsColumn = l.ConnectionsColumn
		}
		if len(l.Tags) > 0 {
			opts.Link.Tags = slices.Clone(l.Tags)
		}
	}
	return opts
}
