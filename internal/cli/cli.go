// Package cli implements the conceptmerge command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/conceptmap/conceptmerge/pkg/buildinfo"
	"github.com/conceptmap/conceptmerge/pkg/config"
	"github.com/conceptmap/conceptmerge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "conceptmerge"

	// defaultAddr is the listen address of the serve command.
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Conceptmerge combines course concept maps into one graph",
		Long:         `Conceptmerge merges the 6A and 6C concept maps into a single graph, adds cross-course links from the connection sheets and lays the result out as rows and rings.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Source Options
// =============================================================================

// sourceOpts holds the flags shared by commands that run the pipeline.
type sourceOpts struct {
	configPath  string // TOML or HCL config file
	sourceA     string // first course source document
	sourceC     string // second course source document
	crossRefDir string // directory of connection sheets
	offset      int    // module offset of the second course
	output      string // combined graph artifact
}

func (o *sourceOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "config file (.toml or .hcl)")
	cmd.Flags().StringVar(&o.sourceA, "source-a", "", "6A source document (default map_6A.html)")
	cmd.Flags().StringVar(&o.sourceC, "source-c", "", "6C source document (default map_6C.html)")
	cmd.Flags().StringVar(&o.crossRefDir, "crossref-dir", "", "connection sheet directory (default \""+pipeline.DefaultCrossRefDir+"\")")
	cmd.Flags().IntVar(&o.offset, "offset", pipeline.DefaultSecondOffset, "module offset applied to the 6C course")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default "+pipeline.DefaultOutput+")")
}

// resolve merges the config file and explicit flags into pipeline options
// and the output path. Flags win over the config file.
func (o *sourceOpts) resolve(cmd *cobra.Command) (pipeline.Options, string, error) {
	var cfg *config.Config
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return pipeline.Options{}, "", err
		}
	}

	opts := cfg.Options()
	output := cfg.OutputPath()

	opts.SetDefaults()
	for i := range opts.Courses {
		course := &opts.Courses[i]
		switch course.Tag {
		case opts.Link.SourceCourse:
			if o.sourceA != "" {
				course.Path = o.sourceA
			}
		case opts.Link.TargetCourse:
			if o.sourceC != "" {
				course.Path = o.sourceC
			}
			if cmd.Flags().Changed("offset") {
				course.ModuleOffset = o.offset
			}
		}
	}
	if o.crossRefDir != "" {
		opts.CrossRefDir = o.crossRefDir
	}
	if o.output != "" {
		output = o.output
	}
	return opts, output, nil
}
