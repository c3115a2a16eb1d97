package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/pipeline"
)

// buildCommand creates the build command: the full merge run.
func (c *CLI) buildCommand() *cobra.Command {
	var opts sourceOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge the course graphs and write the combined graph",
		Long: `Merge the course concept maps into one combined graph.

Each course graph is read from the JSON embedded in its HTML page, node IDs
are namespaced by course, links are deduplicated, cross-course links are
added from the connection sheets and both layouts are computed.

Examples:
  conceptmerge build
  conceptmerge build --config conceptmerge.toml
  conceptmerge build --source-a 6A.html --source-c 6C.html -o out.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, output, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return runBuild(ctx, popts, output)
		},
	}

	opts.register(cmd)
	return cmd
}

// runBuild runs the pipeline and writes the artifact.
// Nothing is written unless the whole run succeeds.
func runBuild(ctx context.Context, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, "Merging course graphs...")
	spinner.Start()
	res, err := pipeline.NewRunner(logger).Build(ctx, opts)
	cancelled := spinner.Cancelled()
	spinner.Stop()
	if err != nil {
		if cancelled {
			return ctx.Err()
		}
		return err
	}

	if err := graph.WriteFile(res.Graph, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Merged %d concepts", res.Stats.Nodes))

	printSuccess("%s", res.Summary(output))
	printFile(output)
	printStats(res.Stats.Nodes, res.Stats.Links, res.Stats.CrossCourse)
	printNextStep("Render it", appName+" render "+output)
	return nil
}
