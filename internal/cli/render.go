package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		labels     bool
		detailed   bool
		padding    float64
		flags      flowFlags
	)

	cmd := &cobra.Command{
		Use:   "render [flow]",
		Short: "Render a flow to SVG, render-tree JSON or node-link diagrams",
		Long: `Render a flow document.

Formats:
  svg       SVG preview of the laid out flow (default)
  json      render tree with the layout it was built from
  layout    layout maps only
  dot       Graphviz DOT source of the flow graph
  nodelink  Graphviz node-link diagram as SVG

With one format and --output the artifact is written to that file.
Otherwise each artifact is written next to the base path with a
format-specific suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.Formats = formats
			opts.Labels = labels
			opts.Detailed = detailed
			opts.Padding = padding
			return c.runRender(cmd.Context(), args[0], output, &flags, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, layout, dot, nodelink (comma-separated)")
	cmd.Flags().BoolVar(&labels, "labels", false, "draw element and branch labels")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show element types and IDs (dot, nodelink)")
	cmd.Flags().Float64Var(&padding, "padding", pipeline.DefaultPadding, "margin around the SVG preview")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, flags *flowFlags, opts pipeline.Options) error {
	_, result, err := c.execute(ctx, input, flags, opts)
	if err != nil {
		return err
	}

	base := basePath(output, input)
	printSuccess("Render complete")
	for _, format := range opts.Formats {
		path := artifactPath(base, format)
		if output != "" && len(opts.Formats) == 1 {
			path = output
		}
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		c.Logger.Debug("wrote artifact", "format", format, "path", path, "bytes", len(result.Artifacts[format]))
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.Actions, result.CacheInfo.RenderHit)

	return nil
}
