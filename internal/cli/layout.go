package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  flowFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [flow]",
		Short: "Compute the layout of a flow",
		Long: `Compute the layout of a flow document.

The flow is read from a JSON or YAML document. An optional action script is
applied first. The output is a JSON file holding the geometry of every
element and branch, which can be passed back through --previous to animate
between two layouts.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, flags *flowFlags) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}
	opts.Formats = []string{pipeline.FormatLayout}

	_, result, err := c.execute(ctx, input, flags, opts)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = artifactPath(basePath("", input), pipeline.FormatLayout)
	}
	if err := writeFile(outputPath, result.Artifacts[pipeline.FormatLayout]); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.Actions, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", "flowlayout render "+input)

	return nil
}
