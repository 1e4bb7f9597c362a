package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// dotCommand creates the dot command. Unlike render it writes to stdout
// unless --output is given, so that the result can be piped into Graphviz.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output   string
		svg      bool
		detailed bool
		flags    flowFlags
	)

	cmd := &cobra.Command{
		Use:   "dot [flow]",
		Short: "Export a flow as a Graphviz node-link diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			format := pipeline.FormatDOT
			if svg {
				format = pipeline.FormatNodelink
			}
			opts.Formats = []string{format}
			opts.Detailed = detailed

			_, result, err := c.execute(cmd.Context(), args[0], &flags, opts)
			if err != nil {
				return err
			}
			return writeDOT(cmd.Context(), output, result.Artifacts[format])
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render the diagram to SVG with Graphviz")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show element types and IDs")
	flags.register(cmd)

	return cmd
}

func writeDOT(ctx context.Context, output string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if output == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if err := writeFile(output, data); err != nil {
		return err
	}
	printSuccess("Diagram written")
	printFile(output)
	return nil
}
