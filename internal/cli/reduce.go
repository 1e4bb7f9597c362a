package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	flowio "github.com/matzehuels/flowlayout/pkg/io"
)

// reduceCommand creates the reduce command, which applies an action script
// to a flow and writes the resulting flow document.
func (c *CLI) reduceCommand() *cobra.Command {
	var (
		output  string
		actions string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "reduce [flow]",
		Short: "Apply editing actions to a flow",
		Long: `Apply an action script to a flow document.

Actions are applied in order. The first rejected action aborts the run and
nothing is written. The output format follows the output file extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReduce(cmd.Context(), args[0], output, actions, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.reduced.<ext>)")
	cmd.Flags().StringVarP(&actions, "actions", "a", "", "action script (JSON or YAML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	_ = cmd.MarkFlagRequired("actions")

	return cmd
}

func (c *CLI) runReduce(ctx context.Context, input, output, actionsPath string, noCache, refresh bool) error {
	g, err := flowio.ReadFlowFile(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}
	actions, err := flowio.ReadActionsFile(actionsPath)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	reduced, hit, err := runner.ReduceWithCacheInfo(ctx, g, actions, refresh)
	if err != nil {
		return err
	}
	prog.done("Reduced flow", "actions", len(actions), "elements", reduced.Len())

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".reduced" + filepath.Ext(input)
	}
	if err := flowio.WriteFlowFile(reduced, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Reduce complete")
	printFile(outputPath)
	printStats(reduced.Len(), len(actions), hit)
	printNewline()
	printNextStep("Render", "flowlayout render "+outputPath)

	return nil
}
