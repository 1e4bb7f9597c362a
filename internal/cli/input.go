package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/config"
	"github.com/matzehuels/flowlayout/pkg/flow"
	flowio "github.com/matzehuels/flowlayout/pkg/io"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/render"
)

// flowFlags are the inputs shared by the commands that run the pipeline.
type flowFlags struct {
	actions  string
	config   string
	previous string
	progress float64
	animate  bool
	selected []string
	deleting string
	keep     int
	noCache  bool
	refresh  bool
}

func (f *flowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.actions, "actions", "a", "", "action script (JSON or YAML) applied before layout")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "layout config file (TOML)")
	cmd.Flags().StringVar(&f.previous, "previous", "", "layout file to animate from")
	cmd.Flags().Float64Var(&f.progress, "progress", 1, "animation progress in [0, 1]")
	cmd.Flags().BoolVar(&f.animate, "animate", false, "animate from the layout of the input flow")
	cmd.Flags().StringSliceVar(&f.selected, "select", nil, "selected element IDs")
	cmd.Flags().StringVar(&f.deleting, "deleting", "", "element whose deletion is previewed")
	cmd.Flags().IntVar(&f.keep, "keep", -1, "branch index kept by --deleting")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options builds pipeline options from the flags.
func (f *flowFlags) options() (pipeline.Options, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("load config: %w", err)
	}
	opts := pipeline.Options{
		Config:   &cfg,
		Progress: f.progress,
		Animate:  f.animate,
		Refresh:  f.refresh,
	}
	if f.actions != "" {
		if opts.Actions, err = flowio.ReadActionsFile(f.actions); err != nil {
			return pipeline.Options{}, fmt.Errorf("load actions: %w", err)
		}
	}
	if f.previous != "" {
		if opts.Previous, err = readLayoutFile(f.previous); err != nil {
			return pipeline.Options{}, err
		}
	}
	opts.Interaction.Selected = f.selected
	if f.deleting != "" {
		d := &render.Deletion{ElementID: f.deleting}
		if f.keep >= 0 {
			keep := f.keep
			d.ChildIndexToKeep = &keep
		}
		opts.Interaction.Deletion = d
	}
	return opts, nil
}

// readLayoutFile reads layout maps written by the layout command.
func readLayoutFile(path string) (*layout.Maps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	var m layout.Maps
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", path, err)
	}
	return &m, nil
}

// execute loads the flow at input and runs the full pipeline over it.
func (c *CLI) execute(ctx context.Context, input string, f *flowFlags, opts pipeline.Options) (*flow.Graph, *pipeline.Result, error) {
	g, err := flowio.ReadFlowFile(input)
	if err != nil {
		return nil, nil, fmt.Errorf("load flow %s: %w", input, err)
	}
	c.Logger.Debug("loaded flow", "path", input, "elements", g.Len())

	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinnerWithContext(ctx, "Laying out flow...")
	spinner.Start()
	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		return nil, nil, err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	return g, result, nil
}

// writeFile writes data to path, creating it if needed.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
