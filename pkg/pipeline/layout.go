package pipeline

import (
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/render"
)

// Layout computes the layout of g under opts. opts must have been validated.
func Layout(g *flow.Graph, opts Options) (*layout.Maps, error) {
	return layout.Compute(g, *opts.Config, render.LayoutOptions(opts.renderContext(g), opts.Progress)...)
}
