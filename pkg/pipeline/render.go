package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/render"
	"github.com/matzehuels/flowlayout/pkg/render/nodelink"
	"github.com/matzehuels/flowlayout/pkg/render/sink"
)

// Render encodes g in every format of opts. Formats that need the render
// tree build it once from m. opts must have been validated.
func Render(ctx context.Context, g *flow.Graph, m *layout.Maps, opts Options) (map[string][]byte, error) {
	var tree *render.FlowRenderInfo
	needTree := func() (*render.FlowRenderInfo, error) {
		if tree != nil {
			return tree, nil
		}
		var err error
		tree, err = render.Build(opts.renderContext(g), m)
		return tree, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			var t *render.FlowRenderInfo
			if t, err = needTree(); err == nil {
				data = sink.RenderSVG(t, buildSVGOptions(opts)...)
			}
		case FormatJSON:
			var t *render.FlowRenderInfo
			if t, err = needTree(); err == nil {
				data, err = sink.RenderJSON(t, sink.WithJSONLayout(m), sink.WithJSONProgress(opts.Progress))
			}
		case FormatLayout:
			data, err = json.MarshalIndent(m, "", "  ")
		case FormatDOT:
			data = []byte(nodelink.ToDOT(g, nodelinkOptions(opts)))
		case FormatNodelink:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelinkOptions(opts)))
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithPadding(opts.Padding)}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	return svgOpts
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Merges: true}
}
