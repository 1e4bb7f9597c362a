package sink

import (
	"encoding/json"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/render"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	layout   *layout.Maps
	progress *float64
}

// WithJSONLayout attaches the layout the tree was built from.
func WithJSONLayout(m *layout.Maps) JSONOption { return func(r *jsonRenderer) { r.layout = m } }

// WithJSONProgress records the animation progress the tree was rendered at.
func WithJSONProgress(p float64) JSONOption { return func(r *jsonRenderer) { r.progress = &p } }

type jsonOutput struct {
	Progress *float64              `json:"progress,omitempty"`
	Flow     *render.FlowRenderInfo `json:"flow"`
	Layout   *layout.Maps          `json:"layout,omitempty"`
}

// RenderJSON encodes tree as a pretty-printed JSON document. It returns an
// error only if marshaling fails.
func RenderJSON(tree *render.FlowRenderInfo, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return json.MarshalIndent(jsonOutput{
		Progress: r.progress,
		Flow:     tree,
		Layout:   r.layout,
	}, "", "  ")
}
