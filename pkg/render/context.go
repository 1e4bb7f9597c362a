package render

import (
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
)

// Context bundles everything one render pass reads.
type Context struct {
	Graph  *flow.Graph
	Config layout.Config
	// PreviousLayout is the layout to animate from. Without it, progress
	// has no effect and pending deletions are flagged but not collapsed.
	PreviousLayout *layout.Maps
	Interaction    Interaction
}

// Interaction is the canvas state that affects rendering.
type Interaction struct {
	Selected []string `json:"selected,omitempty" yaml:"selected,omitempty"`
	// MenuElement is the element whose menu is open.
	MenuElement string `json:"menuElement,omitempty" yaml:"menuElement,omitempty"`
	// MenuConnector is the connector whose menu is open.
	MenuConnector *flow.Slot `json:"menuConnector,omitempty" yaml:"menuConnector,omitempty"`
	// Deletion is the element being deleted, if any.
	Deletion *Deletion `json:"deletion,omitempty" yaml:"deletion,omitempty"`
}

// Deletion describes an element deletion in progress.
type Deletion struct {
	ElementID string `json:"elementId" yaml:"elementId"`
	// ChildIndexToKeep is the branch that survives the deletion.
	ChildIndexToKeep *int `json:"childIndexToKeep,omitempty" yaml:"childIndexToKeep,omitempty"`
}

// keeps reports whether branch i of id survives the deletion.
func (d *Deletion) keeps(id string, i int) bool {
	return d != nil && d.ElementID == id && d.ChildIndexToKeep != nil && *d.ChildIndexToKeep == i
}

// deletes reports whether id itself is being deleted.
func (d *Deletion) deletes(id string) bool {
	return d != nil && d.ElementID == id
}
