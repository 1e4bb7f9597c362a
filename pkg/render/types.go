package render

import (
	"github.com/matzehuels/flowlayout/pkg/connector"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/geometry"
)

// FlowRenderInfo is a rendered chain: the root flow or one branch.
type FlowRenderInfo struct {
	Geometry   geometry.Rect     `json:"geometry"`
	Nodes      []*NodeRenderInfo `json:"nodes"`
	IsTerminal bool              `json:"isTerminal"`
	IsFault    bool              `json:"isFault,omitempty"`
	IsDeleting bool              `json:"isDeleting,omitempty"`
	// PreConnector leads from the parent into the branch. It is nil for the
	// root flow.
	PreConnector *ConnectorRenderInfo `json:"preConnector,omitempty"`
}

// NodeRenderInfo is a rendered element.
type NodeRenderInfo struct {
	GUID  string    `json:"guid"`
	Type  string    `json:"type,omitempty"`
	Label string    `json:"label,omitempty"`
	Kind  flow.Kind `json:"kind"`

	// Geometry is the element's box, branches included.
	Geometry geometry.Rect `json:"geometry"`
	// Icon is the element's icon, centered on its centerline.
	Icon geometry.Rect `json:"icon"`

	IsTerminal    bool `json:"isTerminal,omitempty"`
	IsSelected    bool `json:"isSelected,omitempty"`
	IsHighlighted bool `json:"isHighlighted,omitempty"`
	MenuOpened    bool `json:"menuOpened,omitempty"`
	ToBeDeleted   bool `json:"toBeDeleted,omitempty"`
	IsFault       bool `json:"isFault,omitempty"`

	Flows           []*FlowRenderInfo      `json:"flows,omitempty"`
	FaultFlow       *FlowRenderInfo        `json:"faultFlow,omitempty"`
	NextConnector   *ConnectorRenderInfo   `json:"nextConnector,omitempty"`
	LogicConnectors []*ConnectorRenderInfo `json:"logicConnectors,omitempty"`
}

// ConnectorRenderInfo is a rendered connector.
type ConnectorRenderInfo struct {
	Type connector.Type `json:"type"`
	// Source is the slot the connector leaves from.
	Source flow.Slot `json:"source"`
	// Geometry is absolute. Path is drawn in Geometry's local frame.
	Geometry geometry.Rect `json:"geometry"`
	Path     string        `json:"path"`

	Variant   connector.Variant   `json:"variant"`
	LabelType connector.LabelType `json:"labelType"`
	Label     string              `json:"label,omitempty"`
	// AddOffset is the y of the insertion affordance relative to
	// Geometry's top. Zero means the connector offers none.
	AddOffset float64 `json:"addOffset,omitempty"`

	IsHighlighted bool `json:"isHighlighted,omitempty"`
	MenuOpened    bool `json:"menuOpened,omitempty"`
	ToBeDeleted   bool `json:"toBeDeleted,omitempty"`
	IsFault       bool `json:"isFault,omitempty"`

	// GoToTarget is the element a go-to connector jumps to.
	GoToTarget string `json:"goToTarget,omitempty"`
}
