package connector

import (
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/geometry"
)

// Type identifies the shape of a connector.
type Type int

const (
	TypeStraight Type = iota
	TypeGoTo
	TypeBranchLeft
	TypeBranchRight
	TypeMergeLeft
	TypeMergeRight
	TypeLoopBack
	TypeLoopAfterLast
	TypeFault
)

var typeNames = map[Type]string{
	TypeStraight:      "straight",
	TypeGoTo:          "goTo",
	TypeBranchLeft:    "branchLeft",
	TypeBranchRight:   "branchRight",
	TypeMergeLeft:     "mergeLeft",
	TypeMergeRight:    "mergeRight",
	TypeLoopBack:      "loopBack",
	TypeLoopAfterLast: "loopAfterLast",
	TypeFault:         "fault",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Variant selects connector styling. It never affects topology.
type Variant int

const (
	VariantDefault Variant = iota
	VariantCenter
	VariantEdge
	VariantEdgeBottom
	VariantLoop
)

var variantNames = map[Variant]string{
	VariantDefault:    "default",
	VariantCenter:     "center",
	VariantEdge:       "edge",
	VariantEdgeBottom: "edgeBottom",
	VariantLoop:       "loop",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// LabelType tells the canvas which badge, if any, to draw on a connector.
type LabelType int

const (
	LabelNone LabelType = iota
	LabelBranch
	LabelFault
	LabelLoop
)

var labelNames = map[LabelType]string{
	LabelNone:   "none",
	LabelBranch: "branch",
	LabelFault:  "fault",
	LabelLoop:   "loop",
}

func (l LabelType) String() string {
	if s, ok := labelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("label(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l LabelType) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Dimensions is the extent a connector must span. Width is the horizontal
// travel and Height the vertical travel measured from the anchor.
type Dimensions struct {
	Width  float64
	Height float64
}

// Margins trims a connector at its start (Top) and end (Bottom). A negative
// Bottom lengthens the connector past its nominal height.
type Margins struct {
	Top    float64 `json:"top" toml:"top"`
	Bottom float64 `json:"bottom" toml:"bottom"`
}

// Style carries the drawing parameters shared by all connectors.
type Style struct {
	StrokeWidth float64
	CurveRadius float64
	GridWidth   float64
	IconWidth   float64
}

// SVGInfo is a generated connector.
type SVGInfo struct {
	Path     string        `json:"path"`
	Geometry geometry.Rect `json:"geometry"`
}
