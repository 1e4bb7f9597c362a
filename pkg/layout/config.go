package layout

import (
	"github.com/matzehuels/flowlayout/pkg/connector"
	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Config holds every dimension the layout and the connectors are built
// from. All values are dimensionless units scaled by the host canvas.
type Config struct {
	Grid      GridConfig      `json:"grid" toml:"grid"`
	Node      NodeConfig      `json:"node" toml:"node"`
	Connector ConnectorConfig `json:"connector" toml:"connector"`
	Loop      LoopConfig      `json:"loop" toml:"loop"`
}

// GridConfig is the size of one layout cell. A simple element occupies one
// cell horizontally.
type GridConfig struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// NodeConfig is the size of an element icon.
type NodeConfig struct {
	IconWidth  float64 `json:"iconWidth" toml:"icon_width"`
	IconHeight float64 `json:"iconHeight" toml:"icon_height"`
}

// ConnectorConfig sizes the connectors between elements.
type ConnectorConfig struct {
	StrokeWidth float64 `json:"strokeWidth" toml:"stroke_width"`
	CurveRadius float64 `json:"curveRadius" toml:"curve_radius"`

	// StraightHeight is the gap between an element and its successor.
	StraightHeight float64 `json:"straightHeight" toml:"straight_height"`
	// BranchHeight is the gap between a branching icon and the top of its
	// branches, where the branch-out lines run.
	BranchHeight float64 `json:"branchHeight" toml:"branch_height"`
	// PreConnectorHeight is the line leading into the first element of a
	// branch. It carries the outcome badge.
	PreConnectorHeight float64 `json:"preConnectorHeight" toml:"pre_connector_height"`
	// MergeHeight is the gap between the deepest merging branch and the join
	// point.
	MergeHeight float64 `json:"mergeHeight" toml:"merge_height"`

	Margins MarginsConfig `json:"margins" toml:"margins"`
}

// MarginsConfig holds per-kind connector margins.
type MarginsConfig struct {
	Straight connector.Margins `json:"straight" toml:"straight"`
	GoTo     connector.Margins `json:"goTo" toml:"go_to"`
	Branch   connector.Margins `json:"branch" toml:"branch"`
	Merge    connector.Margins `json:"merge" toml:"merge"`
	Loop     connector.Margins `json:"loop" toml:"loop"`
	Fault    connector.Margins `json:"fault" toml:"fault"`
}

// LoopConfig sizes the lanes around a loop body.
type LoopConfig struct {
	// Padding is the extra width on each side of the body that holds the
	// loop-back and after-last lanes.
	Padding float64 `json:"padding" toml:"padding"`
	// BottomHeight is the gap between the body bottom and the loop's join
	// point.
	BottomHeight float64 `json:"bottomHeight" toml:"bottom_height"`
}

// DefaultConfig returns the stock dimensions.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{Width: 176, Height: 24},
		Node: NodeConfig{IconWidth: 48, IconHeight: 48},
		Connector: ConnectorConfig{
			StrokeWidth:        6,
			CurveRadius:        16,
			StraightHeight:     48,
			BranchHeight:       48,
			PreConnectorHeight: 48,
			MergeHeight:        48,
			Margins: MarginsConfig{
				Branch: connector.Margins{Top: 12},
			},
		},
		Loop: LoopConfig{Padding: 48, BottomHeight: 48},
	}
}

// Validate reports the first dimension that cannot produce a layout.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"grid.width", c.Grid.Width},
		{"node.icon_width", c.Node.IconWidth},
		{"node.icon_height", c.Node.IconHeight},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be positive, got %v", p.name, p.v)
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"grid.height", c.Grid.Height},
		{"connector.stroke_width", c.Connector.StrokeWidth},
		{"connector.curve_radius", c.Connector.CurveRadius},
		{"connector.straight_height", c.Connector.StraightHeight},
		{"connector.branch_height", c.Connector.BranchHeight},
		{"connector.pre_connector_height", c.Connector.PreConnectorHeight},
		{"connector.merge_height", c.Connector.MergeHeight},
		{"loop.padding", c.Loop.Padding},
		{"loop.bottom_height", c.Loop.BottomHeight},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %v", p.name, p.v)
		}
	}
	if c.Node.IconWidth > c.Grid.Width {
		return errors.New(errors.ErrCodeInvalidInput, "node.icon_width %v exceeds grid.width %v", c.Node.IconWidth, c.Grid.Width)
	}
	return nil
}

// Style returns the connector drawing style for c.
func (c Config) Style() connector.Style {
	return connector.Style{
		StrokeWidth: c.Connector.StrokeWidth,
		CurveRadius: c.Connector.CurveRadius,
		GridWidth:   c.Grid.Width,
		IconWidth:   c.Node.IconWidth,
	}
}
