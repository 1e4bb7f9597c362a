package flow

import "slices"

// Decoration highlights elements and connectors on the canvas, for example
// the path a validation error points at. It never affects structure or layout.
type Decoration struct {
	Elements   []string `json:"elements,omitempty" yaml:"elements,omitempty"`
	Connectors []Slot   `json:"connectors,omitempty" yaml:"connectors,omitempty"`
}

// Clone returns a copy of d that shares no slices with it.
func (d Decoration) Clone() Decoration {
	return Decoration{
		Elements:   slices.Clone(d.Elements),
		Connectors: slices.Clone(d.Connectors),
	}
}

// IsEmpty reports whether nothing is highlighted.
func (d Decoration) IsEmpty() bool {
	return len(d.Elements) == 0 && len(d.Connectors) == 0
}

// HasElement reports whether the element id is highlighted.
func (d Decoration) HasElement(id string) bool {
	return slices.Contains(d.Elements, id)
}

// HasConnector reports whether the connector leaving slot is highlighted.
func (d Decoration) HasConnector(s Slot) bool {
	return slices.Contains(d.Connectors, s)
}
