package io

import (
	"cmp"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
)

// =============================================================================
// Document - Flow Serialization
// =============================================================================

// Document is the canonical serialization of a flow graph.
//
// Documents round-trip: FromGraph followed by ToGraph yields a graph equal to
// the original once terminal flags are recomputed.
type Document struct {
	Nodes      []flow.Node      `json:"nodes" yaml:"nodes"`
	GoTos      []GoTo           `json:"goTos,omitempty" yaml:"goTos,omitempty"`
	Decoration *flow.Decoration `json:"decoration,omitempty" yaml:"decoration,omitempty"`
}

// GoTo is one go-to edge.
type GoTo struct {
	Source flow.Slot `json:"source" yaml:"source"`
	Target string    `json:"target" yaml:"target"`
}

// =============================================================================
// Graph ↔ Document Conversion
// =============================================================================

// FromGraph converts g to its serialization format. Nodes are sorted by id
// and go-tos by source for deterministic output.
func FromGraph(g *flow.Graph) Document {
	ids := g.IDs()
	doc := Document{Nodes: make([]flow.Node, len(ids))}
	for i, id := range ids {
		doc.Nodes[i] = *g.Nodes[id].Clone()
	}

	for s, target := range g.GoTos {
		doc.GoTos = append(doc.GoTos, GoTo{Source: s, Target: target})
	}
	slices.SortFunc(doc.GoTos, func(a, b GoTo) int {
		if c := cmp.Compare(a.Source.ID, b.Source.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.Source.Index, b.Source.Index)
	})

	if !g.Decoration.IsEmpty() {
		d := g.Decoration.Clone()
		doc.Decoration = &d
	}
	return doc
}

// ToGraph converts a document into a graph, recomputes terminal flags and
// validates the result.
func ToGraph(doc Document) (*flow.Graph, error) {
	g := flow.New()
	for i := range doc.Nodes {
		n := doc.Nodes[i].Clone()
		if err := errors.ValidateElementID(n.GUID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %d", i)
		}
		if _, dup := g.Nodes[n.GUID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate node %q", n.GUID)
		}
		g.Nodes[n.GUID] = n
	}
	for _, gt := range doc.GoTos {
		if _, dup := g.GoTos[gt.Source]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate go-to from %s", gt.Source)
		}
		g.GoTos[gt.Source] = gt.Target
	}
	if doc.Decoration != nil {
		g.Decoration = doc.Decoration.Clone()
	}

	flow.RecomputeTerminals(g)
	if err := flow.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}
