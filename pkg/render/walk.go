package render

// Walk calls fn for every element of f in render order: each element before
// its branches, branches before the fault branch.
func (f *FlowRenderInfo) Walk(fn func(*NodeRenderInfo)) {
	if f == nil {
		return
	}
	for _, n := range f.Nodes {
		fn(n)
		for _, sub := range n.Flows {
			sub.Walk(fn)
		}
		n.FaultFlow.Walk(fn)
	}
}

// Connectors returns every connector of f in render order.
func (f *FlowRenderInfo) Connectors() []*ConnectorRenderInfo {
	var out []*ConnectorRenderInfo
	if f == nil {
		return out
	}
	if f.PreConnector != nil {
		out = append(out, f.PreConnector)
	}
	for _, n := range f.Nodes {
		out = append(out, n.LogicConnectors...)
		for _, sub := range n.Flows {
			out = append(out, sub.Connectors()...)
		}
		out = append(out, n.FaultFlow.Connectors()...)
		if n.NextConnector != nil {
			out = append(out, n.NextConnector)
		}
	}
	return out
}

// Find returns the element with the given id, or nil.
func (f *FlowRenderInfo) Find(id string) *NodeRenderInfo {
	var found *NodeRenderInfo
	f.Walk(func(n *NodeRenderInfo) {
		if found == nil && n.GUID == id {
			found = n
		}
	})
	return found
}
