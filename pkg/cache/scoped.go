package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant of a shared
// backend its own namespace.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "team:payments:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) LayoutKey(flowHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(flowHash, opts)
}

func (k *ScopedKeyer) RenderKey(flowHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(flowHash, opts)
}

func (k *ScopedKeyer) ReduceKey(flowHash, scriptHash string) string {
	return k.prefix + k.inner.ReduceKey(flowHash, scriptHash)
}
