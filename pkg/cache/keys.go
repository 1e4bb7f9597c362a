package cache

// Keyer derives cache keys for each artifact kind.
type Keyer interface {
	// LayoutKey is the key of the layout maps of a flow.
	LayoutKey(flowHash string, opts LayoutKeyOpts) string
	// RenderKey is the key of a rendered artifact.
	RenderKey(flowHash string, opts RenderKeyOpts) string
	// ReduceKey is the key of the flow produced by applying a script.
	ReduceKey(flowHash, scriptHash string) string
}

// LayoutKeyOpts holds the inputs of a layout besides the flow itself.
type LayoutKeyOpts struct {
	ConfigHash string  `json:"config"`
	Progress   float64 `json:"progress"`
	// PreviousHash identifies the layout being animated from.
	PreviousHash string `json:"previous,omitempty"`
	// DeletionHash identifies the pending deletion being collapsed.
	DeletionHash string `json:"deletion,omitempty"`
}

// RenderKeyOpts holds the inputs of a render besides the flow itself.
type RenderKeyOpts struct {
	Format          string  `json:"format"`
	ConfigHash      string  `json:"config"`
	Progress        float64 `json:"progress"`
	InteractionHash string  `json:"interaction,omitempty"`
	PreviousHash    string  `json:"previous,omitempty"`
	Labels          bool    `json:"labels,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(flowHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", flowHash, opts)
}

func (DefaultKeyer) RenderKey(flowHash string, opts RenderKeyOpts) string {
	return hashKey("render", flowHash, opts)
}

func (DefaultKeyer) ReduceKey(flowHash, scriptHash string) string {
	return hashKey("reduce", flowHash, scriptHash)
}

var _ Keyer = DefaultKeyer{}
