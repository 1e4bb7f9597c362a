package pipeline

import (
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/reducer"
)

// Reduce applies actions to g in order and returns the final flow. The first
// rejected action stops the script; the error names its position.
func Reduce(g *flow.Graph, actions []reducer.Action) (*flow.Graph, error) {
	for i, a := range actions {
		next, err := reducer.Reduce(g, a)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.Wrap(code, err, "action %d (%s)", i, a.Type())
		}
		g = next
	}
	return g, nil
}
