package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/reducer"
)

type jsonAction struct {
	Type    reducer.ActionType `json:"type"`
	Payload json.RawMessage    `json:"payload,omitempty"`
}

type yamlAction struct {
	Type    reducer.ActionType `yaml:"type"`
	Payload yaml.Node          `yaml:"payload,omitempty"`
}

// initPayload is the wire form of reducer.Init.
type initPayload struct {
	Flow *Document `json:"flow,omitempty" yaml:"flow,omitempty"`
}

// ReadActions decodes an action script from r.
func ReadActions(r io.Reader, f Format) ([]reducer.Action, error) {
	var out []reducer.Action
	switch f {
	case FormatYAML:
		var raw []yamlAction
		if err := decode(r, f, &raw); err != nil {
			return nil, err
		}
		for i, a := range raw {
			act, err := decodeAction(a.Type, func(v any) error {
				if a.Payload.IsZero() {
					return nil
				}
				return a.Payload.Decode(v)
			})
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "action %d (%s)", i, a.Type)
			}
			out = append(out, act)
		}
	default:
		var raw []jsonAction
		if err := decode(r, f, &raw); err != nil {
			return nil, err
		}
		for i, a := range raw {
			act, err := decodeAction(a.Type, func(v any) error {
				if len(a.Payload) == 0 {
					return nil
				}
				return json.Unmarshal(a.Payload, v)
			})
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "action %d (%s)", i, a.Type)
			}
			out = append(out, act)
		}
	}
	return out, nil
}

// ReadActionsFile reads the action script at path.
func ReadActionsFile(path string) ([]reducer.Action, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadActions(file, FormatFromPath(path))
}

// WriteActions encodes actions as an action script.
func WriteActions(actions []reducer.Action, w io.Writer, f Format) error {
	type wire struct {
		Type    reducer.ActionType `json:"type" yaml:"type"`
		Payload any                `json:"payload,omitempty" yaml:"payload,omitempty"`
	}
	out := make([]wire, len(actions))
	for i, a := range actions {
		out[i] = wire{Type: a.Type(), Payload: payloadOf(a)}
	}
	return encode(w, f, out)
}

// MarshalActions is WriteActions into memory.
func MarshalActions(actions []reducer.Action, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteActions(actions, &buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func payloadOf(a reducer.Action) any {
	switch a := a.(type) {
	case reducer.Init:
		if a.Graph == nil {
			return nil
		}
		doc := FromGraph(a.Graph)
		return initPayload{Flow: &doc}
	case reducer.ClearCanvasDecoration, reducer.Unrecognized:
		return nil
	}
	return a
}

// decodeAction builds the action of type t, filling its payload through fill.
func decodeAction(t reducer.ActionType, fill func(any) error) (reducer.Action, error) {
	switch t {
	case reducer.TypeInit:
		var p initPayload
		if err := fill(&p); err != nil {
			return nil, err
		}
		if p.Flow == nil {
			return reducer.Init{}, nil
		}
		g, err := ToGraph(*p.Flow)
		if err != nil {
			return nil, err
		}
		return reducer.Init{Graph: g}, nil
	case reducer.TypeAddElement:
		return into[reducer.AddElement](fill)
	case reducer.TypeDeleteElement:
		return into[reducer.DeleteElement](fill)
	case reducer.TypeAddFault:
		return into[reducer.AddFault](fill)
	case reducer.TypeDeleteFault:
		return into[reducer.DeleteFault](fill)
	case reducer.TypeConnectToElement:
		return into[reducer.ConnectToElement](fill)
	case reducer.TypeCreateGoToConnection:
		return into[reducer.CreateGoToConnection](fill)
	case reducer.TypeDeleteGoToConnection:
		return into[reducer.DeleteGoToConnection](fill)
	case reducer.TypeUpdateChildren:
		return into[reducer.UpdateChildren](fill)
	case reducer.TypeDecorateCanvas:
		return into[reducer.DecorateCanvas](fill)
	case reducer.TypeClearCanvasDecoration:
		return reducer.ClearCanvasDecoration{}, nil
	}
	return reducer.Unrecognized{Name: string(t)}, nil
}

func into[A reducer.Action](fill func(any) error) (reducer.Action, error) {
	var a A
	if err := fill(&a); err != nil {
		return nil, err
	}
	return a, nil
}
