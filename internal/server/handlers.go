package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	flowio "github.com/matzehuels/flowlayout/pkg/io"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// request is the body shared by every endpoint.
type request struct {
	Flow *flowio.Document `json:"flow"`
	// Actions is an action script in the same form the CLI reads.
	Actions json.RawMessage `json:"actions,omitempty"`
	pipeline.Options
}

// decode reads a request and resolves its flow and actions.
func decode(w http.ResponseWriter, r *http.Request) (*request, *flow.Graph, error) {
	var req request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if req.Flow == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "request has no flow")
	}
	g, err := flowio.ToGraph(*req.Flow)
	if err != nil {
		return nil, nil, err
	}
	if len(req.Actions) > 0 {
		actions, err := flowio.ReadActions(bytes.NewReader(req.Actions), flowio.FormatJSON)
		if err != nil {
			return nil, nil, err
		}
		req.Options.Actions = actions
	}
	return &req, g, nil
}

type layoutResponse struct {
	FlowHash string       `json:"flowHash"`
	Layout   *layout.Maps `json:"layout"`
	Cached   bool         `json:"cached"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, g, err := decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Formats = []string{pipeline.FormatLayout}
	res, err := s.runner.Execute(r.Context(), g, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		FlowHash: res.FlowHash,
		Layout:   res.Layout,
		Cached:   res.CacheInfo.LayoutHit,
	})
}

type renderResponse struct {
	FlowHash  string            `json:"flowHash"`
	Artifacts map[string]string `json:"artifacts"`
	Cached    bool              `json:"cached"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatNodelink: "image/svg+xml",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatLayout:   "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz",
}

// handleRender writes a single requested format as-is. Several formats are
// returned together as strings in a JSON object.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, g, err := decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), g, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if len(res.Artifacts) == 1 {
		for format, data := range res.Artifacts {
			w.Header().Set("Content-Type", contentTypes[format])
			w.Header().Set("X-Flow-Hash", res.FlowHash)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
		}
		return
	}

	out := renderResponse{
		FlowHash:  res.FlowHash,
		Artifacts: make(map[string]string, len(res.Artifacts)),
		Cached:    res.CacheInfo.RenderHit,
	}
	for format, data := range res.Artifacts {
		out.Artifacts[format] = string(data)
	}
	writeJSON(w, http.StatusOK, out)
}

type reduceResponse struct {
	FlowHash string          `json:"flowHash"`
	Flow     flowio.Document `json:"flow"`
	Cached   bool            `json:"cached"`
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	req, g, err := decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reduced, hit, err := s.runner.ReduceWithCacheInfo(r.Context(), g, req.Options.Actions, req.Refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hash, err := pipeline.FlowHash(reduced)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reduceResponse{
		FlowHash: hash,
		Flow:     flowio.FromGraph(reduced),
		Cached:   hit,
	})
}
