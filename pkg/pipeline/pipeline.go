// Package pipeline runs the reduce → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Stages
//
//  1. Reduce: apply an action script to a flow
//  2. Layout: compute element and branch geometry
//  3. Render: build the render tree and encode it in the requested formats
//
// Each stage is cached under a content-addressed key, so replaying the same
// script on the same flow is free.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, g, pipeline.Options{
//	    Actions: actions,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Stages can also run on their own:
//
//	reduced, err := runner.Reduce(ctx, g, actions)
//	m, err := runner.Layout(ctx, reduced, opts)
//	artifacts, err := runner.Render(ctx, reduced, m, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/reducer"
	"github.com/matzehuels/flowlayout/pkg/render"
)

// =============================================================================
// Formats
// =============================================================================

// Output formats.
const (
	// FormatSVG is the SVG preview of the render tree.
	FormatSVG = "svg"
	// FormatJSON is the render tree with its layout.
	FormatJSON = "json"
	// FormatLayout is the bare layout maps.
	FormatLayout = "layout"
	// FormatDOT is the Graphviz source of the node-link diagram.
	FormatDOT = "dot"
	// FormatNodelink is the node-link diagram rendered by Graphviz.
	FormatNodelink = "nodelink"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatLayout:   true,
	FormatDOT:      true,
	FormatNodelink: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		names := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			names = append(names, f)
		}
		slices.Sort(names)
		return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// DefaultPadding is the margin around SVG previews.
const DefaultPadding = 16.0

// Options configures a pipeline run. It decodes from API request bodies.
type Options struct {
	// Config holds the layout dimensions. Nil means layout.DefaultConfig.
	Config *layout.Config `json:"config,omitempty"`

	// Actions is the script applied by the reduce stage.
	Actions []reducer.Action `json:"-"`

	// Previous is the layout to animate from. Without it Progress is
	// forced to 1.
	Previous *layout.Maps `json:"previous,omitempty"`
	// Animate uses the layout of the unreduced flow as Previous.
	Animate  bool    `json:"animate,omitempty"`
	Progress float64 `json:"progress,omitempty"`

	Interaction render.Interaction `json:"interaction,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	Padding  float64  `json:"padding,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh skips cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == nil {
		cfg := layout.DefaultConfig()
		o.Config = &cfg
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Previous == nil && !o.Animate {
		o.Progress = 1
	}
	if err := errors.ValidateProgress(o.Progress); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// renderContext returns the render context of g under o.
func (o *Options) renderContext(g *flow.Graph) render.Context {
	return render.Context{
		Graph:          g,
		Config:         *o.Config,
		PreviousLayout: o.Previous,
		Interaction:    o.Interaction,
	}
}

// layoutKeyOpts returns the cache key options of the layout stage.
func (o *Options) layoutKeyOpts() (cache.LayoutKeyOpts, error) {
	cfg, err := cache.HashJSON(o.Config)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	k := cache.LayoutKeyOpts{ConfigHash: cfg, Progress: o.Progress}
	if o.Previous != nil {
		if k.PreviousHash, err = cache.HashJSON(o.Previous); err != nil {
			return cache.LayoutKeyOpts{}, err
		}
		if d := o.Interaction.Deletion; d != nil {
			if k.DeletionHash, err = cache.HashJSON(d); err != nil {
				return cache.LayoutKeyOpts{}, err
			}
		}
	}
	return k, nil
}

// renderKeyOpts returns the cache key options of one rendered format.
func (o *Options) renderKeyOpts(format string) (cache.RenderKeyOpts, error) {
	lk, err := o.layoutKeyOpts()
	if err != nil {
		return cache.RenderKeyOpts{}, err
	}
	ia, err := cache.HashJSON(o.Interaction)
	if err != nil {
		return cache.RenderKeyOpts{}, err
	}
	return cache.RenderKeyOpts{
		Format:          format,
		ConfigHash:      lk.ConfigHash,
		Progress:        o.Progress,
		InteractionHash: ia,
		PreviousHash:    lk.PreviousHash,
		Labels:          o.Labels || o.Detailed,
	}, nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the reduced flow.
	Graph *flow.Graph
	// FlowHash is the content hash of Graph's document.
	FlowHash string

	Layout *layout.Maps
	// Artifacts holds the rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Actions    int
	ReduceTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	ReduceHit bool
	LayoutHit bool
	// RenderHit is set when every artifact came from the cache.
	RenderHit bool
}
