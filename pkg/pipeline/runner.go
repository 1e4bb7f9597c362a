package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/flow"
	flowio "github.com/matzehuels/flowlayout/pkg/io"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/reducer"
)

// Runner executes pipeline stages with caching. It holds no per-run state;
// one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs reduce → layout → render on g.
func (r *Runner) Execute(ctx context.Context, g *flow.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{Stats: Stats{Actions: len(opts.Actions)}}

	if opts.Animate && opts.Previous == nil {
		base := opts
		base.Progress = 1
		prev, _, err := r.LayoutWithCacheInfo(ctx, g, base)
		if err != nil {
			return nil, fmt.Errorf("layout previous: %w", err)
		}
		opts.Previous = prev
	}

	start := time.Now()
	reduced, hit, err := r.ReduceWithCacheInfo(ctx, g, opts.Actions, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Graph = reduced
	result.Stats.ReduceTime = time.Since(start)
	result.Stats.NodeCount = reduced.Len()
	result.CacheInfo.ReduceHit = hit
	if result.FlowHash, err = FlowHash(reduced); err != nil {
		return nil, err
	}
	if len(opts.Actions) > 0 {
		opts.Logger.Info("applied actions",
			"actions", len(opts.Actions),
			"nodes", reduced.Len(),
			"cached", hit,
			"duration", result.Stats.ReduceTime)
	}

	start = time.Now()
	m, hit, err := r.LayoutWithCacheInfo(ctx, reduced, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = m
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit
	opts.Logger.Info("computed layout",
		"nodes", reduced.Len(),
		"width", m.Width,
		"height", m.Height,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, reduced, m, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ReduceWithCacheInfo applies actions to g and reports whether the result
// came from the cache. Scripts that start with Init are cached like any
// other; an empty script returns g itself.
func (r *Runner) ReduceWithCacheInfo(ctx context.Context, g *flow.Graph, actions []reducer.Action, refresh bool) (*flow.Graph, bool, error) {
	if len(actions) == 0 {
		return g, false, nil
	}
	observability.Pipeline().OnReduceStart(ctx, len(actions))
	start := time.Now()

	key, keyErr := r.reduceKey(g, actions)
	if keyErr == nil && !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := flowio.ReadFlow(bytes.NewReader(data), flowio.FormatJSON); err == nil {
				observability.Cache().OnCacheHit(ctx, "reduce")
				observability.Pipeline().OnReduceComplete(ctx, len(actions), time.Since(start), nil)
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "reduce")
	}

	reduced, err := Reduce(g, actions)
	observability.Pipeline().OnReduceComplete(ctx, len(actions), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if keyErr == nil {
		if data, err := flowio.MarshalFlow(reduced, flowio.FormatJSON); err == nil {
			r.store(ctx, "reduce", key, data, cache.ReduceTTL)
		}
	}
	return reduced, false, nil
}

// Reduce is ReduceWithCacheInfo without the cache hit info.
func (r *Runner) Reduce(ctx context.Context, g *flow.Graph, actions []reducer.Action) (*flow.Graph, error) {
	reduced, _, err := r.ReduceWithCacheInfo(ctx, g, actions, false)
	return reduced, err
}

// LayoutWithCacheInfo computes the layout of g and reports whether it came
// from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *flow.Graph, opts Options) (*layout.Maps, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	observability.Pipeline().OnLayoutStart(ctx, g.Len())
	start := time.Now()

	key, keyErr := r.layoutKey(g, opts)
	if keyErr == nil && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.Maps
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				observability.Pipeline().OnLayoutComplete(ctx, g.Len(), time.Since(start), nil)
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	m, err := Layout(g, opts)
	observability.Pipeline().OnLayoutComplete(ctx, g.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if keyErr == nil {
		if data, err := json.Marshal(m); err == nil {
			r.store(ctx, "layout", key, data, cache.LayoutTTL)
		}
	}
	return m, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *flow.Graph, opts Options) (*layout.Maps, error) {
	m, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return m, err
}

// RenderWithCacheInfo encodes g in every requested format. It reports a hit
// only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *flow.Graph, m *layout.Maps, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	flowHash, hashErr := FlowHash(g)

	keys := make(map[string]string, len(opts.Formats))
	artifacts := make(map[string][]byte, len(opts.Formats))
	if hashErr == nil {
		for _, format := range opts.Formats {
			ko, err := opts.renderKeyOpts(format)
			if err != nil {
				continue
			}
			keys[format] = r.Keyer.RenderKey(flowHash, ko)
			if opts.Refresh {
				continue
			}
			if data, hit, err := r.Cache.Get(ctx, keys[format]); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "render")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "render")
			}
		}
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	var missing []string
	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; !ok {
			missing = append(missing, format)
		}
	}
	sub := opts
	sub.Formats = missing

	for _, format := range missing {
		observability.Pipeline().OnRenderStart(ctx, format)
	}
	start := time.Now()
	rendered, err := Render(ctx, g, m, sub)
	for _, format := range missing {
		observability.Pipeline().OnRenderComplete(ctx, format, len(rendered[format]), time.Since(start), err)
	}
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if key, ok := keys[format]; ok {
			r.store(ctx, "render", key, data, cache.RenderTTL)
		}
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, g *flow.Graph, m *layout.Maps, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, m, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// FlowHash returns the content hash of g's JSON document.
func FlowHash(g *flow.Graph) (string, error) {
	data, err := flowio.MarshalFlow(g, flowio.FormatJSON)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

func (r *Runner) reduceKey(g *flow.Graph, actions []reducer.Action) (string, error) {
	flowHash, err := FlowHash(g)
	if err != nil {
		return "", err
	}
	script, err := flowio.MarshalActions(actions, flowio.FormatJSON)
	if err != nil {
		return "", err
	}
	return r.Keyer.ReduceKey(flowHash, cache.Hash(script)), nil
}

func (r *Runner) layoutKey(g *flow.Graph, opts Options) (string, error) {
	flowHash, err := FlowHash(g)
	if err != nil {
		return "", err
	}
	ko, err := opts.layoutKeyOpts()
	if err != nil {
		return "", err
	}
	return r.Keyer.LayoutKey(flowHash, ko), nil
}

// store writes an entry, logging instead of failing on cache errors.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
