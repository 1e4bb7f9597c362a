// Package pkg provides the libraries behind flowlayout, an auto-layout
// engine for process flow diagrams.
//
// # Overview
//
// A flow is a tree of elements (start, simple steps, decisions, loops and
// end elements) joined by next links, with optional fault branches and
// go-to links that jump to an earlier element. Flowlayout computes where
// every element and branch goes, builds a render tree with connector
// paths, and edits flows through a closed set of reducer actions.
//
// # Architecture
//
// The data flow through flowlayout:
//
//	flow document (JSON / YAML)
//	         ↓
//	    [io] package (decode, validate)
//	         ↓
//	    [reducer] package (apply editing actions)
//	         ↓
//	    [layout] package (geometry of elements and branches)
//	         ↓
//	    [render] package (render tree + [connector] paths)
//	         ↓
//	    SVG / JSON / DOT output ([render/sink], [render/nodelink])
//
// # Quick Start
//
//	g, _ := io.ReadFlowFile("order.json")
//	g, _ = reducer.Reduce(g, reducer.AddFault{ElementID: "approve"})
//	m, _ := layout.Compute(g, layout.DefaultConfig())
//	tree, _ := render.Build(render.Context{Graph: g, Config: layout.DefaultConfig()}, m)
//	svg := sink.RenderSVG(tree)
//
// # Main Packages
//
// [geometry] - Offsets, points, rectangles and SVG path building.
//
// [flow] - The flow graph model: elements, slots, go-tos, terminal
// branches and validation.
//
// [layout] - Layout computation and interpolation between two layouts for
// animation.
//
// [connector] - One path generator per connector kind.
//
// [render] - Render-tree builder combining layout, connectors and canvas
// interaction state.
//
// [reducer] - The editing actions and the pure reducer that applies them.
//
// ## Infrastructure
//
// [pipeline] - reduce → layout → render with caching, shared by the CLI and
// the HTTP API.
//
// [cache] - Content-addressed cache with file, null and Redis backends.
//
// [config] - TOML layout configuration.
//
// [errors] - Coded errors.
//
// [observability] - Hooks for pipeline, cache and server events.
//
// # Testing
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/layout/...           # Specific package
//	REDIS_URL=redis://localhost:6379 go test ./pkg/cache/...
//
// [geometry]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/geometry
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/flow
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/layout
// [connector]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/connector
// [render]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/render/nodelink
// [reducer]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/reducer
// [io]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/observability
package pkg
