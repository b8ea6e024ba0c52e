// Package pipeline provides the load → validate → layout → preview flow
// shared by the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a diagram from a JSON or YAML file or stream
//  2. Layout: Optionally validate it strictly, then run the layout engine
//  3. Preview: Optionally render the laid-out diagram to SVG
//
// Each stage can be run independently or as part of [Runner.Execute].
// Every stage reports to the hooks registered in pkg/observability and logs
// a one-line summary.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, "library.json", pipeline.Options{Strict: true})
//	if err != nil {
//	    return err
//	}
//	diagram.WriteFile("library.laid-out.json", result.Diagram)
//
// Run individual stages:
//
//	d, err := runner.Load(ctx, path)
//	result, err := runner.Layout(ctx, d, opts)
//	svg, err := runner.Preview(ctx, result.Diagram, render.Options{})
package pipeline

import (
	"time"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/observability"
)

// MaxNodes bounds the size of a diagram accepted by [Runner.Layout]. The
// skeleton phase is quadratic in relationship arity, so unbounded input from
// the network is refused.
const MaxNodes = 20000

// =============================================================================
// Options
// =============================================================================

// Options configures a layout run.
type Options struct {
	// Strict rejects diagrams with empty or duplicate node ids and edges
	// that reference unknown nodes. Without it such defects are tolerated
	// the way the layout engine tolerates them.
	Strict bool `json:"strict,omitempty"`

	// MaxNodes overrides the package default. Zero means [MaxNodes].
	MaxNodes int `json:"max_nodes,omitempty"`
}

// ValidateAndSetDefaults fills in defaults.
func (o *Options) ValidateAndSetDefaults() {
	if o.MaxNodes <= 0 {
		o.MaxNodes = MaxNodes
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of a layout run.
type Result struct {
	// Diagram is the input diagram with new node positions. Edges and all
	// other node fields are unchanged.
	Diagram *diagram.Diagram

	// Layout holds ranks, bands and staging details of the pass.
	Layout *layout.Result

	Stats Stats
}

// Stats summarizes a run.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Placed     int
	Staged     int
	Unplaced   int
	Ranks      int
	LoadTime   time.Duration
	LayoutTime time.Duration
}

func (s Stats) hookStats() observability.LayoutStats {
	return observability.LayoutStats{
		Nodes:    s.NodeCount,
		Placed:   s.Placed,
		Staged:   s.Staged,
		Unplaced: s.Unplaced,
		Ranks:    s.Ranks,
	}
}
