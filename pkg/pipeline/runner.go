package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/render"
)

// Runner executes pipeline stages.
//
// The Runner is stateless except for the logger. It doesn't store results,
// so multiple goroutines can safely share one Runner.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute loads the diagram at path and lays it out.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	d, err := r.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)

	result, err := r.Layout(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Load reads a diagram from path. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON. The path "-" reads JSON from stdin.
func (r *Runner) Load(ctx context.Context, path string) (*diagram.Diagram, error) {
	if path == "-" {
		return r.LoadReader(ctx, os.Stdin, "stdin", false)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return r.LoadReader(ctx, f, path, diagram.IsYAML(path))
}

// LoadReader decodes a diagram from rd. source names the input in logs and
// errors.
func (r *Runner) LoadReader(ctx context.Context, rd io.Reader, source string, yaml bool) (*diagram.Diagram, error) {
	observability.Pipeline().OnLoadStart(ctx, source)
	start := time.Now()

	var (
		d   *diagram.Diagram
		err error
	)
	if yaml {
		d, err = diagram.ReadYAML(rd)
	} else {
		d, err = diagram.Read(rd)
	}

	nodes := 0
	if d != nil {
		nodes = len(d.Nodes)
	}
	observability.Pipeline().OnLoadComplete(ctx, source, nodes, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cannot read diagram from %s", source)
	}

	r.Logger.Debug("loaded diagram", "source", source, "nodes", len(d.Nodes), "edges", len(d.Edges))
	return d, nil
}

// Layout runs the layout engine over d and returns a laid-out copy. d is not
// modified.
//
// The engine itself cannot fail. Layout returns an error only when ctx is
// already done, the diagram exceeds the node limit, or strict validation
// rejects it.
func (r *Runner) Layout(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.ValidateAndSetDefaults()
	if d == nil {
		d = &diagram.Diagram{}
	}

	if len(d.Nodes) > opts.MaxNodes {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "diagram has %d nodes (limit %d)", len(d.Nodes), opts.MaxNodes)
	}
	if opts.Strict {
		err := errors.ValidateDiagram(d)
		observability.Pipeline().OnValidate(ctx, err)
		if err != nil {
			return nil, err
		}
	}

	observability.Pipeline().OnLayoutStart(ctx, len(d.Nodes), len(d.Edges))
	start := time.Now()

	lr := layout.Compute(d.Nodes, d.Edges)
	out := &diagram.Diagram{
		Nodes: lr.Apply(d.Nodes),
		Edges: d.Edges,
		Extra: d.Extra,
	}

	result := &Result{
		Diagram: out,
		Layout:  lr,
		Stats: Stats{
			NodeCount:  len(d.Nodes),
			EdgeCount:  len(d.Edges),
			Placed:     len(lr.Positions),
			Staged:     len(lr.Staged),
			Unplaced:   len(lr.Unplaced),
			Ranks:      len(lr.Bands),
			LayoutTime: time.Since(start),
		},
	}
	observability.Pipeline().OnLayoutComplete(ctx, result.Stats.hookStats(), result.Stats.LayoutTime)

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"ranks", result.Stats.Ranks,
		"staged", result.Stats.Staged,
		"duration", result.Stats.LayoutTime)
	if result.Stats.Unplaced > 0 {
		r.Logger.Warn("nodes with unknown role left in place", "ids", lr.Unplaced)
	}
	return result, nil
}

// Preview renders d to SVG with every node pinned to its current position.
func (r *Runner) Preview(ctx context.Context, d *diagram.Diagram, opts render.Options) ([]byte, error) {
	observability.Pipeline().OnRenderStart(ctx, "svg")
	start := time.Now()

	svg, err := render.RenderSVG(ctx, render.ToDOT(d, opts))
	observability.Pipeline().OnRenderComplete(ctx, "svg", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render preview")
	}

	r.Logger.Debug("rendered preview", "bytes", len(svg), "duration", time.Since(start))
	return svg, nil
}

// Encode serializes a result's diagram as indented JSON.
func Encode(res *Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := diagram.Write(&buf, res.Diagram); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
