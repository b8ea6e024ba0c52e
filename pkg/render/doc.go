// Package render draws laid-out diagrams for visual inspection.
//
// # Overview
//
// The editor that consumes erdlayout output has its own node widgets; this
// package exists so that a layout can be checked without it. [ToDOT]
// converts a diagram into Graphviz DOT with every node pinned to the
// position the layout engine assigned, and [RenderSVG] runs Graphviz on it.
//
//	dot := render.ToDOT(d, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Coordinates
//
// Diagram positions are top-left corners in canvas units with y growing
// downwards. Graphviz positions are node centers in points with y growing
// upwards. [ToDOT] converts between the two using the footprints from
// [layout.Footprint] and sets inputscale=72 so one canvas unit is one point.
// Rendering uses the neato engine, which honors pinned positions.
//
// # Shapes
//
// Each role has a conventional ER shape:
//   - Entity: box
//   - Relationship: diamond
//   - Attribute: ellipse
//   - Isa: inverted triangle
//   - Unknown: note
//
// Attribute links are drawn dashed; other edges are solid.
//
// [layout.Footprint]: github.com/matzehuels/erdlayout/pkg/layout.Footprint
package render
