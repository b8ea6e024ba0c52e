package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

// Result holds the outcome of one layout pass.
type Result struct {
	// Positions maps every placed node id to its new top-left corner.
	Positions map[string]diagram.Position

	// Ranks maps every entity to its breadth-first rank.
	Ranks map[string]int

	// Bands lists entity ids per rank, left to right.
	Bands [][]string

	// Staged lists nodes moved into a staging grid: disconnected
	// relationships first, then orphan attributes and ISA markers.
	Staged []string

	// Unplaced lists nodes the engine could not classify. They keep their
	// input position.
	Unplaced []string

	// Classification is the role partition the pass was based on.
	Classification *Classification
}

// Compute runs a full layout pass over nodes and edges without modifying
// either.
//
// Phases run in a fixed order against one position map: skeleton,
// satellites, ISA markers, staged relationships (with their attributes),
// then orphans. Each phase only adds entries.
func Compute(nodes []diagram.Node, edges []diagram.Edge) *Result {
	c := Classify(nodes, edges)
	pm := newPositionMap(len(nodes))

	ranks := assignRanks(c)
	grid := bands(c, ranks)
	placeSkeleton(c, pm, grid)
	placeSatellites(c, pm)

	orphanIsas := placeIsas(c, pm)
	staged := stageRelationships(c, pm)
	staged = append(staged, stageOrphans(c, pm, orphanIsas)...)

	return &Result{
		Positions:      pm.pos,
		Ranks:          ranks,
		Bands:          grid,
		Staged:         staged,
		Unplaced:       c.Unknown,
		Classification: c,
	}
}

// Apply returns a copy of nodes with each position replaced by its entry in
// r.Positions. Nodes without an entry keep their position. No other field
// changes.
func (r *Result) Apply(nodes []diagram.Node) []diagram.Node {
	out := make([]diagram.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
		if p, ok := r.Positions[n.ID]; ok {
			out[i].Position = p
		}
	}
	return out
}

// Bounds returns the bounding box of the footprints of the given ids.
// Ids without a position are skipped; ok is false if none had one.
func (r *Result) Bounds(ids ...string) (b Bounds, ok bool) {
	pm := newPositionMap(len(ids))
	for _, id := range ids {
		if p, found := r.Positions[id]; found {
			pm.place(id, r.Classification.Role(id), p)
		}
	}
	return pm.bounds()
}

// Extent returns the bounding box of every placed node.
func (r *Result) Extent() (Bounds, bool) {
	return r.Bounds(slices.Sorted(maps.Keys(r.Positions))...)
}

// Arrange computes a layout and returns a copy of nodes carrying the new
// positions.
func Arrange(nodes []diagram.Node, edges []diagram.Edge) []diagram.Node {
	return Compute(nodes, edges).Apply(nodes)
}
