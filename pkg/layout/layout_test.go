package layout

import (
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

func pos(x, y float64) diagram.Position { return diagram.Position{X: x, Y: y} }

func binaryDiagram() ([]diagram.Node, []diagram.Edge) {
	return []diagram.Node{
		entity("e1"),
		entity("e2"),
		relationship("r", "e1", "e2"),
	}, nil
}

func TestCompute_BinaryRelationship(t *testing.T) {
	nodes, edges := binaryDiagram()
	r := Compute(nodes, edges)

	if r.Ranks["e1"] != 0 || r.Ranks["e2"] != 1 {
		t.Errorf("Ranks = %v, want e1:0 e2:1", r.Ranks)
	}

	want := map[string]diagram.Position{
		"e1": pos(0, 0),
		"e2": pos(RankJitterX, RankSpacingY),
		"r":  pos(35, 190),
	}
	for id, p := range want {
		if got := r.Positions[id]; got != p {
			t.Errorf("Positions[%s] = %+v, want %+v", id, got, p)
		}
	}

	mid1 := r.Positions["e1"].Y + EntityHeight/2
	mid2 := r.Positions["e2"].Y + EntityHeight/2
	relMid := r.Positions["r"].Y + RelationshipHeight/2
	if relMid != (mid1+mid2)/2 {
		t.Errorf("relationship midpoint = %v, want %v", relMid, (mid1+mid2)/2)
	}
}

func TestCompute_UnaryRelationshipBelowEntity(t *testing.T) {
	nodes := []diagram.Node{entity("e1"), relationship("r", "e1", "e1")}
	r := Compute(nodes, nil)

	if got, want := r.Positions["r"], pos(15, 190); got != want {
		t.Errorf("Positions[r] = %+v, want %+v", got, want)
	}
}

func TestCompute_NaryRelationshipCentroid(t *testing.T) {
	nodes := []diagram.Node{
		entity("e1"),
		entity("e2"),
		entity("e3"),
		relationship("r", "e1", "e2", "e3"),
	}
	r := Compute(nodes, nil)

	// e1 rank 0; e2, e3 rank 1 at x=40 and x=460.
	if !reflect.DeepEqual(r.Bands, [][]string{{"e1"}, {"e2", "e3"}}) {
		t.Fatalf("Bands = %v", r.Bands)
	}
	var sumX, sumY float64
	for _, id := range []string{"e1", "e2", "e3"} {
		sumX += r.Positions[id].X + EntityWidth/2
		sumY += r.Positions[id].Y + EntityHeight/2
	}
	rel := r.Positions["r"]
	if cx := rel.X + RelationshipWidth/2; math.Abs(cx-sumX/3) > 1e-9 {
		t.Errorf("relationship center x = %v, want %v", cx, sumX/3)
	}
	if cy := rel.Y + RelationshipHeight/2; math.Abs(cy-sumY/3) > 1e-9 {
		t.Errorf("relationship center y = %v, want %v", cy, sumY/3)
	}
}

func TestCompute_AttributesBeneathEntity(t *testing.T) {
	nodes := []diagram.Node{entity("e1", "id", "name"), attribute("id"), attribute("name")}
	r := Compute(nodes, nil)

	id, name := r.Positions["id"], r.Positions["name"]
	if id != pos(-45, 110) || name != pos(85, 110) {
		t.Errorf("id = %+v, name = %+v, want (-45,110), (85,110)", id, name)
	}
	if id.X >= name.X {
		t.Errorf("id.X = %v not left of name.X = %v", id.X, name.X)
	}
}

func TestCompute_EdgeOrderBeforeListOrder(t *testing.T) {
	nodes := []diagram.Node{entity("e1", "name"), attribute("name"), attribute("id")}
	edges := []diagram.Edge{edge("e1", "id", diagram.EdgeAttribute)}
	r := Compute(nodes, edges)

	if r.Positions["id"].X >= r.Positions["name"].X {
		t.Errorf("edge-derived id at %v, want left of name at %v", r.Positions["id"], r.Positions["name"])
	}
}

func TestCompute_ThreeAttributesSingleCenteredRow(t *testing.T) {
	nodes := []diagram.Node{
		entity("e0"),
		entity("e1", "a1", "a2", "a3"),
		relationship("r", "e0", "e1"),
		attribute("a1"),
		attribute("a2"),
		attribute("a3"),
	}
	r := Compute(nodes, nil)

	owner := r.Positions["e1"]
	ownerCenter := owner.X + EntityWidth/2
	var sum float64
	for _, id := range []string{"a1", "a2", "a3"} {
		p := r.Positions[id]
		if p.Y != owner.Y+EntityHeight+AttributeOffsetY {
			t.Errorf("%s.Y = %v, want %v", id, p.Y, owner.Y+EntityHeight+AttributeOffsetY)
		}
		sum += p.X + AttributeWidth/2
	}
	if sum/3 != ownerCenter {
		t.Errorf("row center = %v, want %v", sum/3, ownerCenter)
	}
}

func TestCompute_AttributeGridWraps(t *testing.T) {
	nodes := []diagram.Node{entity("e1", "a1", "a2", "a3", "a4")}
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		nodes = append(nodes, attribute(id))
	}
	r := Compute(nodes, nil)

	if got, want := r.Positions["a1"], pos(-110, 110); got != want {
		t.Errorf("a1 = %+v, want %+v", got, want)
	}
	if got, want := r.Positions["a4"], pos(-110, 170); got != want {
		t.Errorf("a4 = %+v, want %+v", got, want)
	}
}

func TestCompute_SharedAttributeFirstOwnerWins(t *testing.T) {
	nodes := []diagram.Node{entity("e1", "a1"), entity("e2", "a1"), attribute("a1")}
	r := Compute(nodes, nil)

	if got, want := r.Positions["a1"], pos(20, 110); got != want {
		t.Errorf("a1 = %+v, want %+v", got, want)
	}
}

func TestCompute_DisconnectedRelationshipRightOfSkeleton(t *testing.T) {
	nodes, edges := binaryDiagram()
	nodes = append(nodes, relationship("r2"), attribute("ra"))
	nodes[len(nodes)-2].OwnedAttributeIDs = []string{"ra"}
	r := Compute(nodes, edges)

	skeleton, _ := r.Bounds("e1", "e2", "r")
	r2 := r.Positions["r2"]
	if r2.X <= skeleton.MaxX {
		t.Errorf("r2.X = %v, want > %v", r2.X, skeleton.MaxX)
	}
	if got, want := r2, pos(skeleton.MaxX+StagingMargin, 0); got != want {
		t.Errorf("r2 = %+v, want %+v", got, want)
	}
	if ra := r.Positions["ra"]; ra.Y <= r2.Y {
		t.Errorf("ra.Y = %v, want beneath r2.Y = %v", ra.Y, r2.Y)
	}
	if !slices.Contains(r.Staged, "r2") {
		t.Errorf("Staged = %v, want r2", r.Staged)
	}
}

func TestCompute_OrphanAttributeBelowSkeleton(t *testing.T) {
	nodes, edges := binaryDiagram()
	nodes = append(nodes, attribute("loose"))
	r := Compute(nodes, edges)

	skeleton, _ := r.Bounds("e1", "e2", "r")
	loose := r.Positions["loose"]
	if loose.Y <= skeleton.MaxY {
		t.Errorf("loose.Y = %v, want > %v", loose.Y, skeleton.MaxY)
	}
	if got, want := loose, pos(0, skeleton.MaxY+StagingMargin); got != want {
		t.Errorf("loose = %+v, want %+v", got, want)
	}
}

func TestCompute_OrphanGridRowMajor(t *testing.T) {
	var nodes []diagram.Node
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		nodes = append(nodes, attribute(id))
	}
	nodes = append(nodes, isa("i"))
	r := Compute(nodes, nil)

	if got := r.Positions["a"]; got != pos(0, 0) {
		t.Errorf("a = %+v, want origin", got)
	}
	if got, want := r.Positions["f"], pos(5*OrphanGridSpacingX, 0); got != want {
		t.Errorf("f = %+v, want %+v", got, want)
	}
	if got, want := r.Positions["g"], pos(0, OrphanGridSpacingY); got != want {
		t.Errorf("g = %+v, want %+v", got, want)
	}
	if got, want := r.Positions["i"], pos(OrphanGridSpacingX, OrphanGridSpacingY); got != want {
		t.Errorf("i = %+v, want %+v", got, want)
	}
	want := []string{"a", "b", "c", "d", "e", "f", "g", "i"}
	if !slices.Equal(r.Staged, want) {
		t.Errorf("Staged = %v, want %v", r.Staged, want)
	}
}

func TestCompute_OnlyDisconnectedRelationship(t *testing.T) {
	nodes := []diagram.Node{
		{ID: "r", Role: diagram.RoleRelationship, OwnedAttributeIDs: []string{"a1"}},
		attribute("a1"),
		attribute("a2"),
	}
	r := Compute(nodes, nil)

	want := map[string]diagram.Position{
		"r":  pos(0, 0),
		"a1": pos(5, 130),
		"a2": pos(0, 370),
	}
	for id, p := range want {
		if got := r.Positions[id]; got != p {
			t.Errorf("Positions[%s] = %+v, want %+v", id, got, p)
		}
	}
}

func TestCompute_IsaRightOfParent(t *testing.T) {
	nodes := []diagram.Node{entity("e1"), isa("i1"), isa("i2"), isa("lonely")}
	edges := []diagram.Edge{
		edge("i1", "e1", diagram.EdgeGeneric),
		edge("e1", "i2", diagram.EdgeGeneric),
	}
	r := Compute(nodes, edges)

	if got, want := r.Positions["i1"], pos(190, 0); got != want {
		t.Errorf("i1 = %+v, want %+v", got, want)
	}
	if got, want := r.Positions["i2"], pos(290, 0); got != want {
		t.Errorf("i2 = %+v, want %+v", got, want)
	}
	lonely := r.Positions["lonely"]
	if lonely.Y <= EntityHeight {
		t.Errorf("lonely = %+v, want staged below skeleton", lonely)
	}
	if !slices.Equal(r.Staged, []string{"lonely"}) {
		t.Errorf("Staged = %v, want [lonely]", r.Staged)
	}
}

func TestCompute_DisconnectedComponentsCollapseOntoRankZero(t *testing.T) {
	nodes := []diagram.Node{
		entity("e1"),
		entity("e2"),
		entity("e3"),
		relationship("r", "e2", "e3"),
	}
	r := Compute(nodes, nil)

	for _, id := range []string{"e1", "e2", "e3"} {
		if r.Ranks[id] != 0 {
			t.Errorf("Ranks[%s] = %d, want 0", id, r.Ranks[id])
		}
	}
	if !reflect.DeepEqual(r.Bands, [][]string{{"e1", "e2", "e3"}}) {
		t.Errorf("Bands = %v", r.Bands)
	}
}

func TestCompute_SeedIsFirstEntity(t *testing.T) {
	nodes := []diagram.Node{entity("e2"), entity("e1"), relationship("r", "e1", "e2")}
	r := Compute(nodes, nil)

	if r.Ranks["e2"] != 0 || r.Ranks["e1"] != 1 {
		t.Errorf("Ranks = %v, want e2:0 e1:1", r.Ranks)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	nodes, edges := richDiagram()
	first := Compute(nodes, edges)
	for range 5 {
		again := Compute(nodes, edges)
		if !reflect.DeepEqual(first.Positions, again.Positions) {
			t.Fatal("positions differ between runs")
		}
		if !slices.Equal(first.Staged, again.Staged) {
			t.Fatal("staged order differs between runs")
		}
	}
}

func TestArrange_RerunKeepsRankStructure(t *testing.T) {
	nodes, edges := richDiagram()
	first := Compute(nodes, edges)
	second := Compute(first.Apply(nodes), edges)

	if !reflect.DeepEqual(first.Ranks, second.Ranks) {
		t.Errorf("Ranks changed: %v -> %v", first.Ranks, second.Ranks)
	}
	if !reflect.DeepEqual(first.Bands, second.Bands) {
		t.Errorf("Bands changed: %v -> %v", first.Bands, second.Bands)
	}
}

func TestArrange_Totality(t *testing.T) {
	nodes, edges := richDiagram()
	edges = append(edges, edge("ghost", "e1", diagram.EdgeRelationship))
	out := Arrange(nodes, edges)

	if len(out) != len(nodes) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(nodes))
	}
	r := Compute(nodes, edges)
	for _, n := range nodes {
		if !n.Role.Known() {
			continue
		}
		p, ok := r.Positions[n.ID]
		if !ok {
			t.Errorf("%s has no position", n.ID)
			continue
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("%s position %+v not finite", n.ID, p)
		}
	}
}

func TestArrange_OnlyPositionChanges(t *testing.T) {
	nodes, edges := richDiagram()
	nodes = append(nodes, diagram.Node{ID: "note", Position: pos(7, 9)})
	before := make([]diagram.Node, len(nodes))
	for i, n := range nodes {
		before[i] = n.Clone()
	}

	out := Arrange(nodes, edges)

	if !reflect.DeepEqual(nodes, before) {
		t.Error("input nodes were modified")
	}
	for i := range out {
		got, want := out[i], before[i]
		got.Position, want.Position = diagram.Position{}, diagram.Position{}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("node %s changed beyond position", before[i].ID)
		}
	}
	if last := out[len(out)-1]; last.Position != pos(7, 9) {
		t.Errorf("unknown node moved to %+v", last.Position)
	}
	if r := Compute(nodes, edges); !slices.Equal(r.Unplaced, []string{"note"}) {
		t.Errorf("Unplaced = %v, want [note]", r.Unplaced)
	}
}

func TestArrange_Empty(t *testing.T) {
	if out := Arrange(nil, nil); len(out) != 0 {
		t.Errorf("Arrange(nil, nil) = %v, want empty", out)
	}
	if _, ok := Compute(nil, nil).Extent(); ok {
		t.Error("Extent() ok = true for empty layout")
	}
}

func TestCompute_NoOverlapWithinRank(t *testing.T) {
	nodes := []diagram.Node{entity("hub")}
	var edges []diagram.Edge
	owners := []string{"s1", "s2", "s3", "s4"}
	for _, o := range owners {
		var attrs []string
		for _, suffix := range []string{"_id", "_name", "_created"} {
			attrs = append(attrs, o+suffix)
		}
		nodes = append(nodes, entity(o, attrs...))
		for _, a := range attrs {
			nodes = append(nodes, attribute(a))
		}
		nodes = append(nodes, relationship("r_"+o))
		edges = append(edges,
			edge("r_"+o, "hub", diagram.EdgeRelationship),
			edge("r_"+o, o, diagram.EdgeRelationship),
		)
	}
	r := Compute(nodes, edges)

	if !slices.Equal(r.Bands[1], owners) {
		t.Fatalf("Bands[1] = %v, want %v", r.Bands[1], owners)
	}

	seen := make(map[diagram.Position]string)
	for _, o := range owners {
		p := r.Positions[o]
		if prev, dup := seen[p]; dup {
			t.Errorf("%s and %s share position %+v", o, prev, p)
		}
		seen[p] = o
	}

	grids := make([]Bounds, len(owners))
	for i, o := range owners {
		grids[i], _ = r.Bounds(r.Classification.EntityAttributes[o]...)
	}
	for i := range grids {
		for j := i + 1; j < len(grids); j++ {
			if grids[i].Intersects(grids[j]) {
				t.Errorf("attribute grids of %s and %s overlap", owners[i], owners[j])
			}
		}
	}
}

func TestCompute_AttributeGridsClearSkeleton(t *testing.T) {
	withNodes := func(nodes []diagram.Node, groups ...[]string) []diagram.Node {
		for _, g := range groups {
			for _, id := range g {
				nodes = append(nodes, attribute(id))
			}
		}
		return nodes
	}
	a, b := attributes("a", 5), attributes("b", 7)
	ra, ua := attributes("ra", 4), attributes("ua", 2)

	tests := []struct {
		name   string
		nodes  []diagram.Node
		binary string
	}{
		{
			name: "two rows above binary relationship",
			nodes: withNodes([]diagram.Node{
				entity("e1", a...),
				entity("e2"),
				relationship("r", "e1", "e2"),
			}, a),
			binary: "r",
		},
		{
			name: "relationship and unary grids",
			nodes: withNodes([]diagram.Node{
				entity("e1", a...),
				entity("e2", b...),
				withAttributes(relationship("r", "e1", "e2"), ra...),
				withAttributes(relationship("u", "e2"), ua...),
			}, a, b, ra, ua),
			binary: "r",
		},
		{
			name: "unary below deep grid",
			nodes: withNodes([]diagram.Node{
				entity("e1", attributes("a", 6)...),
				relationship("u", "e1"),
			}, attributes("a", 6)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compute(tt.nodes, nil)
			for _, o := range overlaps(r) {
				t.Error(o)
			}
			if tt.binary == "" {
				return
			}
			members := r.Classification.RelationshipEntities[tt.binary]
			mid1 := r.Positions[members[0]].Y + EntityHeight/2
			mid2 := r.Positions[members[1]].Y + EntityHeight/2
			if got := r.Positions[tt.binary].Y + RelationshipHeight/2; got != (mid1+mid2)/2 {
				t.Errorf("%s midpoint = %v, want %v", tt.binary, got, (mid1+mid2)/2)
			}
		})
	}
}

func TestCompute_RankStepGrowsWithAttributeRows(t *testing.T) {
	a := attributes("a", 5)
	nodes := []diagram.Node{entity("e1", a...), entity("e2"), relationship("r", "e1", "e2")}
	for _, id := range a {
		nodes = append(nodes, attribute(id))
	}
	r := Compute(nodes, nil)

	if got, want := r.Positions["e2"], pos(RankJitterX, 480); got != want {
		t.Errorf("e2 = %+v, want %+v", got, want)
	}
	if got, want := r.Positions["r"], pos(35, 230); got != want {
		t.Errorf("r = %+v, want %+v", got, want)
	}
}

func TestCompute_IsaMarkersWrapBeforeNeighbor(t *testing.T) {
	isas := []string{"i1", "i2", "i3", "i4"}
	tests := []struct {
		name  string
		attrs []string
	}{
		{name: "bare parent"},
		{name: "parent with attribute row", attrs: []string{"a1", "a2", "a3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := []diagram.Node{entity("e1", tt.attrs...), entity("e2")}
			for _, id := range tt.attrs {
				nodes = append(nodes, attribute(id))
			}
			var edges []diagram.Edge
			for _, id := range isas {
				nodes = append(nodes, isa(id))
				edges = append(edges, edge(id, "e1", diagram.EdgeGeneric))
			}
			r := Compute(nodes, edges)

			for _, o := range overlaps(r) {
				t.Error(o)
			}
			neighbor := r.Positions["e2"].X
			for _, id := range isas {
				b, ok := r.Bounds(id)
				if !ok {
					t.Fatalf("%s has no position", id)
				}
				if b.MaxX > neighbor {
					t.Errorf("%s reaches x=%v past neighbor at %v", id, b.MaxX, neighbor)
				}
			}
			if len(r.Staged) != 0 {
				t.Errorf("Staged = %v, want none", r.Staged)
			}
		})
	}

	r := Compute([]diagram.Node{entity("e1"), entity("e2"), isa("i1"), isa("i2"), isa("i3")},
		[]diagram.Edge{edge("i1", "e1", diagram.EdgeGeneric), edge("i2", "e1", diagram.EdgeGeneric), edge("i3", "e1", diagram.EdgeGeneric)})
	if got, want := r.Positions["i3"], pos(190, IsaHeight+IsaGapY); got != want {
		t.Errorf("i3 = %+v, want %+v", got, want)
	}
}

// richDiagram mixes every role and every ownership source.
func richDiagram() ([]diagram.Node, []diagram.Edge) {
	nodes := []diagram.Node{
		entity("user", "user_id"),
		entity("order", "order_id", "order_total"),
		entity("product"),
		entity("archive"),
		relationship("places", "user", "order"),
		relationship("contains"),
		relationship("floating"),
		attribute("user_id"),
		attribute("user_email"),
		attribute("order_id"),
		attribute("order_total"),
		attribute("qty"),
		attribute("loose"),
		isa("admin"),
		isa("orphan_isa"),
		{ID: "places_since", Role: diagram.RoleAttribute},
	}
	edges := []diagram.Edge{
		edge("user", "user_email", diagram.EdgeAttribute),
		edge("contains", "order", diagram.EdgeRelationship),
		edge("product", "contains", diagram.EdgeRelationship),
		edge("contains", "qty", diagram.EdgeAttribute),
		edge("places", "places_since", diagram.EdgeAttribute),
		edge("admin", "user", diagram.EdgeGeneric),
		edge("floating", "missing", diagram.EdgeRelationship),
	}
	return nodes, edges
}
