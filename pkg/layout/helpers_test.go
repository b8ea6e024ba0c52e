package layout

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

func entity(id string, attrs ...string) diagram.Node {
	return diagram.Node{ID: id, Role: diagram.RoleEntity, OwnedAttributeIDs: attrs}
}

func relationship(id string, entities ...string) diagram.Node {
	return diagram.Node{ID: id, Role: diagram.RoleRelationship, ConnectedEntityIDs: entities}
}

func attribute(id string) diagram.Node {
	return diagram.Node{ID: id, Role: diagram.RoleAttribute}
}

func isa(id string) diagram.Node {
	return diagram.Node{ID: id, Role: diagram.RoleIsa}
}

func edge(source, target string, kind diagram.EdgeKind) diagram.Edge {
	return diagram.Edge{ID: source + "-" + target, Source: source, Target: target, Kind: kind}
}

func withAttributes(n diagram.Node, attrs ...string) diagram.Node {
	n.OwnedAttributeIDs = attrs
	return n
}

func attributes(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return ids
}

// overlaps lists every pair of placed nodes whose footprints intersect.
func overlaps(r *Result) []string {
	ids := slices.Sorted(maps.Keys(r.Positions))
	var out []string
	for i, a := range ids {
		ba, _ := r.Bounds(a)
		for _, b := range ids[i+1:] {
			if bb, _ := r.Bounds(b); ba.Intersects(bb) {
				out = append(out, fmt.Sprintf("%s %+v overlaps %s %+v", a, ba, b, bb))
			}
		}
	}
	return out
}
