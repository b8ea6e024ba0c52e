package layout

import "github.com/matzehuels/erdlayout/pkg/diagram"

// assignRanks ranks every entity by breadth-first distance from the first
// entity. Two entities are adjacent when some relationship connects both.
// Entities the traversal never reaches get rank 0.
func assignRanks(c *Classification) map[string]int {
	ranks := make(map[string]int, len(c.Entities))
	if len(c.Entities) == 0 {
		return ranks
	}

	adj := make(map[string]*idSet, len(c.Entities))
	for _, rel := range c.Relationships {
		members := c.RelationshipEntities[rel]
		for _, a := range members {
			for _, b := range members {
				if a == b {
					continue
				}
				if adj[a] == nil {
					adj[a] = newIDSet()
				}
				adj[a].add(b)
			}
		}
	}

	seed := c.Entities[0]
	ranks[seed] = 0
	queue := []string{seed}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		if adj[curr] == nil {
			continue
		}
		for _, next := range adj[curr].ids() {
			if _, seen := ranks[next]; seen {
				continue
			}
			ranks[next] = ranks[curr] + 1
			queue = append(queue, next)
		}
	}

	for _, id := range c.Entities {
		if _, ok := ranks[id]; !ok {
			ranks[id] = 0
		}
	}
	return ranks
}

// bands groups entities by rank. Band i holds the rank-i entities in input
// order.
func bands(c *Classification, ranks map[string]int) [][]string {
	var out [][]string
	for _, id := range c.Entities {
		r := ranks[id]
		for len(out) <= r {
			out = append(out, nil)
		}
		out[r] = append(out[r], id)
	}
	return out
}

// gridDepth returns the vertical room an attribute grid of k attributes
// takes below its owner, including AttributeOffsetY.
func gridDepth(k int) float64 {
	if k == 0 {
		return 0
	}
	rows := (k + ColumnCap - 1) / ColumnCap
	return AttributeOffsetY + float64(rows-1)*AttributeRowSpacing + AttributeHeight
}

// rankOffsets returns the top y of every band plus one entry past the last.
//
// A relationship between ranks r and r+1 is centered halfway between them,
// and a unary relationship on rank r sits at the same height. The step from
// r to r+1 is therefore chosen so that the deepest attribute grid below a
// rank-r entity ends above that relationship, and the deepest grid below
// the relationship ends above rank r+1. It never drops below RankSpacingY.
func rankOffsets(c *Classification, grid [][]string) []float64 {
	rank := make(map[string]int, len(c.Entities))
	for r, band := range grid {
		for _, id := range band {
			rank[id] = r
		}
	}

	depth := make([]float64, len(grid))
	for r, band := range grid {
		for _, id := range band {
			depth[r] = max(depth[r], gridDepth(len(c.EntityAttributes[id])))
		}
	}
	for _, rel := range c.Relationships {
		members := c.RelationshipEntities[rel]
		if len(members) == 0 {
			continue
		}
		r := rank[members[0]]
		for _, id := range members[1:] {
			r = min(r, rank[id])
		}
		depth[r] = max(depth[r], gridDepth(len(c.RelationshipAttributes[rel])))
	}

	ys := make([]float64, len(grid)+1)
	for r := range grid {
		half := (EntityHeight+RelationshipHeight)/2 + depth[r] + RankClearance
		ys[r+1] = ys[r] + max(RankSpacingY, 2*half)
	}
	return ys
}

// placeSkeleton positions entities on the rank grid and centers every
// connected relationship between its entities.
//
// Entity i of rank r sits at (i*EntitySpacingX + jitter, y(r)), where jitter
// is RankJitterX on odd ranks and y(r) comes from rankOffsets.
//
// A relationship's footprint is centered on the centroid of its entities'
// centers. With exactly two entities this puts it halfway between their
// vertical midpoints. A relationship with a single entity is pushed half a
// rank step below it so it does not cover the entity.
func placeSkeleton(c *Classification, pm *positionMap, grid [][]string) {
	ys := rankOffsets(c, grid)
	step := make(map[string]float64, len(c.Entities))
	for rank, band := range grid {
		jitter := 0.0
		if rank%2 == 1 {
			jitter = RankJitterX
		}
		for i, id := range band {
			pm.place(id, diagram.RoleEntity, diagram.Position{
				X: float64(i)*EntitySpacingX + jitter,
				Y: ys[rank],
			})
			step[id] = ys[rank+1] - ys[rank]
		}
	}

	for _, rel := range c.Relationships {
		members := c.RelationshipEntities[rel]
		if len(members) == 0 {
			continue
		}
		var sumX, sumY float64
		for _, id := range members {
			ctr, _ := pm.center(id)
			sumX += ctr.X
			sumY += ctr.Y
		}
		n := float64(len(members))
		cx, cy := sumX/n, sumY/n
		if len(members) == 1 {
			cy += step[members[0]] / 2
		}
		pm.place(rel, diagram.RoleRelationship, diagram.Position{
			X: cx - RelationshipWidth/2,
			Y: cy - RelationshipHeight/2,
		})
	}
}
