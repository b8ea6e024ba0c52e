package layout

import "github.com/matzehuels/erdlayout/pkg/diagram"

// placeIsas puts each ISA marker to the right of the first entity it shares
// an edge with, vertically centered on it. Markers of the same parent fill
// the gap before the next entity slot left to right, then continue in rows
// further down, skipping any cell already covered by a placed node. It
// returns the markers that have no parent entity.
func placeIsas(c *Classification, pm *positionMap) []string {
	var orphans []string
	for _, id := range c.Isas {
		parent := ""
		for _, other := range c.Neighbors(id) {
			if c.Role(other) == diagram.RoleEntity {
				parent = other
				break
			}
		}
		origin, ok := pm.get(parent)
		if parent == "" || !ok {
			orphans = append(orphans, id)
			continue
		}
		pm.place(id, diagram.RoleIsa, isaSlot(pm, origin))
	}
	return orphans
}

// isaColumns is the number of markers that fit between an entity and its
// right-hand neighbor in the same rank.
func isaColumns() int {
	gap := EntitySpacingX - EntityWidth - IsaGapX
	return max(1, int(gap/(IsaWidth+IsaGapX)))
}

// isaSlot returns the first free marker cell next to an entity at origin.
// The scan is row-major, so it always terminates below the lowest placed
// node at the latest.
func isaSlot(pm *positionMap, origin diagram.Position) diagram.Position {
	cols := isaColumns()
	x0 := origin.X + EntityWidth + IsaGapX
	y0 := origin.Y + EntityHeight/2 - IsaHeight/2
	for i := 0; ; i++ {
		row, col := i/cols, i%cols
		p := diagram.Position{
			X: x0 + float64(col)*(IsaWidth+IsaGapX),
			Y: y0 + float64(row)*(IsaHeight+IsaGapY),
		}
		if pm.free(footprint(diagram.RoleIsa, p)) {
			return p
		}
	}
}

// stageRelationships moves relationships without entities into a grid to
// the right of everything placed so far, then places their attributes
// beneath them. It returns the staged relationship ids.
func stageRelationships(c *Classification, pm *positionMap) []string {
	var staged []string
	for _, id := range c.Relationships {
		if _, ok := pm.get(id); !ok {
			staged = append(staged, id)
		}
	}
	if len(staged) == 0 {
		return nil
	}

	var x0, y0 float64
	if b, ok := pm.bounds(); ok {
		x0, y0 = b.MaxX+StagingMargin, b.MinY
	}
	for i, id := range staged {
		row, col := i/RelationshipGridColumns, i%RelationshipGridColumns
		pm.place(id, diagram.RoleRelationship, diagram.Position{
			X: x0 + float64(col)*RelationshipGridSpacingX,
			Y: y0 + float64(row)*RelationshipGridSpacingY,
		})
	}
	for _, id := range staged {
		placeAttributeGrid(pm, id, c.RelationshipAttributes[id])
	}
	return staged
}

// stageOrphans places every still-unpositioned attribute, followed by the
// given ISA markers, into a grid below everything placed so far. It returns
// the staged ids.
func stageOrphans(c *Classification, pm *positionMap, isas []string) []string {
	var staged []string
	for _, id := range c.Attributes {
		if _, ok := pm.get(id); !ok {
			staged = append(staged, id)
		}
	}
	staged = append(staged, isas...)
	if len(staged) == 0 {
		return nil
	}

	var x0, y0 float64
	if b, ok := pm.bounds(); ok {
		x0, y0 = b.MinX, b.MaxY+StagingMargin
	}
	for i, id := range staged {
		row, col := i/OrphanGridColumns, i%OrphanGridColumns
		pm.place(id, c.Role(id), diagram.Position{
			X: x0 + float64(col)*OrphanGridSpacingX,
			Y: y0 + float64(row)*OrphanGridSpacingY,
		})
	}
	return staged
}
