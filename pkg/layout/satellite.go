package layout

import "github.com/matzehuels/erdlayout/pkg/diagram"

// placeSatellites places the attributes of every positioned entity and
// relationship, entities first. Attributes already placed by an earlier
// owner are skipped, so an attribute claimed twice stays with its first
// owner.
func placeSatellites(c *Classification, pm *positionMap) {
	for _, id := range c.Entities {
		placeAttributeGrid(pm, id, c.EntityAttributes[id])
	}
	for _, id := range c.Relationships {
		if _, ok := pm.get(id); ok {
			placeAttributeGrid(pm, id, c.RelationshipAttributes[id])
		}
	}
}

// placeAttributeGrid lays out attrs beneath owner in rows of at most
// ColumnCap. The grid is centered on the owner's horizontal center and its
// first row starts AttributeOffsetY below the owner's footprint. It returns
// the number of attributes placed.
func placeAttributeGrid(pm *positionMap, owner string, attrs []string) int {
	origin, ok := pm.get(owner)
	if !ok {
		return 0
	}
	pending := make([]string, 0, len(attrs))
	for _, id := range attrs {
		if _, placed := pm.get(id); !placed {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return 0
	}

	cols := min(len(pending), ColumnCap)
	gridWidth := float64(cols-1)*AttributeSpacingX + AttributeWidth
	ctr, _ := pm.center(owner)
	startX := ctr.X - gridWidth/2
	startY := origin.Y + pm.size[owner].Height + AttributeOffsetY

	for i, id := range pending {
		row, col := i/ColumnCap, i%ColumnCap
		pm.place(id, diagram.RoleAttribute, diagram.Position{
			X: startX + float64(col)*AttributeSpacingX,
			Y: startY + float64(row)*AttributeRowSpacing,
		})
	}
	return len(pending)
}
