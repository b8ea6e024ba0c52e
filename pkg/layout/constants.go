package layout

import "github.com/matzehuels/erdlayout/pkg/diagram"

// Node footprints in canvas units.
const (
	EntityWidth        = 150.0
	EntityHeight       = 60.0
	RelationshipWidth  = 120.0
	RelationshipHeight = 80.0
	AttributeWidth     = 110.0
	AttributeHeight    = 40.0
	IsaWidth           = 60.0
	IsaHeight          = 60.0
)

// Skeleton grid.
const (
	EntitySpacingX = 420.0

	// RankSpacingY is the minimum distance between consecutive ranks. A
	// rank step grows when the attribute grids hanging between two ranks
	// need more room, see rankOffsets.
	RankSpacingY = 400.0

	// RankClearance is the minimum gap between an attribute grid and the
	// skeleton node below it.
	RankClearance = 20.0

	// RankJitterX shifts odd ranks to the right so edges between adjacent
	// ranks are less likely to run straight through a node.
	RankJitterX = 40.0
)

// Satellite grid.
const (
	ColumnCap           = 3
	AttributeSpacingX   = 130.0
	AttributeRowSpacing = 60.0
	AttributeOffsetY    = 50.0
)

// Inheritance markers.
const (
	IsaGapX = 40.0
	IsaGapY = 20.0
)

// Staging grids.
const (
	StagingMargin = 200.0

	RelationshipGridColumns  = 2
	RelationshipGridSpacingX = 420.0
	RelationshipGridSpacingY = 400.0

	OrphanGridColumns  = 6
	OrphanGridSpacingX = 140.0
	OrphanGridSpacingY = 60.0
)

// Size is a node footprint.
type Size struct {
	Width, Height float64
}

// Footprint returns the size the engine assumes for a node of the given
// role. Unknown roles have a zero footprint.
func Footprint(r diagram.Role) Size {
	switch r {
	case diagram.RoleEntity:
		return Size{EntityWidth, EntityHeight}
	case diagram.RoleRelationship:
		return Size{RelationshipWidth, RelationshipHeight}
	case diagram.RoleAttribute:
		return Size{AttributeWidth, AttributeHeight}
	case diagram.RoleIsa:
		return Size{IsaWidth, IsaHeight}
	default:
		return Size{}
	}
}
