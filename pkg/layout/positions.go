package layout

import (
	"math"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

// positionMap accumulates node positions across phases. Entries are never
// overwritten.
type positionMap struct {
	pos  map[string]diagram.Position
	size map[string]Size
}

func newPositionMap(capacity int) *positionMap {
	return &positionMap{
		pos:  make(map[string]diagram.Position, capacity),
		size: make(map[string]Size, capacity),
	}
}

// place records p for id and reports whether it did. It does nothing if id
// already has a position.
func (m *positionMap) place(id string, role diagram.Role, p diagram.Position) bool {
	if _, ok := m.pos[id]; ok {
		return false
	}
	m.pos[id] = p
	m.size[id] = Footprint(role)
	return true
}

func (m *positionMap) get(id string) (diagram.Position, bool) {
	p, ok := m.pos[id]
	return p, ok
}

// center returns the center of id's footprint.
func (m *positionMap) center(id string) (diagram.Position, bool) {
	p, ok := m.pos[id]
	if !ok {
		return diagram.Position{}, false
	}
	s := m.size[id]
	return p.Add(s.Width/2, s.Height/2), true
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of b.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of b.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Intersects reports whether b and o overlap with positive area.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX < o.MaxX && o.MinX < b.MaxX && b.MinY < o.MaxY && o.MinY < b.MaxY
}

// footprint returns the box p covers for a node of role r.
func footprint(r diagram.Role, p diagram.Position) Bounds {
	s := Footprint(r)
	return Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X + s.Width, MaxY: p.Y + s.Height}
}

// free reports whether b overlaps no placed footprint.
func (m *positionMap) free(b Bounds) bool {
	for id, p := range m.pos {
		s := m.size[id]
		if b.Intersects(Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X + s.Width, MaxY: p.Y + s.Height}) {
			return false
		}
	}
	return true
}

// bounds returns the box covering the footprints of every placed node. ok
// is false when nothing has been placed.
func (m *positionMap) bounds() (b Bounds, ok bool) {
	if len(m.pos) == 0 {
		return Bounds{}, false
	}
	b = Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for id, p := range m.pos {
		s := m.size[id]
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X+s.Width)
		b.MaxY = math.Max(b.MaxY, p.Y+s.Height)
	}
	return b, true
}
