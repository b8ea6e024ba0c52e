package diagram

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// =============================================================================
// Roles and Edge Kinds
// =============================================================================

// Role is the structural role of a diagram node.
type Role string

// Node roles.
const (
	RoleEntity       Role = "entity"
	RoleRelationship Role = "relationship"
	RoleAttribute    Role = "attribute"
	RoleIsa          Role = "isa"

	// RoleUnknown marks a node whose role could not be determined.
	// The layout engine never positions such nodes.
	RoleUnknown Role = ""
)

// ParseRole maps a wire value to a Role. Matching is case-insensitive and
// accepts "inheritance" as an alias for [RoleIsa]. Unrecognized values
// return [RoleUnknown].
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entity":
		return RoleEntity
	case "relationship":
		return RoleRelationship
	case "attribute":
		return RoleAttribute
	case "isa", "inheritance":
		return RoleIsa
	default:
		return RoleUnknown
	}
}

// Known reports whether r is one of the four layout roles.
func (r Role) Known() bool { return r != RoleUnknown }

// EdgeKind classifies an edge for ownership inference.
type EdgeKind string

// Edge kinds.
const (
	EdgeAttribute    EdgeKind = "attribute"
	EdgeRelationship EdgeKind = "relationship"
	EdgeGeneric      EdgeKind = ""
)

// ParseEdgeKind maps a wire value to an EdgeKind. Anything other than
// "attribute" or "relationship" is [EdgeGeneric].
func ParseEdgeKind(s string) EdgeKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attribute":
		return EdgeAttribute
	case "relationship":
		return EdgeRelationship
	default:
		return EdgeGeneric
	}
}

// =============================================================================
// Position
// =============================================================================

// Position is the top-left corner of a node on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by dx, dy.
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// =============================================================================
// Node
// =============================================================================

// Node is one element of an entity-relationship diagram.
//
// Position is the only field the layout engine writes. Extra and Data hold
// wire keys this package does not interpret so they survive a round trip.
type Node struct {
	ID       string
	Role     Role
	Position Position
	Label    string

	// OwnedAttributeIDs lists attribute ids in declaration order.
	// Meaningful for entities and relationships.
	OwnedAttributeIDs []string

	// ConnectedEntityIDs lists the entities a relationship connects.
	ConnectedEntityIDs []string

	Extra map[string]json.RawMessage // unknown top-level keys
	Data  map[string]json.RawMessage // every key of the "data" object
}

// IsEntity reports whether the node is an entity.
func (n *Node) IsEntity() bool { return n.Role == RoleEntity }

// IsRelationship reports whether the node is a relationship.
func (n *Node) IsRelationship() bool { return n.Role == RoleRelationship }

// IsAttribute reports whether the node is an attribute.
func (n *Node) IsAttribute() bool { return n.Role == RoleAttribute }

// IsIsa reports whether the node is an inheritance marker.
func (n *Node) IsIsa() bool { return n.Role == RoleIsa }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Clone returns a copy of n that shares no slices or maps with it.
func (n Node) Clone() Node {
	n.OwnedAttributeIDs = slices.Clone(n.OwnedAttributeIDs)
	n.ConnectedEntityIDs = slices.Clone(n.ConnectedEntityIDs)
	n.Extra = maps.Clone(n.Extra)
	n.Data = maps.Clone(n.Data)
	return n
}

// =============================================================================
// Edge
// =============================================================================

// Edge connects two nodes. Edges are read-only inputs to the layout engine.
type Edge struct {
	ID     string
	Source string
	Target string
	Kind   EdgeKind

	Extra map[string]json.RawMessage // unknown keys, including "data"
}

// Touches reports whether id is one of the edge's endpoints.
func (e *Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// Other returns the endpoint opposite to id, or "" if the edge does not
// touch id.
func (e *Edge) Other(id string) string {
	switch id {
	case e.Source:
		return e.Target
	case e.Target:
		return e.Source
	default:
		return ""
	}
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is a full node/edge snapshot.
type Diagram struct {
	Nodes []Node
	Edges []Edge

	Extra map[string]json.RawMessage // e.g. the ReactFlow "viewport"
}

// NodeByID returns a pointer into d.Nodes for the first node with the given
// id, or nil.
func (d *Diagram) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}
