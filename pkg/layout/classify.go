package layout

import "github.com/matzehuels/erdlayout/pkg/diagram"

// Classification is the role partition of a diagram plus the ownership
// relations derived from it. All id lists are in first-seen order and free
// of duplicates.
type Classification struct {
	Entities      []string
	Relationships []string
	Attributes    []string
	Isas          []string
	Unknown       []string

	// EntityAttributes maps each entity to the attributes it owns.
	EntityAttributes map[string][]string
	// RelationshipAttributes maps each relationship to the attributes it owns.
	RelationshipAttributes map[string][]string
	// RelationshipEntities maps each relationship to the entities it connects.
	RelationshipEntities map[string][]string

	roles    map[string]diagram.Role
	incident map[string][]int
	edges    []diagram.Edge
	owned    *idSet
}

// Classify partitions nodes by role and derives the entity→attribute,
// relationship→attribute and relationship→entity relations.
//
// When several nodes share an id, the first one decides the role; the rest
// are ignored. Edges with an endpoint that is not a node are ignored.
//
// # Attribute ownership
//
// For each entity and each relationship, attribute ids are collected first
// from edges of kind [diagram.EdgeAttribute] touching the owner, in edge
// order, then from the owner's OwnedAttributeIDs. Ids that do not name an
// attribute node are dropped. The result is deduplicated, keeping the first
// occurrence.
//
// # Relationship participants
//
// A relationship's entities come from its ConnectedEntityIDs, filtered to
// known entities. If that leaves nothing, edges of kind
// [diagram.EdgeRelationship] touching the relationship are scanned instead.
func Classify(nodes []diagram.Node, edges []diagram.Edge) *Classification {
	c := &Classification{
		EntityAttributes:       make(map[string][]string),
		RelationshipAttributes: make(map[string][]string),
		RelationshipEntities:   make(map[string][]string),
		roles:                  make(map[string]diagram.Role, len(nodes)),
		incident:               make(map[string][]int),
		edges:                  edges,
		owned:                  newIDSet(),
	}

	owners := make(map[string]*diagram.Node)
	for i := range nodes {
		n := &nodes[i]
		if _, seen := c.roles[n.ID]; seen {
			continue
		}
		c.roles[n.ID] = n.Role
		owners[n.ID] = n
		switch n.Role {
		case diagram.RoleEntity:
			c.Entities = append(c.Entities, n.ID)
		case diagram.RoleRelationship:
			c.Relationships = append(c.Relationships, n.ID)
		case diagram.RoleAttribute:
			c.Attributes = append(c.Attributes, n.ID)
		case diagram.RoleIsa:
			c.Isas = append(c.Isas, n.ID)
		default:
			c.Unknown = append(c.Unknown, n.ID)
		}
	}

	for i, e := range edges {
		if _, ok := c.roles[e.Source]; !ok {
			continue
		}
		if _, ok := c.roles[e.Target]; !ok {
			continue
		}
		c.incident[e.Source] = append(c.incident[e.Source], i)
		if e.Target != e.Source {
			c.incident[e.Target] = append(c.incident[e.Target], i)
		}
	}

	for _, id := range c.Entities {
		c.EntityAttributes[id] = c.ownedAttributes(owners[id])
	}
	for _, id := range c.Relationships {
		c.RelationshipAttributes[id] = c.ownedAttributes(owners[id])
		c.RelationshipEntities[id] = c.connectedEntities(owners[id])
	}
	return c
}

// Role returns the role of the node with the given id, or
// [diagram.RoleUnknown] if no such node exists.
func (c *Classification) Role(id string) diagram.Role {
	return c.roles[id]
}

// Has reports whether a node with the given id exists.
func (c *Classification) Has(id string) bool {
	_, ok := c.roles[id]
	return ok
}

// Neighbors returns the ids at the other end of every edge touching id, in
// edge order. Dangling edges are skipped.
func (c *Classification) Neighbors(id string) []string {
	var out []string
	for _, i := range c.incident[id] {
		out = append(out, c.edges[i].Other(id))
	}
	return out
}

// Connected reports whether relationship id connects at least one entity.
func (c *Classification) Connected(id string) bool {
	return len(c.RelationshipEntities[id]) > 0
}

// Owned reports whether attribute id belongs to any entity or relationship.
func (c *Classification) Owned(id string) bool {
	return c.owned.has(id)
}

// linked returns the neighbors of id reachable over edges of the given kind
// that have the given role.
func (c *Classification) linked(id string, kind diagram.EdgeKind, role diagram.Role) []string {
	var out []string
	for _, i := range c.incident[id] {
		e := &c.edges[i]
		if e.Kind != kind {
			continue
		}
		if other := e.Other(id); c.roles[other] == role {
			out = append(out, other)
		}
	}
	return out
}

func (c *Classification) ownedAttributes(owner *diagram.Node) []string {
	set := newIDSet()
	for _, id := range c.linked(owner.ID, diagram.EdgeAttribute, diagram.RoleAttribute) {
		set.add(id)
	}
	for _, id := range owner.OwnedAttributeIDs {
		if c.roles[id] == diagram.RoleAttribute {
			set.add(id)
		}
	}
	ids := set.ids()
	for _, id := range ids {
		c.owned.add(id)
	}
	return ids
}

func (c *Classification) connectedEntities(rel *diagram.Node) []string {
	set := newIDSet()
	for _, id := range rel.ConnectedEntityIDs {
		if c.roles[id] == diagram.RoleEntity {
			set.add(id)
		}
	}
	if set.len() > 0 {
		return set.ids()
	}
	for _, id := range c.linked(rel.ID, diagram.EdgeRelationship, diagram.RoleEntity) {
		set.add(id)
	}
	return set.ids()
}
