// Package diagram defines the entity-relationship diagram model consumed by
// the layout engine and its ReactFlow-compatible wire format.
//
// # Model
//
// A diagram is an ordered list of [Node] values and an ordered list of
// [Edge] values. Every node carries a [Role]:
//
//   - [RoleEntity]: a table or object type; may own attributes
//   - [RoleRelationship]: an association between entities; may own attributes
//     and lists the entities it connects
//   - [RoleAttribute]: a field owned by an entity or relationship
//   - [RoleIsa]: an inheritance marker attached to a parent entity by an edge
//
// Ownership can be declared in two ways: by an edge of kind
// [EdgeAttribute] or [EdgeRelationship], or by the owner's embedded lists
// ([Node.OwnedAttributeIDs], [Node.ConnectedEntityIDs]). The layout engine
// reconciles both; this package only carries them.
//
// # Wire Format
//
// Diagrams are stored the way the ReactFlow canvas emits them:
//
//	{
//	  "nodes": [
//	    {"id": "e1", "type": "entity", "position": {"x": 0, "y": 0},
//	     "data": {"nodeType": "entity", "label": "User", "attributes": ["a1"]}}
//	  ],
//	  "edges": [
//	    {"id": "x1", "source": "e1", "target": "a1", "kind": "attribute"}
//	  ]
//	}
//
// Keys this package does not interpret are kept verbatim, both at the top
// level of a node or edge and inside a node's "data" object, and are written
// back unchanged by [Write]. A decode → layout → encode cycle therefore only
// changes "position" values.
//
// YAML input with the same structure is accepted by [ReadYAML] and
// [ReadFile] for files ending in .yaml or .yml. Output is always JSON.
//
// # Concurrency
//
// Values in this package are plain data. They are safe for concurrent reads;
// callers must synchronize writes.
package diagram
