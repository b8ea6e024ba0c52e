// Package layout computes automatic positions for entity-relationship
// diagrams.
//
// # Overview
//
// The engine takes a full snapshot of diagram nodes and edges and assigns a
// position to every node it can classify. It never changes anything else:
// roles, labels, ownership lists and edges pass through untouched.
//
// A layout pass runs four phases against one shared position map. Each
// phase may read positions written by earlier phases but never overwrites
// an entry once set:
//
//  1. [Classify] partitions nodes by role and derives the ownership
//     relations between entities, relationships and attributes.
//  2. The skeleton phase ranks entities by breadth-first distance from the
//     first entity and lays them out on a rank grid. Relationships that
//     connect at least one entity are centered between their entities.
//     Ranks are [RankSpacingY] apart unless the attribute grids between
//     two ranks need more room, in which case the step grows to fit them.
//  3. The satellite phase places each owner's attributes in a centered grid
//     beneath it, at most [ColumnCap] per row.
//  4. The ancillary phase places inheritance (ISA) markers to the right of
//     their parent entity, wrapping into further rows before they reach the
//     next entity slot, and moves everything without a structural owner
//     into staging grids clear of the skeleton.
//
// # Basic Usage
//
// [Arrange] is the usual entry point. It returns a copy of the input nodes
// with updated positions:
//
//	arranged := layout.Arrange(d.Nodes, d.Edges)
//
// Use [Compute] when the intermediate results (ranks, staged ids, the
// classification) are needed, and [Result.Apply] to merge them into a node
// list.
//
// # Ownership
//
// An attribute can be attached to its owner by an edge of kind
// [diagram.EdgeAttribute], by the owner's embedded attribute list, or both.
// The two sources are unioned and deduplicated by id, edge-derived ids
// first. Relationship participants come from the embedded connection list
// when it names at least one known entity, otherwise from edges of kind
// [diagram.EdgeRelationship].
//
// # Totality
//
// Layout never fails. Dangling edge endpoints are ignored, entities
// unreachable from the first entity collapse onto rank 0, and nodes without
// an owner end up in a staging grid. Nodes whose role is
// [diagram.RoleUnknown] are the only ones left where they were; they are
// reported in [Result.Unplaced].
//
// # Determinism
//
// The output depends only on the input and its order. The breadth-first
// seed is the first entity in the node list, so reordering nodes can change
// the rank structure.
//
// # Concurrency
//
// All functions are pure and keep no package-level state. Concurrent calls
// are safe as long as callers do not mutate the input slices during a call.
package layout
