package diagram

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Wire keys interpreted by this package.
const (
	keyID       = "id"
	keyType     = "type"
	keyPosition = "position"
	keyData     = "data"
	keySource   = "source"
	keyTarget   = "target"
	keyKind     = "kind"
	keyNodes    = "nodes"
	keyEdges    = "edges"

	dataNodeType    = "nodeType"
	dataLabel       = "label"
	dataAttributes  = "attributes"
	dataConnections = "entityConnections"
)

// =============================================================================
// Node
// =============================================================================

// UnmarshalJSON decodes a ReactFlow node. The role is read from
// data.nodeType, falling back to the top-level "type".
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var out Node
	if err := decodeField(raw, keyID, &out.ID); err != nil {
		return err
	}
	if err := decodeField(raw, keyPosition, &out.Position); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}
	if err := decodeField(raw, keyData, &out.Data); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}

	var nodeType, typ string
	if err := decodeField(out.Data, dataNodeType, &nodeType); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}
	if err := decodeField(raw, keyType, &typ); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}
	out.Role = ParseRole(nodeType)
	if !out.Role.Known() {
		out.Role = ParseRole(typ)
	}

	if err := decodeField(out.Data, dataLabel, &out.Label); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}
	if err := decodeField(out.Data, dataAttributes, &out.OwnedAttributeIDs); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}
	if err := decodeField(out.Data, dataConnections, &out.ConnectedEntityIDs); err != nil {
		return fmt.Errorf("node %s: %w", out.ID, err)
	}

	out.Extra = without(raw, keyID, keyPosition, keyData)
	*n = out
	return nil
}

// MarshalJSON encodes the node in ReactFlow shape. Unknown keys captured on
// decode are written back unchanged.
func (n Node) MarshalJSON() ([]byte, error) {
	out := maps.Clone(n.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage)
	}
	data := maps.Clone(n.Data)
	if data == nil {
		data = make(map[string]json.RawMessage)
	}

	if err := encodeField(out, keyID, n.ID); err != nil {
		return nil, err
	}
	if err := encodeField(out, keyPosition, n.Position); err != nil {
		return nil, err
	}

	_, hasType := out[keyType]
	_, hasNodeType := data[dataNodeType]
	if n.Role.Known() && !hasType && !hasNodeType {
		if err := encodeField(data, dataNodeType, string(n.Role)); err != nil {
			return nil, err
		}
	}
	if n.Label != "" {
		if err := encodeField(data, dataLabel, n.Label); err != nil {
			return nil, err
		}
	}
	if n.OwnedAttributeIDs != nil {
		if err := encodeField(data, dataAttributes, n.OwnedAttributeIDs); err != nil {
			return nil, err
		}
	}
	if n.ConnectedEntityIDs != nil {
		if err := encodeField(data, dataConnections, n.ConnectedEntityIDs); err != nil {
			return nil, err
		}
	}
	if len(data) > 0 {
		if err := encodeField(out, keyData, data); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// =============================================================================
// Edge
// =============================================================================

// UnmarshalJSON decodes a ReactFlow edge. The kind is read from "kind",
// falling back to data.kind.
func (e *Edge) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var out Edge
	if err := decodeField(raw, keyID, &out.ID); err != nil {
		return err
	}
	if err := decodeField(raw, keySource, &out.Source); err != nil {
		return fmt.Errorf("edge %s: %w", out.ID, err)
	}
	if err := decodeField(raw, keyTarget, &out.Target); err != nil {
		return fmt.Errorf("edge %s: %w", out.ID, err)
	}

	var kind string
	if err := decodeField(raw, keyKind, &kind); err != nil {
		return fmt.Errorf("edge %s: %w", out.ID, err)
	}
	if kind == "" {
		var data map[string]json.RawMessage
		if err := decodeField(raw, keyData, &data); err != nil {
			return fmt.Errorf("edge %s: %w", out.ID, err)
		}
		if err := decodeField(data, keyKind, &kind); err != nil {
			return fmt.Errorf("edge %s: %w", out.ID, err)
		}
	}
	out.Kind = ParseEdgeKind(kind)

	out.Extra = without(raw, keyID, keySource, keyTarget)
	*e = out
	return nil
}

// MarshalJSON encodes the edge in ReactFlow shape.
func (e Edge) MarshalJSON() ([]byte, error) {
	out := maps.Clone(e.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage)
	}
	for key, v := range map[string]string{keyID: e.ID, keySource: e.Source, keyTarget: e.Target} {
		if err := encodeField(out, key, v); err != nil {
			return nil, err
		}
	}
	if e.Kind != EdgeGeneric && !hasKind(out) {
		if err := encodeField(out, keyKind, string(e.Kind)); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// =============================================================================
// Diagram
// =============================================================================

// UnmarshalJSON decodes a {"nodes": [...], "edges": [...]} document.
func (d *Diagram) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Diagram
	if err := decodeField(raw, keyNodes, &out.Nodes); err != nil {
		return fmt.Errorf("nodes: %w", err)
	}
	if err := decodeField(raw, keyEdges, &out.Edges); err != nil {
		return fmt.Errorf("edges: %w", err)
	}
	out.Extra = without(raw, keyNodes, keyEdges)
	*d = out
	return nil
}

// MarshalJSON encodes the diagram. Nodes and edges are always emitted as
// arrays, never null.
func (d Diagram) MarshalJSON() ([]byte, error) {
	out := maps.Clone(d.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage)
	}
	nodes, edges := d.Nodes, d.Edges
	if nodes == nil {
		nodes = []Node{}
	}
	if edges == nil {
		edges = []Edge{}
	}
	if err := encodeField(out, keyNodes, nodes); err != nil {
		return nil, err
	}
	if err := encodeField(out, keyEdges, edges); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// =============================================================================
// Helpers
// =============================================================================

// decodeField unmarshals raw[key] into dst. Missing keys and JSON null are
// left as the zero value.
func decodeField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// hasKind reports whether an edge object already carries a kind, either at
// the top level or inside its data object.
func hasKind(raw map[string]json.RawMessage) bool {
	if _, ok := raw[keyKind]; ok {
		return true
	}
	var data map[string]json.RawMessage
	if decodeField(raw, keyData, &data) != nil {
		return false
	}
	_, ok := data[keyKind]
	return ok
}

func encodeField(dst map[string]json.RawMessage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	dst[key] = b
	return nil
}

// without returns a copy of raw minus the given keys, or nil if nothing
// remains.
func without(raw map[string]json.RawMessage, keys ...string) map[string]json.RawMessage {
	out := maps.Clone(raw)
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
