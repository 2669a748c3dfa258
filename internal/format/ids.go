package format

import "github.com/google/uuid"

// NodeID is the stable identifier of a group or array. It survives renames
// and is what transaction logs are indexed by.
type NodeID string

// SnapshotID identifies one committed snapshot of the node tree.
type SnapshotID string

// NewNodeID returns a fresh time-sortable UUIDv7 node identifier.
//
// Panics if UUID generation fails (should never happen in practice).
func NewNodeID() NodeID {
	return NodeID(uuid.Must(uuid.NewV7()).String())
}

// NewSnapshotID returns a fresh time-sortable UUIDv7 snapshot identifier.
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.Must(uuid.NewV7()).String())
}

// NodeType distinguishes groups from arrays in a snapshot listing.
type NodeType string

const (
	NodeTypeGroup NodeType = "group"
	NodeTypeArray NodeType = "array"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return t == NodeTypeGroup || t == NodeTypeArray
}

// NodeSnapshot is one live node as listed by a snapshot.
type NodeSnapshot struct {
	ID   NodeID   `json:"id"`
	Path Path     `json:"path"`
	Type NodeType `json:"type"`
}
