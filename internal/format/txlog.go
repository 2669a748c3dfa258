package format

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when decoding a transaction log whose
// format version is missing or newer than LatestTransactionLogFormat.
var ErrUnsupportedFormat = errors.New("unsupported transaction log format")

// TransactionLog summarizes what exactly one commit changed.
//
// A log is derived once from the change set that produced the commit and is
// never mutated afterwards. Everything except DeletedPaths and the two path
// maps for new nodes is keyed by NodeID.
//
// DeletedGroups and DeletedArrays are always empty when a log is derived from
// a change set; only DeletedPaths records deletions. Logs built by other
// means (older writers, tests) may still populate them.
type TransactionLog struct {
	FormatVersion         uint8               `json:"format_version"`
	NewGroups             map[Path]NodeID     `json:"new_groups"`
	NewArrays             map[Path]NodeID     `json:"new_arrays"`
	UpdatedUserAttributes Set[NodeID]         `json:"updated_user_attributes"`
	UpdatedZarrMetadata   Set[NodeID]         `json:"updated_zarr_metadata"`
	UpdatedChunks         map[NodeID]ChunkSet `json:"updated_chunks"`
	DeletedPaths          Set[Path]           `json:"deleted_paths"`
	DeletedGroups         map[NodeID]Path     `json:"deleted_groups"`
	DeletedArrays         map[NodeID]Path     `json:"deleted_arrays"`
}

// NewTransactionLog returns an empty log at the latest format version.
// Every collection is allocated, so an empty log compares equal to a decoded
// empty log.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{
		FormatVersion:         LatestTransactionLogFormat,
		NewGroups:             map[Path]NodeID{},
		NewArrays:             map[Path]NodeID{},
		UpdatedUserAttributes: Set[NodeID]{},
		UpdatedZarrMetadata:   Set[NodeID]{},
		UpdatedChunks:         map[NodeID]ChunkSet{},
		DeletedPaths:          Set[Path]{},
		DeletedGroups:         map[NodeID]Path{},
		DeletedArrays:         map[NodeID]Path{},
	}
}

// IsEmpty reports whether the log records no change at all.
func (l *TransactionLog) IsEmpty() bool {
	return len(l.NewGroups) == 0 &&
		len(l.NewArrays) == 0 &&
		len(l.UpdatedUserAttributes) == 0 &&
		len(l.UpdatedZarrMetadata) == 0 &&
		len(l.UpdatedChunks) == 0 &&
		len(l.DeletedPaths) == 0 &&
		len(l.DeletedGroups) == 0 &&
		len(l.DeletedArrays) == 0
}

// UpdatedChunkCount returns the total number of chunk indices written.
func (l *TransactionLog) UpdatedChunkCount() int {
	n := 0
	for _, chunks := range l.UpdatedChunks {
		n += chunks.Len()
	}
	return n
}

// UnlistedNodes returns the sorted ids the log updated (chunks, user
// attributes or zarr metadata) that are missing from nodes, the listing of
// the snapshot the log's commit produced. A log and listing that belong
// together always yield nil.
func (l *TransactionLog) UnlistedNodes(nodes []NodeSnapshot) []NodeID {
	listed := make(map[NodeID]bool, len(nodes))
	for _, n := range nodes {
		listed[n.ID] = true
	}

	missing := NewSet[NodeID]()
	for id := range l.UpdatedUserAttributes.Union(l.UpdatedZarrMetadata) {
		if !listed[id] {
			missing.Add(id)
		}
	}
	for id := range l.UpdatedChunks {
		if !listed[id] {
			missing.Add(id)
		}
	}
	if missing.Len() == 0 {
		return nil
	}
	return missing.Sorted()
}

// MarshalCanonical returns the deterministic JSON encoding of the log.
// This is the only encoding used for storage and hashing.
func (l *TransactionLog) MarshalCanonical() ([]byte, error) {
	data, err := marshalJSON(l)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction log: %w", err)
	}
	return data, nil
}

// DecodeTransactionLog parses a log produced by MarshalCanonical.
// Missing collections decode as empty ones.
func DecodeTransactionLog(data []byte) (*TransactionLog, error) {
	var l TransactionLog
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode transaction log: %w", err)
	}
	if l.FormatVersion == 0 {
		return nil, fmt.Errorf("%w: missing format_version", ErrUnsupportedFormat)
	}
	if l.FormatVersion > LatestTransactionLogFormat {
		return nil, fmt.Errorf("%w: version %d is newer than %d",
			ErrUnsupportedFormat, l.FormatVersion, LatestTransactionLogFormat)
	}
	l.fillEmpty()
	return &l, nil
}

func (l *TransactionLog) fillEmpty() {
	if l.NewGroups == nil {
		l.NewGroups = map[Path]NodeID{}
	}
	if l.NewArrays == nil {
		l.NewArrays = map[Path]NodeID{}
	}
	if l.UpdatedUserAttributes == nil {
		l.UpdatedUserAttributes = Set[NodeID]{}
	}
	if l.UpdatedZarrMetadata == nil {
		l.UpdatedZarrMetadata = Set[NodeID]{}
	}
	if l.UpdatedChunks == nil {
		l.UpdatedChunks = map[NodeID]ChunkSet{}
	}
	if l.DeletedPaths == nil {
		l.DeletedPaths = Set[Path]{}
	}
	if l.DeletedGroups == nil {
		l.DeletedGroups = map[NodeID]Path{}
	}
	if l.DeletedArrays == nil {
		l.DeletedArrays = map[NodeID]Path{}
	}
}
