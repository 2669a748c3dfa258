package format

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ChunkIndices are the coordinates of one chunk within an array's chunk grid.
type ChunkIndices []uint32

// Key returns a comparable encoding of the coordinates, usable as a map key.
// The zero-dimensional (scalar) chunk has the key "".
func (c ChunkIndices) Key() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ".")
}

// String formats the coordinates as "[0,1]".
func (c ChunkIndices) String() string {
	return "[" + strings.ReplaceAll(c.Key(), ".", ",") + "]"
}

// ParseChunkKey is the inverse of ChunkIndices.Key.
func ParseChunkKey(key string) (ChunkIndices, error) {
	if key == "" {
		return ChunkIndices{}, nil
	}
	parts := strings.Split(key, ".")
	out := make(ChunkIndices, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse chunk key %q: %w", key, err)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// ChunkSet is a set of chunk coordinates, keyed by ChunkIndices.Key.
type ChunkSet map[string]ChunkIndices

// NewChunkSet returns a set holding indices.
func NewChunkSet(indices ...ChunkIndices) ChunkSet {
	s := make(ChunkSet, len(indices))
	for _, idx := range indices {
		s.Add(idx)
	}
	return s
}

// Add inserts idx.
func (s ChunkSet) Add(idx ChunkIndices) {
	s[idx.Key()] = slices.Clone(idx)
}

// Remove deletes idx if present.
func (s ChunkSet) Remove(idx ChunkIndices) {
	delete(s, idx.Key())
}

// Contains reports whether idx is in the set.
func (s ChunkSet) Contains(idx ChunkIndices) bool {
	_, ok := s[idx.Key()]
	return ok
}

// Len returns the number of coordinates in the set.
func (s ChunkSet) Len() int {
	return len(s)
}

// Sorted returns the coordinates in lexicographic order. Never nil.
func (s ChunkSet) Sorted() []ChunkIndices {
	out := make([]ChunkIndices, 0, len(s))
	for _, idx := range s {
		out = append(out, idx)
	}
	slices.SortFunc(out, func(a, b ChunkIndices) int {
		return slices.Compare(a, b)
	})
	return out
}

// MarshalJSON encodes the set as a sorted array of coordinate arrays.
func (s ChunkSet) MarshalJSON() ([]byte, error) {
	return marshalJSON(s.Sorted())
}

// UnmarshalJSON decodes an array of coordinate arrays.
func (s *ChunkSet) UnmarshalJSON(data []byte) error {
	var items []ChunkIndices
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewChunkSet(items...)
	return nil
}
