package format

import (
	"cmp"
	"encoding/json"
	"maps"
	"slices"
)

// Set is an unordered set of comparable, ordered values.
//
// Iteration through Sorted is deterministic, and the JSON form is a sorted
// array, so two equal sets always encode to the same bytes.
type Set[T cmp.Ordered] map[T]struct{}

// NewSet returns a set holding items.
func NewSet[T cmp.Ordered](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts v.
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Remove deletes v if present.
func (s Set[T]) Remove(v T) {
	delete(s, v)
}

// Contains reports whether v is in the set.
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s)
}

// Sorted returns the elements in ascending order. Never nil.
func (s Set[T]) Sorted() []T {
	out := slices.Sorted(maps.Keys(s))
	if out == nil {
		out = []T{}
	}
	return out
}

// Union returns a new set with the elements of s and other.
func (s Set[T]) Union(other Set[T]) Set[T] {
	out := make(Set[T], len(s)+len(other))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// Clone returns a copy of s.
func (s Set[T]) Clone() Set[T] {
	return s.Union(nil)
}

// MarshalJSON encodes the set as a sorted array.
func (s Set[T]) MarshalJSON() ([]byte, error) {
	return marshalJSON(s.Sorted())
}

// UnmarshalJSON decodes a JSON array. Duplicates collapse.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}
