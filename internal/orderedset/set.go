// Package orderedset implements a de-duplicated set that remembers insertion order.
package orderedset

// Set is an insertion-ordered set. The zero value is ready to use.
type Set[T comparable] struct {
	index map[T]int
	items []T
}

// New creates a set holding items in order, skipping duplicates
func New[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item and reports whether it was not already present
func (s *Set[T]) Add(item T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Has reports whether item is in the set
func (s *Set[T]) Has(item T) bool {
	_, ok := s.index[item]
	return ok
}

// Delete removes item, keeping the relative order of the rest
func (s *Set[T]) Delete(item T) bool {
	i, ok := s.index[item]
	if !ok {
		return false
	}
	delete(s.index, item)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

// Len returns the number of items
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the items in insertion order
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
