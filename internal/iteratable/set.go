/*
Package iteratable implements a small destructive set type, adapted from
the parser toolbox this module is grounded on. It is used internally by
itemgraph while computing item-set closures, where sets are built up
iteratively until a fixed point is reached.

Union and Add are destructive: they mutate the receiver instead of
returning a copy. Copy and Difference return new sets and leave the
receiver unchanged.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package iteratable

// Set is an insertion-ordered set of arbitrary comparable values.
type Set struct {
	items []interface{}
	index map[interface{}]int
	pos   int // cursor for IterateOnce/Next
}

// New returns an empty set, optionally pre-sizing its backing storage.
func New(sizeHint int) *Set {
	return &Set{
		items: make([]interface{}, 0, sizeHint),
		index: make(map[interface{}]int, sizeHint),
	}
}

// Add inserts v if not already present. Returns true if the set changed.
func (s *Set) Add(v interface{}) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is a member of the set.
func (s *Set) Contains(v interface{}) bool {
	_, ok := s.index[v]
	return ok
}

// Size returns the number of elements in the set.
func (s *Set) Size() int { return len(s.items) }

// Empty reports whether the set has no elements.
func (s *Set) Empty() bool { return len(s.items) == 0 }

// Values returns the set's elements in insertion order. The returned slice
// must not be mutated by the caller.
func (s *Set) Values() []interface{} { return s.items }

// Copy returns a shallow copy of the set.
func (s *Set) Copy() *Set {
	c := New(len(s.items))
	for _, v := range s.items {
		c.Add(v)
	}
	return c
}

// Union destructively adds every element of other into s. Returns s.
func (s *Set) Union(other *Set) *Set {
	for _, v := range other.items {
		s.Add(v)
	}
	return s
}

// Difference returns a new set containing the elements of other not
// already present in s. It does not mutate s.
func (s *Set) Difference(other *Set) *Set {
	d := New(other.Size())
	for _, v := range other.items {
		if !s.Contains(v) {
			d.Add(v)
		}
	}
	return d
}

// Equals reports whether s and other contain exactly the same elements.
func (s *Set) Equals(other *Set) bool {
	if other == nil || s.Size() != other.Size() {
		return false
	}
	for _, v := range s.items {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// IterateOnce resets the cursor so a subsequent Next()/Item() loop visits
// each element present right now exactly once, even if the set grows
// during iteration (newly added elements are visited too, matching the
// worklist-style closure loops that use this type).
func (s *Set) IterateOnce() { s.pos = -1 }

// Next advances the cursor. Returns false once every element (including
// ones added mid-iteration) has been visited.
func (s *Set) Next() bool {
	s.pos++
	return s.pos < len(s.items)
}

// Item returns the element the cursor currently points to.
func (s *Set) Item() interface{} { return s.items[s.pos] }

// FirstMatch returns the first element satisfying predicate, or nil.
func (s *Set) FirstMatch(predicate func(interface{}) bool) interface{} {
	for _, v := range s.items {
		if predicate(v) {
			return v
		}
	}
	return nil
}
