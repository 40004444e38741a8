// Package labels provides ordered sparse sets of non-negative integer
// labels used to track element and node membership in derived groups.
package labels

import (
	"fmt"
	"sort"
	"strings"
)

// LabelsGroup is an ordered sparse set of non-negative integer labels.
// Labels are kept sorted ascending; membership tests are O(log n).
// Structural mutation invalidates outstanding iterators (see Iterator).
type LabelsGroup struct {
	labels     []int
	generation uint64
}

// NewLabelsGroup creates an empty labels group.
func NewLabelsGroup() *LabelsGroup {
	return &LabelsGroup{}
}

// Size returns the number of labels in the group.
func (g *LabelsGroup) Size() int {
	return len(g.labels)
}

// IsEmpty reports whether the group contains no labels.
func (g *LabelsGroup) IsEmpty() bool {
	return len(g.labels) == 0
}

// Contains reports whether label is in the group.
func (g *LabelsGroup) Contains(label int) bool {
	i := sort.SearchInts(g.labels, label)
	return i < len(g.labels) && g.labels[i] == label
}

// Add inserts label into the group. Returns false without modifying the
// group if label is negative or already present.
func (g *LabelsGroup) Add(label int) bool {
	if label < 0 {
		return false
	}
	i := sort.SearchInts(g.labels, label)
	if i < len(g.labels) && g.labels[i] == label {
		return false
	}
	g.labels = append(g.labels, 0)
	copy(g.labels[i+1:], g.labels[i:])
	g.labels[i] = label
	g.generation++
	return true
}

// Remove deletes label from the group. Returns false without modifying
// the group if label is absent.
func (g *LabelsGroup) Remove(label int) bool {
	i := sort.SearchInts(g.labels, label)
	if i >= len(g.labels) || g.labels[i] != label {
		return false
	}
	g.labels = append(g.labels[:i], g.labels[i+1:]...)
	g.generation++
	return true
}

// AddRange inserts every label in [first, last] inclusive, returning the
// number of labels newly added.
func (g *LabelsGroup) AddRange(first, last int) (int, error) {
	if first < 0 || last < first {
		return 0, fmt.Errorf("invalid label range [%d, %d]", first, last)
	}
	added := 0
	for label := first; label <= last; label++ {
		if g.Add(label) {
			added++
		}
	}
	return added, nil
}

// Clear removes all labels. Returns false if the group was already empty.
func (g *LabelsGroup) Clear() bool {
	if len(g.labels) == 0 {
		return false
	}
	g.labels = g.labels[:0]
	g.generation++
	return true
}

// First returns the smallest label in the group, or false if empty.
func (g *LabelsGroup) First() (int, bool) {
	if len(g.labels) == 0 {
		return 0, false
	}
	return g.labels[0], true
}

// Labels returns a copy of the labels in ascending order.
func (g *LabelsGroup) Labels() []int {
	out := make([]int, len(g.labels))
	copy(out, g.labels)
	return out
}

// Invalidate marks all outstanding iterators stale without changing
// membership. Callers mutating the underlying structure through another
// path use this to force iterators to fail fast.
func (g *LabelsGroup) Invalidate() {
	g.generation++
}

// String returns a compact summary of the group contents.
func (g *LabelsGroup) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("LabelsGroup{size=%d", len(g.labels)))
	if len(g.labels) > 0 {
		sb.WriteString(fmt.Sprintf(", first=%d, last=%d",
			g.labels[0], g.labels[len(g.labels)-1]))
	}
	sb.WriteString("}")
	return sb.String()
}

// Iterator walks the labels of a group in ascending order. An iterator is
// stamped with the group generation at creation; any structural edit of
// the group (Add, Remove, Clear, Invalidate) makes the iterator report
// exhaustion on the next call rather than reading stale storage.
type Iterator struct {
	group *LabelsGroup
	stamp uint64
	pos   int
}

// CreateIterator returns an iterator positioned before the first label.
func (g *LabelsGroup) CreateIterator() *Iterator {
	return &Iterator{group: g, stamp: g.generation}
}

// Next returns the next label in ascending order. The second result is
// false when the iterator is exhausted or has been invalidated by a
// structural edit.
func (it *Iterator) Next() (int, bool) {
	if it.group == nil || it.stamp != it.group.generation {
		return 0, false
	}
	if it.pos >= len(it.group.labels) {
		return 0, false
	}
	label := it.group.labels[it.pos]
	it.pos++
	return label, true
}

// Valid reports whether the iterator still matches the group generation.
func (it *Iterator) Valid() bool {
	return it.group != nil && it.stamp == it.group.generation
}
