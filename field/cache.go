// Package field implements the field evaluation dependency graph: fields
// hold ordered source fields and a pluggable evaluation core, evaluate
// numeric values and parametric derivatives at a cached location, and
// report changes through a manager that batches notifications.
package field

import (
	"fmt"

	"github.com/dbrnz/zinc-sub001/mesh"
)

// LocationType identifies what kind of location a FieldCache is bound to.
type LocationType uint8

const (
	LocationNone LocationType = iota
	LocationNode
	LocationMeshElement
)

// ValueCache is the per-field scratch buffer for the last evaluation in
// one FieldCache: the value vector, the derivative vector and a
// derivatives-valid flag. It is owned by the cache entry for one field
// and never shared between fields.
type ValueCache struct {
	Values []float64
	// Derivatives holds len(Values) * derivativeCount entries, component
	// major: Derivatives[c*derivativeCount+d] is d(value c)/d(xi d).
	Derivatives      []float64
	DerivativesValid bool

	generation uint64
	evaluated  bool
	ok         bool
}

// DerivativeCount returns the number of parametric directions the
// derivative buffer was sized for.
func (vc *ValueCache) DerivativeCount() int {
	if len(vc.Values) == 0 {
		return 0
	}
	return len(vc.Derivatives) / len(vc.Values)
}

// DerivativeSlice copies the derivative vector for one parametric
// direction into out, which must have len(Values) entries.
func (vc *ValueCache) DerivativeSlice(direction int, out []float64) {
	nd := vc.DerivativeCount()
	for c := range vc.Values {
		out[c] = vc.Derivatives[c*nd+direction]
	}
}

// FieldCache binds an evaluation location (a node, or an element with a
// parametric coordinate, or none) and a time. Fields memoize their
// evaluation per cache generation: changing the location or time bumps
// the generation so every field re-evaluates on next request. A cache is
// single threaded and owned by its creating caller.
type FieldCache struct {
	manager *Manager

	locationType    LocationType
	node            *mesh.Node
	element         *mesh.Element
	xi              []float64
	time            float64
	derivativeCount int

	generation uint64
	entries    map[*Field]*ValueCache
}

// CreateFieldCache returns a new evaluation cache registered with the
// manager. Destroy must be called when the cache is no longer needed.
func (m *Manager) CreateFieldCache() *FieldCache {
	cache := &FieldCache{
		manager: m,
		entries: make(map[*Field]*ValueCache),
	}
	m.caches[cache] = struct{}{}
	return cache
}

// Destroy unregisters the cache from its manager. The cache must not be
// used afterwards.
func (cache *FieldCache) Destroy() {
	if cache.manager != nil {
		delete(cache.manager.caches, cache)
		cache.manager = nil
	}
}

// LocationType returns the kind of location currently bound.
func (cache *FieldCache) LocationType() LocationType {
	return cache.locationType
}

// Node returns the bound node, or nil when not at a node location.
func (cache *FieldCache) Node() *mesh.Node {
	if cache.locationType != LocationNode {
		return nil
	}
	return cache.node
}

// Element returns the bound element, or nil when not at a mesh location.
func (cache *FieldCache) Element() *mesh.Element {
	if cache.locationType != LocationMeshElement {
		return nil
	}
	return cache.element
}

// Xi returns the bound parametric coordinate, or nil when not at a mesh
// location.
func (cache *FieldCache) Xi() []float64 {
	if cache.locationType != LocationMeshElement {
		return nil
	}
	return cache.xi
}

// Time returns the cache time.
func (cache *FieldCache) Time() float64 {
	return cache.time
}

// DerivativeCount returns the number of parametric derivative directions
// requested for subsequent evaluations.
func (cache *FieldCache) DerivativeCount() int {
	return cache.derivativeCount
}

// SetNode binds the cache to a node location.
func (cache *FieldCache) SetNode(node *mesh.Node) error {
	if node == nil {
		return fmt.Errorf("field cache: nil node location")
	}
	cache.locationType = LocationNode
	cache.node = node
	cache.element = nil
	cache.xi = nil
	cache.generation++
	return nil
}

// SetMeshLocation binds the cache to an element and parametric
// coordinate. xi may be nil to select the element's default interior
// location (used by whole-element predicates such as group membership).
func (cache *FieldCache) SetMeshLocation(element *mesh.Element, xi []float64) error {
	if element == nil {
		return fmt.Errorf("field cache: nil element location")
	}
	if xi != nil && len(xi) != element.Shape.Dimensions() {
		return fmt.Errorf("field cache: xi has %d components, element dimension is %d",
			len(xi), element.Shape.Dimensions())
	}
	cache.locationType = LocationMeshElement
	cache.element = element
	cache.xi = append(cache.xi[:0], xi...)
	cache.node = nil
	cache.generation++
	return nil
}

// ClearLocation unbinds any location; evaluations fail until a location
// is set again.
func (cache *FieldCache) ClearLocation() {
	cache.locationType = LocationNone
	cache.node = nil
	cache.element = nil
	cache.xi = nil
	cache.generation++
}

// SetTime sets the cache time.
func (cache *FieldCache) SetTime(time float64) {
	if cache.time != time {
		cache.time = time
		cache.generation++
	}
}

// RequestDerivatives sets how many parametric derivative directions
// subsequent evaluations compute. Zero disables derivative evaluation.
func (cache *FieldCache) RequestDerivatives(count int) error {
	if count < 0 {
		return fmt.Errorf("field cache: invalid derivative count %d", count)
	}
	if cache.derivativeCount != count {
		cache.derivativeCount = count
		cache.generation++
	}
	return nil
}

// invalidate forces re-evaluation of all fields on next request. Called
// by the manager when a field result changes.
func (cache *FieldCache) invalidate() {
	cache.generation++
}

// valueCache returns the scratch buffer for f, sized for the current
// component and derivative counts.
func (cache *FieldCache) valueCache(f *Field) *ValueCache {
	vc, ok := cache.entries[f]
	if !ok {
		vc = &ValueCache{}
		cache.entries[f] = vc
	}
	if len(vc.Values) != f.componentCount {
		vc.Values = make([]float64, f.componentCount)
	}
	nd := f.componentCount * cache.derivativeCount
	if len(vc.Derivatives) != nd {
		vc.Derivatives = make([]float64, nd)
	}
	return vc
}
