package field

import (
	"fmt"
	"strings"
)

// Core is the pluggable evaluation strategy owned by a Field. Evaluate
// writes the field's values (and derivatives, when the cache requests
// them and the sources provide valid ones) into out and returns false
// when the field is not defined at the cache location. Failure is a
// first-class outcome, not an error.
type Core interface {
	Name() string

	// ComponentCount validates the source fields for this core and
	// returns the number of components the field produces.
	ComponentCount(sources []*Field) (int, error)

	Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool
}

// AssignCore is implemented by cores that support the inverse operation:
// assigning a target value back through the field to its source. The
// owning field is passed so terminal cores can flag their result changed
// and forwarding cores can reach their sources.
type AssignCore interface {
	Core
	Assign(cache *FieldCache, f *Field, values []float64) error
}

// Field is a node in the evaluation dependency graph. Identity is
// pointer identity. The source fields are fixed at construction; the
// core is owned, exactly one per field. Fields are created through a
// Manager, which batches their change notifications.
type Field struct {
	manager        *Manager
	core           Core
	sources        []*Field
	dependents     []*Field
	componentCount int
	managed        bool
}

// NewField creates a field with the given core over the source fields.
// All sources must belong to manager; the core validates component count
// compatibility. This is the generic constructor behind the typed
// helpers (NewNormalize, NewCrossProduct, ...).
func NewField(manager *Manager, core Core, sources ...*Field) (*Field, error) {
	if manager == nil {
		panic("field: nil manager")
	}
	if core == nil {
		panic("field: nil core")
	}
	for i, s := range sources {
		if s == nil {
			return nil, fmt.Errorf("field %s: source %d is nil", core.Name(), i)
		}
		if s.manager != manager {
			return nil, fmt.Errorf("field %s: source %d belongs to a different manager",
				core.Name(), i)
		}
	}
	componentCount, err := core.ComponentCount(sources)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", core.Name(), err)
	}
	f := &Field{
		manager:        manager,
		core:           core,
		sources:        append([]*Field(nil), sources...),
		componentCount: componentCount,
	}
	for _, s := range f.sources {
		s.dependents = append(s.dependents, f)
	}
	manager.register(f)
	return f, nil
}

// ComponentCount returns the number of components the field produces.
func (f *Field) ComponentCount() int {
	return f.componentCount
}

// Manager returns the manager owning this field.
func (f *Field) Manager() *Manager {
	return f.manager
}

// Core returns the field's evaluation core.
func (f *Field) Core() Core {
	return f.core
}

// SourceCount returns the number of source fields.
func (f *Field) SourceCount() int {
	return len(f.sources)
}

// Source returns source field i.
func (f *Field) Source(i int) *Field {
	return f.sources[i]
}

// Managed reports whether the manager keeps the field alive with no
// external references.
func (f *Field) Managed() bool {
	return f.managed
}

// SetManaged marks or unmarks the field as manager-retained.
func (f *Field) SetManaged(managed bool) {
	if f.managed != managed {
		f.managed = managed
		f.manager.setChanged(f, ChangeDefinition)
	}
}

// Evaluate computes the field's values (and requested derivatives) at
// the cache location, memoized per cache generation: a field evaluates
// at most once per generation regardless of how many dependents request
// it. Returns false when the field is not defined at the location.
func (f *Field) Evaluate(cache *FieldCache) bool {
	_, ok := f.cachedEvaluate(cache)
	return ok
}

// EvaluateReal evaluates the field and copies its values into out, which
// must have ComponentCount entries. Returns false on evaluation failure.
func (f *Field) EvaluateReal(cache *FieldCache, out []float64) bool {
	vc, ok := f.cachedEvaluate(cache)
	if !ok {
		return false
	}
	copy(out, vc.Values)
	return true
}

// EvaluateDerivatives evaluates the field and copies its derivative
// buffer into out (ComponentCount x cache.DerivativeCount() entries,
// component major). Returns false when evaluation fails or derivatives
// are unavailable at the requested order.
func (f *Field) EvaluateDerivatives(cache *FieldCache, out []float64) bool {
	vc, ok := f.cachedEvaluate(cache)
	if !ok || !vc.DerivativesValid {
		return false
	}
	copy(out, vc.Derivatives)
	return true
}

// cachedEvaluate is the memoized evaluation used by dependents: sources
// are evaluated through this path so each field runs its core at most
// once per cache generation.
func (f *Field) cachedEvaluate(cache *FieldCache) (*ValueCache, bool) {
	if cache == nil {
		return nil, false
	}
	vc := cache.valueCache(f)
	if vc.evaluated && vc.generation == cache.generation {
		return vc, vc.ok
	}
	vc.DerivativesValid = false
	vc.ok = f.core.Evaluate(cache, f.sources, vc)
	vc.evaluated = true
	vc.generation = cache.generation
	return vc, vc.ok
}

// Assign sets the field to the given values at the cache location,
// propagating the inverse operation to its sources. Only fields whose
// core implements AssignCore support assignment.
func (f *Field) Assign(cache *FieldCache, values []float64) error {
	if len(values) != f.componentCount {
		return fmt.Errorf("field %s: assign got %d values, want %d",
			f.core.Name(), len(values), f.componentCount)
	}
	ac, ok := f.core.(AssignCore)
	if !ok {
		return fmt.Errorf("field %s: assignment not supported", f.core.Name())
	}
	return ac.Assign(cache, f, values)
}

// SetChanged marks the field's result as changed, invalidating cached
// evaluations and (transitively) those of all dependents. Notification
// to listeners is batched by the manager's begin/end-change bracket.
func (f *Field) SetChanged() {
	f.manager.setChanged(f, ChangeResult)
}

// String returns a short description of the field and its source chain.
func (f *Field) String() string {
	var sb strings.Builder
	sb.WriteString(f.core.Name())
	if len(f.sources) > 0 {
		sb.WriteString("(")
		for i, s := range f.sources {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.core.Name())
		}
		sb.WriteString(")")
	}
	sb.WriteString(fmt.Sprintf("[%d]", f.componentCount))
	return sb.String()
}
