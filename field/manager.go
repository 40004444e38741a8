package field

import "fmt"

// Change is the per-field change summary delivered to manager listeners.
type Change uint8

const (
	ChangeNone   Change = 0
	ChangeAdd    Change = 1 << 0 // field added to the manager
	ChangeRemove Change = 1 << 1 // field removed from the manager
	// ChangeResult marks that evaluated values are stale; it propagates
	// transitively to all dependent fields.
	ChangeResult     Change = 1 << 2
	ChangeDefinition Change = 1 << 3 // non-result attribute changed
)

// String returns the set flags as a readable list.
func (c Change) String() string {
	if c == ChangeNone {
		return "NONE"
	}
	names := ""
	appendFlag := func(flag Change, name string) {
		if c&flag != 0 {
			if names != "" {
				names += "|"
			}
			names += name
		}
	}
	appendFlag(ChangeAdd, "ADD")
	appendFlag(ChangeRemove, "REMOVE")
	appendFlag(ChangeResult, "RESULT")
	appendFlag(ChangeDefinition, "DEFINITION")
	return names
}

// Listener receives the accumulated per-field changes flushed at the end
// of a begin/end-change bracket. The map must not be retained.
type Listener func(changes map[*Field]Change)

// Manager owns a set of fields sharing one region and batches their
// change notifications: BeginChange/EndChange nest by reference count,
// and accumulated changes flush to listeners only when the depth returns
// to zero. A manager is single threaded; re-entrant brackets from within
// another bracket are expected and safe.
type Manager struct {
	fields    map[*Field]struct{}
	caches    map[*FieldCache]struct{}
	listeners []Listener

	cacheDepth int
	pending    map[*Field]Change
}

// NewManager creates an empty field manager.
func NewManager() *Manager {
	return &Manager{
		fields:  make(map[*Field]struct{}),
		caches:  make(map[*FieldCache]struct{}),
		pending: make(map[*Field]Change),
	}
}

// Size returns the number of fields owned by the manager.
func (m *Manager) Size() int {
	return len(m.fields)
}

// AddListener registers a listener for flushed change notifications.
func (m *Manager) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// BeginChange opens a change bracket. Brackets nest; only the outermost
// EndChange flushes notifications.
func (m *Manager) BeginChange() {
	m.cacheDepth++
}

// EndChange closes a change bracket, flushing accumulated notifications
// when the outermost bracket closes. Calling EndChange without a
// matching BeginChange is a programmer error: it is reported via the
// returned error and the depth clamps at zero.
func (m *Manager) EndChange() error {
	if m.cacheDepth == 0 {
		return fmt.Errorf("field manager: EndChange without matching BeginChange")
	}
	m.cacheDepth--
	if m.cacheDepth == 0 {
		m.flush()
	}
	return nil
}

// register adds a freshly constructed field to the manager.
func (m *Manager) register(f *Field) {
	m.fields[f] = struct{}{}
	m.setChanged(f, ChangeAdd)
}

// RemoveField detaches a field from the manager. The field must not be
// evaluated afterwards.
func (m *Manager) RemoveField(f *Field) bool {
	if _, ok := m.fields[f]; !ok {
		return false
	}
	delete(m.fields, f)
	m.setChanged(f, ChangeRemove)
	return true
}

// setChanged accumulates a change flag for f. ChangeResult propagates to
// all transitive dependents and invalidates registered caches so the
// next evaluation recomputes; recomputation itself stays lazy.
func (m *Manager) setChanged(f *Field, c Change) {
	m.mark(f, c)
	if c&ChangeResult != 0 {
		for cache := range m.caches {
			cache.invalidate()
		}
	}
	if m.cacheDepth == 0 {
		m.flush()
	}
}

func (m *Manager) mark(f *Field, c Change) {
	prev := m.pending[f]
	if prev&c == c {
		return
	}
	m.pending[f] = prev | c
	if c&ChangeResult != 0 {
		for _, dep := range f.dependents {
			m.mark(dep, ChangeResult)
		}
	}
}

func (m *Manager) flush() {
	if len(m.pending) == 0 {
		return
	}
	changes := m.pending
	m.pending = make(map[*Field]Change)
	for _, l := range m.listeners {
		l(changes)
	}
}
