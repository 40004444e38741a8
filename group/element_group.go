package group

import (
	"fmt"

	"github.com/dbrnz/zinc-sub001/field"
	"github.com/dbrnz/zinc-sub001/labels"
	"github.com/dbrnz/zinc-sub001/mesh"
)

// ElementGroup is a derived membership collection over one mesh, backed
// by an ordered labels group of element identifiers. Every mutation
// accumulates change detail and flags the group's membership field so
// dependent evaluations go stale; notification is batched by the field
// manager's begin/end-change bracket.
type ElementGroup struct {
	SubobjectGroup

	mesh    *mesh.Mesh
	labels  *labels.LabelsGroup
	manager *field.Manager
	field   *field.Field
}

// NewElementGroup creates a standalone element group over m. Standalone
// groups never propagate to faces or nodes; use an OwnerGroup for that.
func NewElementGroup(manager *field.Manager, m *mesh.Mesh) (*ElementGroup, error) {
	return newElementGroup(manager, m, nil)
}

func newElementGroup(manager *field.Manager, m *mesh.Mesh, owner *OwnerGroup) (*ElementGroup, error) {
	if manager == nil {
		return nil, fmt.Errorf("element group requires a field manager")
	}
	if m == nil {
		return nil, fmt.Errorf("element group requires a mesh")
	}
	g := &ElementGroup{
		mesh:    m,
		labels:  labels.NewLabelsGroup(),
		manager: manager,
	}
	g.owner = owner
	f, err := field.NewMembershipField(manager, g)
	if err != nil {
		return nil, err
	}
	g.field = f
	// Evict identifiers of externally destroyed elements so membership
	// never outlives mesh validity.
	m.OnElementDestroyed(g.evict)
	return g, nil
}

// Mesh returns the mesh the group is defined over.
func (g *ElementGroup) Mesh() *mesh.Mesh {
	return g.mesh
}

// MembershipField returns the boolean-valued field exposing this group's
// membership to the evaluation graph.
func (g *ElementGroup) MembershipField() *field.Field {
	return g.field
}

// Size returns the number of elements in the group.
func (g *ElementGroup) Size() int {
	return g.labels.Size()
}

// IsEmpty reports whether the group contains no elements.
func (g *ElementGroup) IsEmpty() bool {
	return g.labels.IsEmpty()
}

// ContainsIdentifier reports whether the element identifier is in the
// group.
func (g *ElementGroup) ContainsIdentifier(identifier int) bool {
	return g.labels.Contains(identifier)
}

// ContainsIndex reports whether the element at the given creation-order
// mesh index is in the group.
func (g *ElementGroup) ContainsIndex(index int) bool {
	e := g.mesh.FindElementByIndex(index)
	return e != nil && g.labels.Contains(e.Identifier)
}

// ContainsElement reports whether e is a current element of the group's
// mesh and a member of the group. Implements field.MembershipQuery.
func (g *ElementGroup) ContainsElement(e *mesh.Element) bool {
	if e == nil || g.mesh.FindElementByIdentifier(e.Identifier) != e {
		return false
	}
	return g.labels.Contains(e.Identifier)
}

// ContainsNode always reports false: element groups hold elements only.
// Implements field.MembershipQuery.
func (g *ElementGroup) ContainsNode(n *mesh.Node) bool {
	return false
}

// CreateIterator returns an iterator over the member identifiers in
// ascending order. The iterator fails fast after any group mutation.
func (g *ElementGroup) CreateIterator() *labels.Iterator {
	return g.labels.CreateIterator()
}

// Identifiers returns the member identifiers in ascending order.
func (g *ElementGroup) Identifiers() []int {
	return g.labels.Labels()
}

// AddElement inserts e into the group. Adding an element already in the
// group is a no-op returning false: no change detail is flagged. Under
// full subelement handling the element's faces are inserted recursively
// down to nodes, all within one change bracket.
func (g *ElementGroup) AddElement(e *mesh.Element) bool {
	if e == nil || g.mesh.FindElementByIdentifier(e.Identifier) != e {
		return false
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	if !g.labels.Add(e.Identifier) {
		return false
	}
	g.detail.NoteAdd()
	g.update()
	if g.HandlingMode() == ModeFull {
		g.owner.addSubelements(g, e)
	}
	return true
}

// AddElementIdentifierRange inserts every existing element with an
// identifier in [first, last] inclusive, returning the number added.
func (g *ElementGroup) AddElementIdentifierRange(first, last int) int {
	g.manager.BeginChange()
	defer g.manager.EndChange()
	added := 0
	for identifier := first; identifier <= last; identifier++ {
		if e := g.mesh.FindElementByIdentifier(identifier); e != nil {
			if g.AddElement(e) {
				added++
			}
		}
	}
	return added
}

// RemoveElement removes e from the group. Removing an absent element is
// a no-op returning false. Under full subelement handling each face and
// node of e is removed from the related sub-group only when no remaining
// element of this group still uses it; the check re-scans the retained
// members rather than keeping per-face reference counts, costing
// O(size x degree) per removal.
func (g *ElementGroup) RemoveElement(e *mesh.Element) bool {
	if e == nil {
		return false
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	if !g.labels.Remove(e.Identifier) {
		return false
	}
	g.detail.NoteRemove()
	g.update()
	if g.HandlingMode() == ModeFull {
		g.owner.removeSubelements(g, e)
	}
	return true
}

// RemoveElementIdentifier removes the element with the given identifier,
// resolving it through the mesh. Returns false if the identifier is not
// in the group.
func (g *ElementGroup) RemoveElementIdentifier(identifier int) bool {
	if e := g.mesh.FindElementByIdentifier(identifier); e != nil {
		return g.RemoveElement(e)
	}
	// Element already destroyed externally: evict the bare label.
	g.manager.BeginChange()
	defer g.manager.EndChange()
	if !g.labels.Remove(identifier) {
		return false
	}
	g.detail.NoteRemove()
	g.update()
	return true
}

// Clear removes all elements from the group. Returns false if the group
// was already empty. Under full subelement handling each member is
// removed individually so its derived faces and nodes leave the related
// sub-groups too, all within one change bracket.
func (g *ElementGroup) Clear() bool {
	if g.labels.IsEmpty() {
		return false
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	if g.HandlingMode() == ModeFull {
		for _, identifier := range g.labels.Labels() {
			if e := g.mesh.FindElementByIdentifier(identifier); e != nil {
				g.RemoveElement(e)
				continue
			}
			if g.labels.Remove(identifier) {
				g.detail.NoteRemove()
				g.update()
			}
		}
		return true
	}
	g.labels.Clear()
	g.detail.NoteRemove()
	g.update()
	return true
}

// AddElementsConditional scans the whole mesh, evaluates the predicate
// field at each element's default location, and adds elements where it
// is true. Returns the number of elements added. This is an O(mesh size)
// scan; edits are coalesced within one change bracket.
func (g *ElementGroup) AddElementsConditional(predicate *field.Field, cache *field.FieldCache) (int, error) {
	return g.conditional(predicate, cache, true)
}

// RemoveElementsConditional is the dual of AddElementsConditional:
// elements where the predicate is true are removed. Returns the number
// of elements removed.
func (g *ElementGroup) RemoveElementsConditional(predicate *field.Field, cache *field.FieldCache) (int, error) {
	return g.conditional(predicate, cache, false)
}

func (g *ElementGroup) conditional(predicate *field.Field, cache *field.FieldCache, add bool) (int, error) {
	if predicate == nil || cache == nil {
		return 0, fmt.Errorf("element group: conditional edit requires predicate field and cache")
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	count := 0
	for _, identifier := range g.mesh.ElementIdentifiers() {
		e := g.mesh.FindElementByIdentifier(identifier)
		if err := cache.SetMeshLocation(e, nil); err != nil {
			return count, err
		}
		if !field.IsTrueAt(predicate, cache) {
			continue
		}
		if add {
			if g.AddElement(e) {
				count++
			}
		} else {
			if g.RemoveElement(e) {
				count++
			}
		}
	}
	return count, nil
}

// anyElementUsesFace reports whether any element currently in the group
// has the given face.
func (g *ElementGroup) anyElementUsesFace(faceIdentifier int) bool {
	it := g.labels.CreateIterator()
	for identifier, ok := it.Next(); ok; identifier, ok = it.Next() {
		if e := g.mesh.FindElementByIdentifier(identifier); e != nil && e.HasFace(faceIdentifier) {
			return true
		}
	}
	return false
}

// anyElementUsesNode reports whether any element currently in the group
// has the given corner node.
func (g *ElementGroup) anyElementUsesNode(nodeIdentifier int) bool {
	it := g.labels.CreateIterator()
	for identifier, ok := it.Next(); ok; identifier, ok = it.Next() {
		if e := g.mesh.FindElementByIdentifier(identifier); e != nil && e.HasNode(nodeIdentifier) {
			return true
		}
	}
	return false
}

// update flags the membership field result changed so dependent cached
// evaluations go stale. Recomputation stays lazy.
func (g *ElementGroup) update() {
	g.field.SetChanged()
}

// evict drops an externally destroyed element. The element is already
// detached from the mesh but its connectivity is still readable, so
// under full subelement handling its faces and nodes are released from
// the sub-groups exactly as on an ordinary removal.
func (g *ElementGroup) evict(e *mesh.Element) {
	g.manager.BeginChange()
	defer g.manager.EndChange()
	if !g.labels.Remove(e.Identifier) {
		return
	}
	g.detail.NoteRemove()
	g.update()
	if g.HandlingMode() == ModeFull {
		g.owner.removeSubelements(g, e)
	}
}

// String returns a one-line summary of the group.
func (g *ElementGroup) String() string {
	return fmt.Sprintf("ElementGroup{%s, size=%d, changes=%s}",
		g.mesh.Name, g.labels.Size(), g.detail.Summary())
}
