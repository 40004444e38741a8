package field

import (
	"fmt"

	"github.com/dbrnz/zinc-sub001/mesh"
)

// MembershipQuery answers whether a mesh location belongs to a derived
// membership collection. Subobject groups implement this to expose their
// membership as a boolean-valued field.
type MembershipQuery interface {
	ContainsElement(e *mesh.Element) bool
	ContainsNode(n *mesh.Node) bool
}

// membershipCore evaluates 1 when the cache location is in the bound
// collection, 0 otherwise. No derivative support. The query is held as a
// non-owning reference; the group drives change notification through the
// field when its membership mutates.
type membershipCore struct {
	query MembershipQuery
}

// NewMembershipField creates a single-component boolean-valued field
// over a membership collection.
func NewMembershipField(manager *Manager, query MembershipQuery) (*Field, error) {
	if query == nil {
		return nil, fmt.Errorf("membership field requires a membership query")
	}
	return NewField(manager, &membershipCore{query: query})
}

func (c *membershipCore) Name() string { return "group_membership" }

func (c *membershipCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 0 {
		return 0, fmt.Errorf("takes no source fields")
	}
	return 1, nil
}

func (c *membershipCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	inside := false
	switch cache.LocationType() {
	case LocationMeshElement:
		inside = c.query.ContainsElement(cache.Element())
	case LocationNode:
		inside = c.query.ContainsNode(cache.Node())
	default:
		return false
	}
	if inside {
		out.Values[0] = 1
	} else {
		out.Values[0] = 0
	}
	out.DerivativesValid = false
	return true
}

// IsTrueAt evaluates a predicate field at the cache location: true when
// evaluation succeeds and the first component is nonzero. Used by the
// conditional group operations.
func IsTrueAt(predicate *Field, cache *FieldCache) bool {
	vc, ok := predicate.cachedEvaluate(cache)
	if !ok {
		return false
	}
	return vc.Values[0] != 0
}
