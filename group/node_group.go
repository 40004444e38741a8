package group

import (
	"fmt"
	"sort"

	"github.com/dbrnz/zinc-sub001/field"
	"github.com/dbrnz/zinc-sub001/mesh"
)

// NodeGroup is a derived membership collection over one master nodeset,
// keyed by node identifier. Node groups are always created over the
// master nodeset, never over another group, so membership can never
// become recursively defined.
type NodeGroup struct {
	SubobjectGroup

	nodeset *mesh.Nodeset
	nodes   map[int]*mesh.Node
	manager *field.Manager
	field   *field.Field
}

// NewNodeGroup creates a standalone node group over the master nodeset.
func NewNodeGroup(manager *field.Manager, nodeset *mesh.Nodeset) (*NodeGroup, error) {
	return newNodeGroup(manager, nodeset, nil)
}

func newNodeGroup(manager *field.Manager, nodeset *mesh.Nodeset, owner *OwnerGroup) (*NodeGroup, error) {
	if manager == nil {
		return nil, fmt.Errorf("node group requires a field manager")
	}
	if nodeset == nil {
		return nil, fmt.Errorf("node group requires a nodeset")
	}
	g := &NodeGroup{
		nodeset: nodeset,
		nodes:   make(map[int]*mesh.Node),
		manager: manager,
	}
	g.owner = owner
	f, err := field.NewMembershipField(manager, g)
	if err != nil {
		return nil, err
	}
	g.field = f
	nodeset.OnNodeDestroyed(g.evict)
	return g, nil
}

// Nodeset returns the master nodeset the group is defined over.
func (g *NodeGroup) Nodeset() *mesh.Nodeset {
	return g.nodeset
}

// MembershipField returns the boolean-valued field exposing this group's
// membership to the evaluation graph.
func (g *NodeGroup) MembershipField() *field.Field {
	return g.field
}

// Size returns the number of nodes in the group.
func (g *NodeGroup) Size() int {
	return len(g.nodes)
}

// IsEmpty reports whether the group contains no nodes.
func (g *NodeGroup) IsEmpty() bool {
	return len(g.nodes) == 0
}

// ContainsIdentifier reports whether the node identifier is in the group.
func (g *NodeGroup) ContainsIdentifier(identifier int) bool {
	_, ok := g.nodes[identifier]
	return ok
}

// ContainsIndex reports whether the node at the given creation-order
// nodeset index is in the group.
func (g *NodeGroup) ContainsIndex(index int) bool {
	n := g.nodeset.FindNodeByIndex(index)
	if n == nil {
		return false
	}
	_, ok := g.nodes[n.Identifier]
	return ok
}

// ContainsNode reports whether n is a current node of the master nodeset
// and a member of the group. Implements field.MembershipQuery.
func (g *NodeGroup) ContainsNode(n *mesh.Node) bool {
	if n == nil || g.nodeset.FindNodeByIdentifier(n.Identifier) != n {
		return false
	}
	_, ok := g.nodes[n.Identifier]
	return ok
}

// ContainsElement always reports false: node groups hold nodes only.
// Implements field.MembershipQuery.
func (g *NodeGroup) ContainsElement(e *mesh.Element) bool {
	return false
}

// Identifiers returns the member node identifiers in ascending order.
func (g *NodeGroup) Identifiers() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AddNode inserts n into the group. Adding a node already in the group
// is a no-op returning false.
func (g *NodeGroup) AddNode(n *mesh.Node) bool {
	if n == nil || g.nodeset.FindNodeByIdentifier(n.Identifier) != n {
		return false
	}
	if _, present := g.nodes[n.Identifier]; present {
		return false
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	g.nodes[n.Identifier] = n
	g.detail.NoteAdd()
	g.update()
	return true
}

// RemoveNode removes n from the group. Removing an absent node is a
// no-op returning false.
func (g *NodeGroup) RemoveNode(n *mesh.Node) bool {
	if n == nil {
		return false
	}
	if _, present := g.nodes[n.Identifier]; !present {
		return false
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	delete(g.nodes, n.Identifier)
	g.detail.NoteRemove()
	g.update()
	return true
}

// Clear removes all nodes from the group. Returns false if the group was
// already empty.
func (g *NodeGroup) Clear() bool {
	if len(g.nodes) == 0 {
		return false
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	g.nodes = make(map[int]*mesh.Node)
	g.detail.NoteRemove()
	g.update()
	return true
}

// AddNodesConditional scans the whole master nodeset, evaluates the
// predicate field at each node, and adds nodes where it is true.
// Returns the number of nodes added.
func (g *NodeGroup) AddNodesConditional(predicate *field.Field, cache *field.FieldCache) (int, error) {
	return g.conditional(predicate, cache, true)
}

// RemoveNodesConditional removes the nodes where the predicate field is
// true. Returns the number of nodes removed.
func (g *NodeGroup) RemoveNodesConditional(predicate *field.Field, cache *field.FieldCache) (int, error) {
	return g.conditional(predicate, cache, false)
}

func (g *NodeGroup) conditional(predicate *field.Field, cache *field.FieldCache, add bool) (int, error) {
	if predicate == nil || cache == nil {
		return 0, fmt.Errorf("node group: conditional edit requires predicate field and cache")
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	count := 0
	for _, identifier := range g.nodeset.NodeIdentifiers() {
		n := g.nodeset.FindNodeByIdentifier(identifier)
		if err := cache.SetNode(n); err != nil {
			return count, err
		}
		if !field.IsTrueAt(predicate, cache) {
			continue
		}
		if add {
			if g.AddNode(n) {
				count++
			}
		} else {
			if g.RemoveNode(n) {
				count++
			}
		}
	}
	return count, nil
}

// update flags the membership field result changed so dependent cached
// evaluations go stale.
func (g *NodeGroup) update() {
	g.field.SetChanged()
}

// evict drops the identifier of an externally destroyed node.
func (g *NodeGroup) evict(identifier int) {
	if _, present := g.nodes[identifier]; !present {
		return
	}
	g.manager.BeginChange()
	defer g.manager.EndChange()
	delete(g.nodes, identifier)
	g.detail.NoteRemove()
	g.update()
}

// String returns a one-line summary of the group.
func (g *NodeGroup) String() string {
	return fmt.Sprintf("NodeGroup{%s, size=%d, changes=%s}",
		g.nodeset.Name, len(g.nodes), g.detail.Summary())
}
