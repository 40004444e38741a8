package group

import (
	"fmt"

	"github.com/dbrnz/zinc-sub001/field"
	"github.com/dbrnz/zinc-sub001/mesh"
)

// Config selects owner group behavior at construction.
type Config struct {
	// SubelementMode controls whether element edits propagate to the
	// face and node sub-groups.
	SubelementMode SubelementHandlingMode
}

// OwnerGroup coordinates the element groups of a mesh family (one per
// dimension) and the node group over the shared nodeset, so that with
// full subelement handling an element added to any group drags its faces
// and nodes into the related groups, and removal releases them once no
// retained element uses them. Sub-groups hold only a non-owning
// back-reference to the owner.
type OwnerGroup struct {
	manager *field.Manager
	mode    SubelementHandlingMode
	topMesh *mesh.Mesh

	elementGroups map[*mesh.Mesh]*ElementGroup
	nodeGroup     *NodeGroup
	field         *field.Field
}

// NewOwnerGroup creates an owner group over topMesh and its face mesh
// chain down to the shared nodeset. Sub-groups are created lazily.
func NewOwnerGroup(manager *field.Manager, topMesh *mesh.Mesh, cfg Config) (*OwnerGroup, error) {
	if manager == nil {
		return nil, fmt.Errorf("owner group requires a field manager")
	}
	if topMesh == nil {
		return nil, fmt.Errorf("owner group requires a mesh")
	}
	o := &OwnerGroup{
		manager:       manager,
		mode:          cfg.SubelementMode,
		topMesh:       topMesh,
		elementGroups: make(map[*mesh.Mesh]*ElementGroup),
	}
	f, err := field.NewMembershipField(manager, o)
	if err != nil {
		return nil, err
	}
	o.field = f
	return o, nil
}

// Manager returns the field manager the owner batches changes through.
func (o *OwnerGroup) Manager() *field.Manager {
	return o.manager
}

// SubelementMode returns the propagation mode shared by all sub-groups.
func (o *OwnerGroup) SubelementMode() SubelementHandlingMode {
	return o.mode
}

// TopMesh returns the highest-dimension mesh of the family.
func (o *OwnerGroup) TopMesh() *mesh.Mesh {
	return o.topMesh
}

// MembershipField returns the composite boolean-valued field answering
// membership across all sub-groups: element locations consult the
// element group of the element's mesh, node locations the node group.
func (o *OwnerGroup) MembershipField() *field.Field {
	return o.field
}

// ElementGroup returns the element group for m, creating it on first
// use. m must be the top mesh or one of its face meshes.
func (o *OwnerGroup) ElementGroup(m *mesh.Mesh) (*ElementGroup, error) {
	if g, ok := o.elementGroups[m]; ok {
		return g, nil
	}
	if !o.ownsMesh(m) {
		return nil, fmt.Errorf("owner group: mesh %q is not part of the %q family",
			m.Name, o.topMesh.Name)
	}
	g, err := newElementGroup(o.manager, m, o)
	if err != nil {
		return nil, err
	}
	o.elementGroups[m] = g
	return g, nil
}

// NodeGroup returns the node group over the family's nodeset, creating
// it on first use.
func (o *OwnerGroup) NodeGroup() (*NodeGroup, error) {
	if o.nodeGroup == nil {
		g, err := newNodeGroup(o.manager, o.topMesh.Nodeset(), o)
		if err != nil {
			return nil, err
		}
		o.nodeGroup = g
	}
	return o.nodeGroup, nil
}

// ContainsElement consults the element group of the element's mesh, if
// one has been created. Implements field.MembershipQuery.
func (o *OwnerGroup) ContainsElement(e *mesh.Element) bool {
	if e == nil {
		return false
	}
	for m, g := range o.elementGroups {
		if m.FindElementByIdentifier(e.Identifier) == e {
			return g.ContainsElement(e)
		}
	}
	return false
}

// ContainsNode consults the node group, if one has been created.
// Implements field.MembershipQuery.
func (o *OwnerGroup) ContainsNode(n *mesh.Node) bool {
	if o.nodeGroup == nil {
		return false
	}
	return o.nodeGroup.ContainsNode(n)
}

// IsEmpty reports whether every created sub-group is empty.
func (o *OwnerGroup) IsEmpty() bool {
	for _, g := range o.elementGroups {
		if !g.IsEmpty() {
			return false
		}
	}
	return o.nodeGroup == nil || o.nodeGroup.IsEmpty()
}

// Clear empties every created sub-group within one change bracket.
func (o *OwnerGroup) Clear() {
	o.manager.BeginChange()
	defer o.manager.EndChange()
	for _, g := range o.elementGroups {
		g.Clear()
	}
	if o.nodeGroup != nil {
		o.nodeGroup.Clear()
	}
}

// ownsMesh reports whether m belongs to the owner's mesh family.
func (o *OwnerGroup) ownsMesh(m *mesh.Mesh) bool {
	for fam := o.topMesh; fam != nil; fam = fam.FaceMesh() {
		if fam == m {
			return true
		}
	}
	return false
}

// addSubelements inserts the faces of e recursively down to nodes into
// the related sub-groups. Runs inside the caller's change bracket so the
// many sub-group edits coalesce into one notification per group.
func (o *OwnerGroup) addSubelements(parent *ElementGroup, e *mesh.Element) {
	if faceMesh := parent.Mesh().FaceMesh(); faceMesh != nil {
		fg, err := o.ElementGroup(faceMesh)
		if err == nil {
			for _, faceIdentifier := range e.Faces {
				if fe := faceMesh.FindElementByIdentifier(faceIdentifier); fe != nil {
					// Recursion through AddElement handles deeper dimensions.
					fg.AddElement(fe)
				}
			}
		}
	}
	ng, err := o.NodeGroup()
	if err != nil {
		return
	}
	nodeset := parent.Mesh().Nodeset()
	for _, nodeIdentifier := range e.Nodes {
		if n := nodeset.FindNodeByIdentifier(nodeIdentifier); n != nil {
			ng.AddNode(n)
		}
	}
}

// removeSubelements removes the faces and nodes of e from the related
// sub-groups, but only those no remaining element of the parent group
// still uses. Usage is established by re-scanning the retained members
// (see ElementGroup.anyElementUsesFace) rather than by reference counts,
// so membership can never drift from the scan's answer.
func (o *OwnerGroup) removeSubelements(parent *ElementGroup, e *mesh.Element) {
	if faceMesh := parent.Mesh().FaceMesh(); faceMesh != nil {
		if fg, ok := o.elementGroups[faceMesh]; ok {
			for _, faceIdentifier := range e.Faces {
				if parent.anyElementUsesFace(faceIdentifier) {
					continue
				}
				if fe := faceMesh.FindElementByIdentifier(faceIdentifier); fe != nil {
					fg.RemoveElement(fe)
				}
			}
		}
	}
	if o.nodeGroup == nil {
		return
	}
	nodeset := parent.Mesh().Nodeset()
	for _, nodeIdentifier := range e.Nodes {
		if parent.anyElementUsesNode(nodeIdentifier) {
			continue
		}
		if n := nodeset.FindNodeByIdentifier(nodeIdentifier); n != nil {
			o.nodeGroup.RemoveNode(n)
		}
	}
}

// String returns a one-line summary of the owner and its sub-groups.
func (o *OwnerGroup) String() string {
	elems := 0
	for _, g := range o.elementGroups {
		elems += g.Size()
	}
	nodes := 0
	if o.nodeGroup != nil {
		nodes = o.nodeGroup.Size()
	}
	return fmt.Sprintf("OwnerGroup{%s, mode=%s, elements=%d, nodes=%d}",
		o.topMesh.Name, o.mode, elems, nodes)
}
