// Package mesh provides the in-memory mesh and nodeset collaborators that
// element and node groups are defined over: element shapes, face
// connectivity down to nodes, and identifier bookkeeping. Field
// interpolation and file readers live outside this package.
package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// GeometryType identifies the shape of an element
type GeometryType uint8

const (
	// 3D element types
	Tet     GeometryType = iota // Tetrahedron
	Hex                         // Hexahedron
	Prism                       // Triangular prism
	Pyramid                     // Square-based pyramid

	// 2D element types
	Tri       // Triangle
	Rectangle // Rectangle/Quadrilateral

	// 1D element type
	Line // Line segment
)

// Dimensions returns the spatial dimension of the element shape.
func (g GeometryType) Dimensions() int {
	switch g {
	case Tet, Hex, Prism, Pyramid:
		return 3
	case Tri, Rectangle:
		return 2
	case Line:
		return 1
	}
	return 0
}

// NumFaces returns the number of (dimension-1) faces of the shape.
// 1D elements have no faces; their boundary entities are nodes.
func (g GeometryType) NumFaces() int {
	switch g {
	case Tet:
		return 4
	case Hex:
		return 6
	case Prism:
		return 5
	case Pyramid:
		return 5
	case Tri:
		return 3
	case Rectangle:
		return 4
	}
	return 0
}

// Element is one element of a Mesh: an identifier, a creation-order
// index, its shape, the identifiers of its (dimension-1) faces in the
// face mesh, and the identifiers of its corner nodes in the owning
// nodeset.
type Element struct {
	Identifier int
	// Index is the creation-order index within the mesh, stable for the
	// element's lifetime. Indices of destroyed elements are not reused.
	Index int
	Shape GeometryType
	Faces []int // face identifiers in the face mesh; empty for 1D
	Nodes []int // corner node identifiers
}

// HasFace reports whether faceIdentifier is one of the element's faces.
func (e *Element) HasFace(faceIdentifier int) bool {
	for _, f := range e.Faces {
		if f == faceIdentifier {
			return true
		}
	}
	return false
}

// HasNode reports whether nodeIdentifier is one of the element's corner nodes.
func (e *Element) HasNode(nodeIdentifier int) bool {
	for _, n := range e.Nodes {
		if n == nodeIdentifier {
			return true
		}
	}
	return false
}

// Mesh holds the elements of one dimension, keyed by identifier, with a
// link to the (dimension-1) face mesh and to the nodeset the whole mesh
// family is built over. Element identifiers are positive and unique per
// mesh; validity of an identifier is owned by the mesh, and interested
// collaborators (groups) register destruction hooks to evict stale
// identifiers when an element is destroyed externally.
type Mesh struct {
	Name      string
	Dimension int

	elements     map[int]*Element
	byIndex      map[int]*Element
	nextIndex    int
	faceMesh     *Mesh
	nodeset      *Nodeset
	destroyHooks []func(e *Element)
}

// NewMesh creates an empty mesh of the given dimension over nodeset.
// faceMesh may be nil for 1D meshes.
func NewMesh(name string, dimension int, faceMesh *Mesh, nodeset *Nodeset) (*Mesh, error) {
	if dimension < 1 || dimension > 3 {
		return nil, fmt.Errorf("invalid mesh dimension %d", dimension)
	}
	if nodeset == nil {
		return nil, fmt.Errorf("mesh %q requires a nodeset", name)
	}
	if dimension > 1 && faceMesh == nil {
		return nil, fmt.Errorf("mesh %q of dimension %d requires a face mesh", name, dimension)
	}
	if faceMesh != nil && faceMesh.Dimension != dimension-1 {
		return nil, fmt.Errorf("mesh %q: face mesh has dimension %d, want %d",
			name, faceMesh.Dimension, dimension-1)
	}
	return &Mesh{
		Name:      name,
		Dimension: dimension,
		elements:  make(map[int]*Element),
		byIndex:   make(map[int]*Element),
		faceMesh:  faceMesh,
		nodeset:   nodeset,
	}, nil
}

// FaceMesh returns the (dimension-1) mesh holding this mesh's faces, or
// nil for a 1D mesh.
func (m *Mesh) FaceMesh() *Mesh {
	return m.faceMesh
}

// Nodeset returns the nodeset this mesh family is built over.
func (m *Mesh) Nodeset() *Nodeset {
	return m.nodeset
}

// Size returns the number of elements in the mesh.
func (m *Mesh) Size() int {
	return len(m.elements)
}

// FindElementByIdentifier returns the element with the given identifier,
// or nil if no such element exists.
func (m *Mesh) FindElementByIdentifier(identifier int) *Element {
	return m.elements[identifier]
}

// FindElementByIndex returns the element with the given creation-order
// index, or nil if no such element exists.
func (m *Mesh) FindElementByIndex(index int) *Element {
	return m.byIndex[index]
}

// CreateElement adds an element with the given identifier, shape, face
// identifiers and node identifiers. Faces must already exist in the face
// mesh and nodes in the nodeset.
func (m *Mesh) CreateElement(identifier int, shape GeometryType, faces, nodes []int) (*Element, error) {
	if identifier <= 0 {
		return nil, fmt.Errorf("mesh %q: element identifier %d must be positive", m.Name, identifier)
	}
	if _, exists := m.elements[identifier]; exists {
		return nil, fmt.Errorf("mesh %q: element %d already exists", m.Name, identifier)
	}
	if shape.Dimensions() != m.Dimension {
		return nil, fmt.Errorf("mesh %q: shape dimension %d does not match mesh dimension %d",
			m.Name, shape.Dimensions(), m.Dimension)
	}
	if m.Dimension > 1 && len(faces) != shape.NumFaces() {
		return nil, fmt.Errorf("mesh %q: element %d has %d faces, shape requires %d",
			m.Name, identifier, len(faces), shape.NumFaces())
	}
	for _, f := range faces {
		if m.faceMesh.FindElementByIdentifier(f) == nil {
			return nil, fmt.Errorf("mesh %q: element %d references missing face %d",
				m.Name, identifier, f)
		}
	}
	for _, n := range nodes {
		if m.nodeset.FindNodeByIdentifier(n) == nil {
			return nil, fmt.Errorf("mesh %q: element %d references missing node %d",
				m.Name, identifier, n)
		}
	}
	e := &Element{
		Identifier: identifier,
		Index:      m.nextIndex,
		Shape:      shape,
		Faces:      append([]int(nil), faces...),
		Nodes:      append([]int(nil), nodes...),
	}
	m.nextIndex++
	m.elements[identifier] = e
	m.byIndex[e.Index] = e
	return e, nil
}

// DestroyElement removes the element with the given identifier and fires
// registered destruction hooks so groups can evict the stale identifier.
// Returns false if no such element exists.
func (m *Mesh) DestroyElement(identifier int) bool {
	e, exists := m.elements[identifier]
	if !exists {
		return false
	}
	delete(m.elements, identifier)
	delete(m.byIndex, e.Index)
	for _, hook := range m.destroyHooks {
		hook(e)
	}
	return true
}

// OnElementDestroyed registers a hook invoked with every subsequently
// destroyed element. The element is already detached from the mesh when
// the hook runs; its connectivity remains readable for cleanup.
func (m *Mesh) OnElementDestroyed(hook func(e *Element)) {
	m.destroyHooks = append(m.destroyHooks, hook)
}

// ElementIdentifiers returns all element identifiers in ascending order.
func (m *Mesh) ElementIdentifiers() []int {
	ids := make([]int, 0, len(m.elements))
	for id := range m.elements {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// String returns a one-line summary of the mesh.
func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh{%s, dim=%d, elements=%d}", m.Name, m.Dimension, len(m.elements))
}

// Node is one node of a Nodeset: an identifier, a creation-order index
// and spatial coordinates.
type Node struct {
	Identifier int
	// Index is the creation-order index within the nodeset, stable for
	// the node's lifetime. Indices of destroyed nodes are not reused.
	Index       int
	Coordinates []float64
}

// Nodeset holds nodes keyed by identifier. Node groups are always built
// over this master nodeset, never over another group.
type Nodeset struct {
	Name string

	nodes        map[int]*Node
	byIndex      map[int]*Node
	nextIndex    int
	destroyHooks []func(identifier int)
}

// NewNodeset creates an empty nodeset.
func NewNodeset(name string) *Nodeset {
	return &Nodeset{
		Name:    name,
		nodes:   make(map[int]*Node),
		byIndex: make(map[int]*Node),
	}
}

// Size returns the number of nodes in the nodeset.
func (s *Nodeset) Size() int {
	return len(s.nodes)
}

// FindNodeByIdentifier returns the node with the given identifier, or nil.
func (s *Nodeset) FindNodeByIdentifier(identifier int) *Node {
	return s.nodes[identifier]
}

// FindNodeByIndex returns the node with the given creation-order index,
// or nil if no such node exists.
func (s *Nodeset) FindNodeByIndex(index int) *Node {
	return s.byIndex[index]
}

// CreateNode adds a node with the given identifier and coordinates.
func (s *Nodeset) CreateNode(identifier int, coordinates []float64) (*Node, error) {
	if identifier <= 0 {
		return nil, fmt.Errorf("nodeset %q: node identifier %d must be positive", s.Name, identifier)
	}
	if _, exists := s.nodes[identifier]; exists {
		return nil, fmt.Errorf("nodeset %q: node %d already exists", s.Name, identifier)
	}
	n := &Node{
		Identifier:  identifier,
		Index:       s.nextIndex,
		Coordinates: append([]float64(nil), coordinates...),
	}
	s.nextIndex++
	s.nodes[identifier] = n
	s.byIndex[n.Index] = n
	return n, nil
}

// DestroyNode removes the node with the given identifier and fires
// registered destruction hooks. Returns false if no such node exists.
func (s *Nodeset) DestroyNode(identifier int) bool {
	n, exists := s.nodes[identifier]
	if !exists {
		return false
	}
	delete(s.nodes, identifier)
	delete(s.byIndex, n.Index)
	for _, hook := range s.destroyHooks {
		hook(identifier)
	}
	return true
}

// OnNodeDestroyed registers a hook invoked with the identifier of every
// subsequently destroyed node.
func (s *Nodeset) OnNodeDestroyed(hook func(identifier int)) {
	s.destroyHooks = append(s.destroyHooks, hook)
}

// NodeIdentifiers returns all node identifiers in ascending order.
func (s *Nodeset) NodeIdentifiers() []int {
	ids := make([]int, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CoordinateMatrix returns the node coordinates as an [n x dim] matrix in
// ascending identifier order. Nodes with fewer coordinates than dim are
// zero padded.
func (s *Nodeset) CoordinateMatrix(dim int) *mat.Dense {
	ids := s.NodeIdentifiers()
	coords := mat.NewDense(len(ids), dim, nil)
	for i, id := range ids {
		c := s.nodes[id].Coordinates
		for j := 0; j < dim && j < len(c); j++ {
			coords.Set(i, j, c[j])
		}
	}
	return coords
}

// String returns a one-line summary of the nodeset.
func (s *Nodeset) String() string {
	return fmt.Sprintf("Nodeset{%s, nodes=%d}", s.Name, len(s.nodes))
}
