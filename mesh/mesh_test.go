package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLineMesh(t *testing.T) {
	m, err := NewLineMesh(10)
	require.NoError(t, err)
	require.Equal(t, 10, m.Size())
	require.Equal(t, 11, m.Nodeset().Size())
	require.Nil(t, m.FaceMesh())

	e := m.FindElementByIdentifier(3)
	require.NotNil(t, e)
	require.Equal(t, []int{3, 4}, e.Nodes)
}

func TestNewGridMesh2D(t *testing.T) {
	m, err := NewGridMesh2D(2, 2)
	require.NoError(t, err)
	require.Equal(t, 4, m.Size())
	require.Equal(t, 9, m.Nodeset().Size())

	edges := m.FaceMesh()
	require.NotNil(t, edges)
	// 6 horizontal + 6 vertical edges
	require.Equal(t, 12, edges.Size())

	// Horizontal neighbors share exactly one vertical edge.
	left := m.FindElementByIdentifier(1)
	right := m.FindElementByIdentifier(2)
	shared := 0
	for _, f := range left.Faces {
		if right.HasFace(f) {
			shared++
		}
	}
	require.Equal(t, 1, shared, "horizontal neighbors must share one edge")
}

func TestNewBlockMesh3D(t *testing.T) {
	m, err := NewBlockMesh3D(2, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, m.Size())
	require.Equal(t, 12, m.Nodeset().Size())

	faces := m.FaceMesh()
	require.NotNil(t, faces)
	// xy: 2*1*2=4, xz: 2*2*1=4, yz: 3*1*1=3
	require.Equal(t, 11, faces.Size())

	edges := faces.FaceMesh()
	require.NotNil(t, edges)
	// x: 2*2*2=8, y: 3*1*2=6, z: 3*2*1=6
	require.Equal(t, 20, edges.Size())

	t.Run("NeighborsShareOneFace", func(t *testing.T) {
		e1 := m.FindElementByIdentifier(1)
		e2 := m.FindElementByIdentifier(2)
		shared := 0
		for _, f := range e1.Faces {
			if e2.HasFace(f) {
				shared++
			}
		}
		require.Equal(t, 1, shared)
	})

	t.Run("FaceConnectivityClosed", func(t *testing.T) {
		// Every face of every hex exists, and every edge of every face.
		for _, id := range m.ElementIdentifiers() {
			e := m.FindElementByIdentifier(id)
			require.Len(t, e.Faces, 6)
			require.Len(t, e.Nodes, 8)
			for _, fid := range e.Faces {
				fe := faces.FindElementByIdentifier(fid)
				require.NotNil(t, fe, "hex %d references missing face %d", id, fid)
				require.Len(t, fe.Faces, 4)
				require.Len(t, fe.Nodes, 4)
				for _, eid := range fe.Faces {
					require.NotNil(t, edges.FindElementByIdentifier(eid),
						"face %d references missing edge %d", fid, eid)
				}
			}
		}
	})
}

func TestMesh_CreateElementValidation(t *testing.T) {
	nodeset := NewNodeset("nodes")
	nodeset.CreateNode(1, []float64{0})
	nodeset.CreateNode(2, []float64{1})
	m, err := NewMesh("mesh1d", 1, nil, nodeset)
	require.NoError(t, err)

	_, err = m.CreateElement(0, Line, nil, []int{1, 2})
	require.Error(t, err, "non-positive identifier must be rejected")

	_, err = m.CreateElement(1, Line, nil, []int{1, 9})
	require.Error(t, err, "missing node reference must be rejected")

	_, err = m.CreateElement(1, Tri, nil, []int{1, 2})
	require.Error(t, err, "shape dimension mismatch must be rejected")

	_, err = m.CreateElement(1, Line, nil, []int{1, 2})
	require.NoError(t, err)
	_, err = m.CreateElement(1, Line, nil, []int{1, 2})
	require.Error(t, err, "duplicate identifier must be rejected")
}

func TestMesh_DestroyElementHooks(t *testing.T) {
	m, err := NewLineMesh(3)
	require.NoError(t, err)

	var destroyed []int
	m.OnElementDestroyed(func(e *Element) {
		destroyed = append(destroyed, e.Identifier)
	})

	index := m.FindElementByIdentifier(2).Index
	require.True(t, m.DestroyElement(2))
	require.False(t, m.DestroyElement(2), "double destroy must report false")
	require.Equal(t, []int{2}, destroyed)
	require.Nil(t, m.FindElementByIdentifier(2))
	require.Nil(t, m.FindElementByIndex(index), "index lookup of destroyed element")
	require.Equal(t, 2, m.Size())
}

func TestMesh_CreationOrderIndices(t *testing.T) {
	m, err := NewLineMesh(3)
	require.NoError(t, err)

	// Line mesh creates elements in identifier order 1..n.
	for id := 1; id <= 3; id++ {
		e := m.FindElementByIdentifier(id)
		require.Equal(t, id-1, e.Index)
		require.Same(t, e, m.FindElementByIndex(e.Index))
	}

	t.Run("IndicesNotReused", func(t *testing.T) {
		require.True(t, m.DestroyElement(3))
		e, err := m.CreateElement(7, Line, nil, []int{1, 2})
		require.NoError(t, err)
		require.Equal(t, 3, e.Index, "new element gets a fresh index")
	})

	t.Run("NodeIndices", func(t *testing.T) {
		s := m.Nodeset()
		n := s.FindNodeByIdentifier(1)
		require.Equal(t, 0, n.Index)
		require.Same(t, n, s.FindNodeByIndex(0))
		require.Nil(t, s.FindNodeByIndex(99))
	})
}

func TestNodeset_DestroyNodeHooks(t *testing.T) {
	s := NewNodeset("nodes")
	_, err := s.CreateNode(1, []float64{0, 0})
	require.NoError(t, err)

	var destroyed []int
	s.OnNodeDestroyed(func(identifier int) {
		destroyed = append(destroyed, identifier)
	})
	require.True(t, s.DestroyNode(1))
	require.Equal(t, []int{1}, destroyed)
	require.Equal(t, 0, s.Size())
}

func TestNodeset_CoordinateMatrix(t *testing.T) {
	m, err := NewGridMesh2D(1, 1)
	require.NoError(t, err)
	coords := m.Nodeset().CoordinateMatrix(2)
	rows, cols := coords.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 2, cols)
	// Node 4 sits at (1, 1).
	require.Equal(t, 1.0, coords.At(3, 0))
	require.Equal(t, 1.0, coords.At(3, 1))
}
