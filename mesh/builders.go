package mesh

import "fmt"

// NewLineMesh builds a 1D mesh of n unit line elements over n+1 nodes.
// Element i spans nodes i and i+1; identifiers start at 1.
func NewLineMesh(n int) (*Mesh, error) {
	if n < 1 {
		return nil, fmt.Errorf("line mesh requires at least 1 element, got %d", n)
	}
	nodeset := NewNodeset("nodes")
	for i := 0; i <= n; i++ {
		if _, err := nodeset.CreateNode(i+1, []float64{float64(i)}); err != nil {
			return nil, err
		}
	}
	m, err := NewMesh("mesh1d", 1, nil, nodeset)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= n; i++ {
		if _, err := m.CreateElement(i, Line, nil, []int{i, i + 1}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewGridMesh2D builds a conformal nx x ny grid of rectangle elements,
// its 1D edge mesh, and the shared nodeset. Neighboring elements share
// one edge identifier, never duplicates.
//
// Numbering (all identifiers start at 1):
//   - nodes: column-major over (nx+1) x (ny+1) grid points
//   - edges: all horizontal (x-direction) edges first, then vertical
//   - rectangles: row-major over nx x ny cells
func NewGridMesh2D(nx, ny int) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid mesh requires positive cell counts, got %dx%d", nx, ny)
	}
	nodeset := NewNodeset("nodes")
	nodeID := func(ix, iy int) int { return 1 + ix + iy*(nx+1) }
	for iy := 0; iy <= ny; iy++ {
		for ix := 0; ix <= nx; ix++ {
			if _, err := nodeset.CreateNode(nodeID(ix, iy),
				[]float64{float64(ix), float64(iy)}); err != nil {
				return nil, err
			}
		}
	}

	edgeMesh, err := NewMesh("mesh1d", 1, nil, nodeset)
	if err != nil {
		return nil, err
	}
	numXEdges := nx * (ny + 1)
	xEdgeID := func(ix, iy int) int { return 1 + ix + iy*nx }
	yEdgeID := func(ix, iy int) int { return numXEdges + 1 + ix + iy*(nx+1) }
	for iy := 0; iy <= ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			if _, err := edgeMesh.CreateElement(xEdgeID(ix, iy), Line, nil,
				[]int{nodeID(ix, iy), nodeID(ix+1, iy)}); err != nil {
				return nil, err
			}
		}
	}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix <= nx; ix++ {
			if _, err := edgeMesh.CreateElement(yEdgeID(ix, iy), Line, nil,
				[]int{nodeID(ix, iy), nodeID(ix, iy+1)}); err != nil {
				return nil, err
			}
		}
	}

	m, err := NewMesh("mesh2d", 2, edgeMesh, nodeset)
	if err != nil {
		return nil, err
	}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			id := 1 + ix + iy*nx
			faces := []int{
				xEdgeID(ix, iy),   // bottom
				xEdgeID(ix, iy+1), // top
				yEdgeID(ix, iy),   // left
				yEdgeID(ix+1, iy), // right
			}
			nodes := []int{
				nodeID(ix, iy), nodeID(ix+1, iy),
				nodeID(ix, iy+1), nodeID(ix+1, iy+1),
			}
			if _, err := m.CreateElement(id, Rectangle, faces, nodes); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// NewBlockMesh3D builds a conformal nx x ny x nz block of hexahedral
// elements with its rectangle face mesh, line edge mesh and shared
// nodeset. Neighboring hexes share one face identifier; neighboring
// faces share one edge identifier.
func NewBlockMesh3D(nx, ny, nz int) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("block mesh requires positive cell counts, got %dx%dx%d", nx, ny, nz)
	}
	nodeset := NewNodeset("nodes")
	nodeID := func(ix, iy, iz int) int {
		return 1 + ix + iy*(nx+1) + iz*(nx+1)*(ny+1)
	}
	for iz := 0; iz <= nz; iz++ {
		for iy := 0; iy <= ny; iy++ {
			for ix := 0; ix <= nx; ix++ {
				if _, err := nodeset.CreateNode(nodeID(ix, iy, iz),
					[]float64{float64(ix), float64(iy), float64(iz)}); err != nil {
					return nil, err
				}
			}
		}
	}

	// Edge identifiers: x-direction edges, then y, then z.
	numXEdges := nx * (ny + 1) * (nz + 1)
	numYEdges := (nx + 1) * ny * (nz + 1)
	xEdgeID := func(ix, iy, iz int) int {
		return 1 + ix + iy*nx + iz*nx*(ny+1)
	}
	yEdgeID := func(ix, iy, iz int) int {
		return numXEdges + 1 + ix + iy*(nx+1) + iz*(nx+1)*ny
	}
	zEdgeID := func(ix, iy, iz int) int {
		return numXEdges + numYEdges + 1 + ix + iy*(nx+1) + iz*(nx+1)*(ny+1)
	}
	edgeMesh, err := NewMesh("mesh1d", 1, nil, nodeset)
	if err != nil {
		return nil, err
	}
	for iz := 0; iz <= nz; iz++ {
		for iy := 0; iy <= ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				if _, err := edgeMesh.CreateElement(xEdgeID(ix, iy, iz), Line, nil,
					[]int{nodeID(ix, iy, iz), nodeID(ix+1, iy, iz)}); err != nil {
					return nil, err
				}
			}
		}
	}
	for iz := 0; iz <= nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix <= nx; ix++ {
				if _, err := edgeMesh.CreateElement(yEdgeID(ix, iy, iz), Line, nil,
					[]int{nodeID(ix, iy, iz), nodeID(ix, iy+1, iz)}); err != nil {
					return nil, err
				}
			}
		}
	}
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy <= ny; iy++ {
			for ix := 0; ix <= nx; ix++ {
				if _, err := edgeMesh.CreateElement(zEdgeID(ix, iy, iz), Line, nil,
					[]int{nodeID(ix, iy, iz), nodeID(ix, iy, iz+1)}); err != nil {
					return nil, err
				}
			}
		}
	}

	// Face identifiers: xy faces (normal z), then xz (normal y), then yz.
	numXYFaces := nx * ny * (nz + 1)
	numXZFaces := nx * (ny + 1) * nz
	xyFaceID := func(ix, iy, iz int) int {
		return 1 + ix + iy*nx + iz*nx*ny
	}
	xzFaceID := func(ix, iy, iz int) int {
		return numXYFaces + 1 + ix + iy*nx + iz*nx*(ny+1)
	}
	yzFaceID := func(ix, iy, iz int) int {
		return numXYFaces + numXZFaces + 1 + ix + iy*(nx+1) + iz*(nx+1)*ny
	}
	faceMesh, err := NewMesh("mesh2d", 2, edgeMesh, nodeset)
	if err != nil {
		return nil, err
	}
	for iz := 0; iz <= nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				edges := []int{
					xEdgeID(ix, iy, iz), xEdgeID(ix, iy+1, iz),
					yEdgeID(ix, iy, iz), yEdgeID(ix+1, iy, iz),
				}
				nodes := []int{
					nodeID(ix, iy, iz), nodeID(ix+1, iy, iz),
					nodeID(ix, iy+1, iz), nodeID(ix+1, iy+1, iz),
				}
				if _, err := faceMesh.CreateElement(xyFaceID(ix, iy, iz), Rectangle, edges, nodes); err != nil {
					return nil, err
				}
			}
		}
	}
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy <= ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				edges := []int{
					xEdgeID(ix, iy, iz), xEdgeID(ix, iy, iz+1),
					zEdgeID(ix, iy, iz), zEdgeID(ix+1, iy, iz),
				}
				nodes := []int{
					nodeID(ix, iy, iz), nodeID(ix+1, iy, iz),
					nodeID(ix, iy, iz+1), nodeID(ix+1, iy, iz+1),
				}
				if _, err := faceMesh.CreateElement(xzFaceID(ix, iy, iz), Rectangle, edges, nodes); err != nil {
					return nil, err
				}
			}
		}
	}
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix <= nx; ix++ {
				edges := []int{
					yEdgeID(ix, iy, iz), yEdgeID(ix, iy, iz+1),
					zEdgeID(ix, iy, iz), zEdgeID(ix, iy+1, iz),
				}
				nodes := []int{
					nodeID(ix, iy, iz), nodeID(ix, iy+1, iz),
					nodeID(ix, iy, iz+1), nodeID(ix, iy+1, iz+1),
				}
				if _, err := faceMesh.CreateElement(yzFaceID(ix, iy, iz), Rectangle, edges, nodes); err != nil {
					return nil, err
				}
			}
		}
	}

	m, err := NewMesh("mesh3d", 3, faceMesh, nodeset)
	if err != nil {
		return nil, err
	}
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				id := 1 + ix + iy*nx + iz*nx*ny
				faces := []int{
					xyFaceID(ix, iy, iz),   // bottom
					xyFaceID(ix, iy, iz+1), // top
					xzFaceID(ix, iy, iz),   // front
					xzFaceID(ix, iy+1, iz), // back
					yzFaceID(ix, iy, iz),   // left
					yzFaceID(ix+1, iy, iz), // right
				}
				nodes := []int{
					nodeID(ix, iy, iz), nodeID(ix+1, iy, iz),
					nodeID(ix, iy+1, iz), nodeID(ix+1, iy+1, iz),
					nodeID(ix, iy, iz+1), nodeID(ix+1, iy, iz+1),
					nodeID(ix, iy+1, iz+1), nodeID(ix+1, iy+1, iz+1),
				}
				if _, err := m.CreateElement(id, Hex, faces, nodes); err != nil {
					return nil, err
				}
			}
		}
	}
	return m, nil
}
