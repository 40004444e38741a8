package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// normalizeCore scales its source to unit 2-norm. The derivative is the
// source derivative scaled by 1/norm, deliberately omitting the
// quotient-rule term for the norm's own derivative: this matches the
// long-standing behavior downstream consumers calibrate against and must
// not be "fixed" to the geometrically exact rule.
type normalizeCore struct{}

// NewNormalize creates a field producing source scaled to unit length.
func NewNormalize(source *Field) (*Field, error) {
	if source == nil {
		return nil, fmt.Errorf("normalize field requires a source field")
	}
	return NewField(source.Manager(), normalizeCore{}, source)
}

func (normalizeCore) Name() string { return "normalize" }

func (normalizeCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 1 {
		return 0, fmt.Errorf("requires exactly one source field, got %d", len(sources))
	}
	return sources[0].ComponentCount(), nil
}

func (normalizeCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	src, ok := sources[0].cachedEvaluate(cache)
	if !ok {
		return false
	}
	size := floats.Norm(src.Values, 2)
	if size <= 0 {
		return false
	}
	for i, v := range src.Values {
		out.Values[i] = v / size
	}
	nd := cache.DerivativeCount()
	if nd > 0 && src.DerivativesValid {
		for i := range src.Derivatives {
			out.Derivatives[i] = src.Derivatives[i] / size
		}
		out.DerivativesValid = true
	}
	return true
}

// crossProductCore produces the generalized cross product of dimension-1
// source vector fields, each with dimension components.
type crossProductCore struct {
	dimension int
}

// NewCrossProduct creates a cross product field of the given dimension
// (1 to 4) over dimension-1 source fields of dimension components each:
// dimension 1 yields zero, 2 the perpendicular rotation (-y, x), 3 the
// standard and 4 the generalized cross product.
func NewCrossProduct(manager *Manager, dimension int, sources ...*Field) (*Field, error) {
	if dimension < 1 || dimension > 4 {
		return nil, fmt.Errorf("cross_product dimension %d not supported", dimension)
	}
	return NewField(manager, &crossProductCore{dimension: dimension}, sources...)
}

func (c *crossProductCore) Name() string { return "cross_product" }

func (c *crossProductCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != c.dimension-1 {
		return 0, fmt.Errorf("dimension %d requires %d source fields, got %d",
			c.dimension, c.dimension-1, len(sources))
	}
	for i, s := range sources {
		if s.ComponentCount() != c.dimension {
			return 0, fmt.Errorf("source %d has %d components, want %d",
				i, s.ComponentCount(), c.dimension)
		}
	}
	return c.dimension, nil
}

// crossProduct computes the generalized cross product of the input
// vectors into out. len(in) == dim-1 and every vector has dim entries.
func crossProduct(dim int, in [][]float64, out []float64) {
	switch dim {
	case 1:
		out[0] = 0
	case 2:
		out[0] = -in[0][1]
		out[1] = in[0][0]
	case 3:
		a, b := in[0], in[1]
		out[0] = a[1]*b[2] - a[2]*b[1]
		out[1] = a[2]*b[0] - a[0]*b[2]
		out[2] = a[0]*b[1] - a[1]*b[0]
	case 4:
		a, b, c := in[0], in[1], in[2]
		out[0] = a[1]*(b[2]*c[3]-b[3]*c[2]) -
			a[2]*(b[1]*c[3]-b[3]*c[1]) +
			a[3]*(b[1]*c[2]-b[2]*c[1])
		out[1] = -(a[0]*(b[2]*c[3]-b[3]*c[2]) -
			a[2]*(b[0]*c[3]-b[3]*c[0]) +
			a[3]*(b[0]*c[2]-b[2]*c[0]))
		out[2] = a[0]*(b[1]*c[3]-b[3]*c[1]) -
			a[1]*(b[0]*c[3]-b[3]*c[0]) +
			a[3]*(b[0]*c[1]-b[1]*c[0])
		out[3] = -(a[0]*(b[1]*c[2]-b[2]*c[1]) -
			a[1]*(b[0]*c[2]-b[2]*c[0]) +
			a[2]*(b[0]*c[1]-b[1]*c[0]))
	}
}

func (c *crossProductCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	caches := make([]*ValueCache, len(sources))
	for i, s := range sources {
		sv, ok := s.cachedEvaluate(cache)
		if !ok {
			return false
		}
		caches[i] = sv
	}
	values := make([][]float64, len(sources))
	for i, sv := range caches {
		values[i] = sv.Values
	}
	crossProduct(c.dimension, values, out.Values)

	nd := cache.DerivativeCount()
	if nd == 0 {
		return true
	}
	for _, sv := range caches {
		if !sv.DerivativesValid {
			return true
		}
	}
	// Product rule: for each direction, sum the cross products with one
	// source at a time replaced by its derivative slice.
	operands := make([][]float64, len(sources))
	derivSlice := make([]float64, c.dimension)
	term := make([]float64, c.dimension)
	for d := 0; d < nd; d++ {
		for i := range out.Values {
			out.Derivatives[i*nd+d] = 0
		}
		for k := range sources {
			for i, sv := range caches {
				operands[i] = sv.Values
			}
			caches[k].DerivativeSlice(d, derivSlice)
			operands[k] = derivSlice
			crossProduct(c.dimension, operands, term)
			for i := range term {
				out.Derivatives[i*nd+d] += term[i]
			}
		}
	}
	out.DerivativesValid = true
	return true
}

// dotProductCore produces the scalar product of its two sources.
type dotProductCore struct{}

// NewDotProduct creates a scalar field of the dot product of two sources
// with equal component counts.
func NewDotProduct(sourceA, sourceB *Field) (*Field, error) {
	if sourceA == nil || sourceB == nil {
		return nil, fmt.Errorf("dot_product field requires two source fields")
	}
	return NewField(sourceA.Manager(), dotProductCore{}, sourceA, sourceB)
}

func (dotProductCore) Name() string { return "dot_product" }

func (dotProductCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 2 {
		return 0, fmt.Errorf("requires exactly two source fields, got %d", len(sources))
	}
	if sources[0].ComponentCount() != sources[1].ComponentCount() {
		return 0, fmt.Errorf("sources have %d and %d components, must match",
			sources[0].ComponentCount(), sources[1].ComponentCount())
	}
	return 1, nil
}

func (dotProductCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	a, ok := sources[0].cachedEvaluate(cache)
	if !ok {
		return false
	}
	b, ok := sources[1].cachedEvaluate(cache)
	if !ok {
		return false
	}
	out.Values[0] = floats.Dot(a.Values, b.Values)
	nd := cache.DerivativeCount()
	if nd > 0 && a.DerivativesValid && b.DerivativesValid {
		for d := 0; d < nd; d++ {
			sum := 0.0
			for i := range a.Values {
				sum += a.Derivatives[i*nd+d]*b.Values[i] + a.Values[i]*b.Derivatives[i*nd+d]
			}
			out.Derivatives[d] = sum
		}
		out.DerivativesValid = true
	}
	return true
}

// magnitudeCore produces the 2-norm of its source. It is bidirectional:
// assigning a target magnitude rescales the source value vector to match
// and forwards the assignment to the source field.
type magnitudeCore struct{}

// NewMagnitude creates a scalar field of the source's 2-norm.
func NewMagnitude(source *Field) (*Field, error) {
	if source == nil {
		return nil, fmt.Errorf("magnitude field requires a source field")
	}
	return NewField(source.Manager(), magnitudeCore{}, source)
}

func (magnitudeCore) Name() string { return "magnitude" }

func (magnitudeCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 1 {
		return 0, fmt.Errorf("requires exactly one source field, got %d", len(sources))
	}
	return 1, nil
}

func (magnitudeCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	src, ok := sources[0].cachedEvaluate(cache)
	if !ok {
		return false
	}
	size := floats.Norm(src.Values, 2)
	out.Values[0] = size
	nd := cache.DerivativeCount()
	if nd > 0 && src.DerivativesValid && size > 0 {
		for d := 0; d < nd; d++ {
			sum := 0.0
			for i, v := range src.Values {
				sum += v * src.Derivatives[i*nd+d]
			}
			out.Derivatives[d] = sum / size
		}
		out.DerivativesValid = true
	}
	return true
}

func (magnitudeCore) Assign(cache *FieldCache, f *Field, values []float64) error {
	source := f.Source(0)
	current := make([]float64, source.ComponentCount())
	if !source.EvaluateReal(cache, current) {
		return fmt.Errorf("magnitude field: source not defined at location")
	}
	size := floats.Norm(current, 2)
	if size <= 0 {
		return fmt.Errorf("magnitude field: cannot scale source with zero magnitude")
	}
	floats.Scale(values[0]/size, current)
	return source.Assign(cache, current)
}

// cubicTextureCoordinatesCore maps an n-component vector to n-1
// components by dropping the maximum-absolute-value component and
// dividing the rest by it, giving cube-map style projection coordinates.
// Derivatives are not supported.
type cubicTextureCoordinatesCore struct{}

// NewCubicTextureCoordinates creates the cube-map projection field of a
// source with 2 to 4 components.
func NewCubicTextureCoordinates(source *Field) (*Field, error) {
	if source == nil {
		return nil, fmt.Errorf("cubic_texture_coordinates field requires a source field")
	}
	return NewField(source.Manager(), cubicTextureCoordinatesCore{}, source)
}

func (cubicTextureCoordinatesCore) Name() string { return "cubic_texture_coordinates" }

func (cubicTextureCoordinatesCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 1 {
		return 0, fmt.Errorf("requires exactly one source field, got %d", len(sources))
	}
	n := sources[0].ComponentCount()
	if n < 2 || n > 4 {
		return 0, fmt.Errorf("source must have 2 to 4 components, got %d", n)
	}
	return n - 1, nil
}

func (cubicTextureCoordinatesCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	src, ok := sources[0].cachedEvaluate(cache)
	if !ok {
		return false
	}
	maxComponent := 0
	for i := 1; i < len(src.Values); i++ {
		if math.Abs(src.Values[i]) > math.Abs(src.Values[maxComponent]) {
			maxComponent = i
		}
	}
	divisor := src.Values[maxComponent]
	if divisor == 0 {
		return false
	}
	j := 0
	for i, v := range src.Values {
		if i == maxComponent {
			continue
		}
		out.Values[j] = v / divisor
		j++
	}
	out.DerivativesValid = false
	return true
}
