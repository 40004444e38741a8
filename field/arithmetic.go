package field

import "fmt"

// constantCore holds a fixed value vector. Derivatives are zero and
// valid. Assignment overwrites the stored values, making a constant
// field the usual terminal target of forwarded assignments.
type constantCore struct {
	values []float64
}

// NewConstant creates a field with fixed component values.
func NewConstant(manager *Manager, values ...float64) (*Field, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("constant field requires at least one component")
	}
	core := &constantCore{values: append([]float64(nil), values...)}
	return NewField(manager, core)
}

func (c *constantCore) Name() string { return "constant" }

func (c *constantCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 0 {
		return 0, fmt.Errorf("takes no source fields")
	}
	return len(c.values), nil
}

func (c *constantCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	copy(out.Values, c.values)
	for i := range out.Derivatives {
		out.Derivatives[i] = 0
	}
	out.DerivativesValid = cache.DerivativeCount() > 0
	return true
}

func (c *constantCore) Assign(cache *FieldCache, f *Field, values []float64) error {
	copy(c.values, values)
	f.SetChanged()
	return nil
}

// scaleCore multiplies its source componentwise by fixed factors. The
// inverse divides, failing on any zero factor.
type scaleCore struct {
	factors []float64
}

// NewScale creates a field scaling source componentwise by factors.
func NewScale(source *Field, factors ...float64) (*Field, error) {
	if source == nil {
		return nil, fmt.Errorf("scale field requires a source field")
	}
	core := &scaleCore{factors: append([]float64(nil), factors...)}
	return NewField(source.Manager(), core, source)
}

func (c *scaleCore) Name() string { return "scale" }

func (c *scaleCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 1 {
		return 0, fmt.Errorf("requires exactly one source field, got %d", len(sources))
	}
	if sources[0].ComponentCount() != len(c.factors) {
		return 0, fmt.Errorf("source has %d components, %d scale factors given",
			sources[0].ComponentCount(), len(c.factors))
	}
	return len(c.factors), nil
}

func (c *scaleCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	src, ok := sources[0].cachedEvaluate(cache)
	if !ok {
		return false
	}
	for i, v := range src.Values {
		out.Values[i] = v * c.factors[i]
	}
	nd := cache.DerivativeCount()
	if nd > 0 && src.DerivativesValid {
		for i := range out.Values {
			for d := 0; d < nd; d++ {
				out.Derivatives[i*nd+d] = src.Derivatives[i*nd+d] * c.factors[i]
			}
		}
		out.DerivativesValid = true
	}
	return true
}

func (c *scaleCore) Assign(cache *FieldCache, f *Field, values []float64) error {
	sourceValues := make([]float64, len(values))
	for i, v := range values {
		if c.factors[i] == 0 {
			return fmt.Errorf("scale field: cannot invert zero factor at component %d", i)
		}
		sourceValues[i] = v / c.factors[i]
	}
	return f.Source(0).Assign(cache, sourceValues)
}

// sumComponentsCore reduces its source to the scalar sum of components.
type sumComponentsCore struct{}

// NewSumComponents creates a scalar field summing the source components.
func NewSumComponents(source *Field) (*Field, error) {
	if source == nil {
		return nil, fmt.Errorf("sum_components field requires a source field")
	}
	return NewField(source.Manager(), sumComponentsCore{}, source)
}

func (sumComponentsCore) Name() string { return "sum_components" }

func (sumComponentsCore) ComponentCount(sources []*Field) (int, error) {
	if len(sources) != 1 {
		return 0, fmt.Errorf("requires exactly one source field, got %d", len(sources))
	}
	return 1, nil
}

func (sumComponentsCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	src, ok := sources[0].cachedEvaluate(cache)
	if !ok {
		return false
	}
	sum := 0.0
	for _, v := range src.Values {
		sum += v
	}
	out.Values[0] = sum
	nd := cache.DerivativeCount()
	if nd > 0 && src.DerivativesValid {
		for d := 0; d < nd; d++ {
			dsum := 0.0
			for i := range src.Values {
				dsum += src.Derivatives[i*nd+d]
			}
			out.Derivatives[d] = dsum
		}
		out.DerivativesValid = true
	}
	return true
}
