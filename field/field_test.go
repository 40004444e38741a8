package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCore is a source field with fixed values and derivatives, and an
// optional forced failure, used to drive the evaluation chain in tests.
type stubCore struct {
	values []float64
	derivs []float64 // component major, len(values) * derivativeCount
	fail   bool
}

func (s *stubCore) Name() string { return "stub" }

func (s *stubCore) ComponentCount(sources []*Field) (int, error) {
	return len(s.values), nil
}

func (s *stubCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	if s.fail {
		return false
	}
	copy(out.Values, s.values)
	nd := cache.DerivativeCount()
	if nd > 0 && len(s.derivs) == len(s.values)*nd {
		copy(out.Derivatives, s.derivs)
		out.DerivativesValid = true
	}
	return true
}

// countingCore counts evaluations to observe per-generation memoization.
type countingCore struct {
	stubCore
	evaluations int
}

func (c *countingCore) Evaluate(cache *FieldCache, sources []*Field, out *ValueCache) bool {
	c.evaluations++
	return c.stubCore.Evaluate(cache, sources, out)
}

func newStubField(t *testing.T, m *Manager, core Core) *Field {
	t.Helper()
	f, err := NewField(m, core)
	require.NoError(t, err)
	return f
}

func TestField_EvaluateFailurePropagation(t *testing.T) {
	m := NewManager()
	cache := m.CreateFieldCache()
	defer cache.Destroy()

	src := newStubField(t, m, &stubCore{values: []float64{1, 2, 3}, fail: true})
	norm, err := NewNormalize(src)
	require.NoError(t, err)
	mag, err := NewMagnitude(norm)
	require.NoError(t, err)

	assert.False(t, src.Evaluate(cache))
	assert.False(t, norm.Evaluate(cache), "failure must propagate through normalize")
	assert.False(t, mag.Evaluate(cache), "failure must propagate up the chain")
}

func TestField_MemoizationPerGeneration(t *testing.T) {
	m := NewManager()
	cache := m.CreateFieldCache()
	defer cache.Destroy()

	core := &countingCore{stubCore: stubCore{values: []float64{3, 4}}}
	src := newStubField(t, m, core)
	mag, err := NewMagnitude(src)
	require.NoError(t, err)
	sum, err := NewSumComponents(src)
	require.NoError(t, err)

	require.True(t, mag.Evaluate(cache))
	require.True(t, sum.Evaluate(cache))
	assert.Equal(t, 1, core.evaluations,
		"shared source must evaluate once per cache generation")

	cache.SetTime(1.5)
	require.True(t, mag.Evaluate(cache))
	assert.Equal(t, 2, core.evaluations, "generation bump must re-evaluate")

	// A result change invalidates outstanding caches.
	src.SetChanged()
	require.True(t, sum.Evaluate(cache))
	assert.Equal(t, 3, core.evaluations)
}

func TestField_ConstructorValidation(t *testing.T) {
	m := NewManager()
	other := NewManager()

	a := newStubField(t, m, &stubCore{values: []float64{1, 2}})
	b := newStubField(t, other, &stubCore{values: []float64{1, 2}})

	_, err := NewDotProduct(a, b)
	assert.Error(t, err, "cross-manager sources must be rejected")

	c := newStubField(t, m, &stubCore{values: []float64{1, 2, 3}})
	_, err = NewDotProduct(a, c)
	assert.Error(t, err, "component count mismatch must be rejected")

	_, err = NewField(m, &stubCore{values: []float64{1}}, nil)
	assert.Error(t, err, "nil source must be rejected")
}

func TestField_AssignUnsupported(t *testing.T) {
	m := NewManager()
	cache := m.CreateFieldCache()
	defer cache.Destroy()

	a := newStubField(t, m, &stubCore{values: []float64{1, 2}})
	b := newStubField(t, m, &stubCore{values: []float64{3, 4}})
	dot, err := NewDotProduct(a, b)
	require.NoError(t, err)

	assert.Error(t, dot.Assign(cache, []float64{7}))
	assert.Error(t, dot.Assign(cache, []float64{7, 8}), "wrong value count")
}

func TestConstant(t *testing.T) {
	m := NewManager()
	cache := m.CreateFieldCache()
	defer cache.Destroy()

	f, err := NewConstant(m, 1.5, -2.5)
	require.NoError(t, err)
	require.Equal(t, 2, f.ComponentCount())

	out := make([]float64, 2)
	require.True(t, f.EvaluateReal(cache, out))
	assert.Equal(t, []float64{1.5, -2.5}, out)

	t.Run("ZeroDerivativesValid", func(t *testing.T) {
		require.NoError(t, cache.RequestDerivatives(2))
		derivs := make([]float64, 4)
		require.True(t, f.EvaluateDerivatives(cache, derivs))
		assert.Equal(t, []float64{0, 0, 0, 0}, derivs)
	})

	t.Run("AssignOverwrites", func(t *testing.T) {
		require.NoError(t, f.Assign(cache, []float64{10, 20}))
		require.True(t, f.EvaluateReal(cache, out))
		assert.Equal(t, []float64{10, 20}, out)
	})

	_, err = NewConstant(m)
	assert.Error(t, err, "constant requires at least one component")
}

func TestScale(t *testing.T) {
	m := NewManager()
	cache := m.CreateFieldCache()
	defer cache.Destroy()

	src, err := NewConstant(m, 2, 3)
	require.NoError(t, err)
	f, err := NewScale(src, 10, -1)
	require.NoError(t, err)

	out := make([]float64, 2)
	require.True(t, f.EvaluateReal(cache, out))
	assert.Equal(t, []float64{20, -3}, out)

	t.Run("AssignInverts", func(t *testing.T) {
		require.NoError(t, f.Assign(cache, []float64{40, 5}))
		require.True(t, src.EvaluateReal(cache, out))
		assert.Equal(t, []float64{4, -5}, out)
	})

	t.Run("ZeroFactorAssignFails", func(t *testing.T) {
		z, err := NewScale(src, 0, 1)
		require.NoError(t, err)
		assert.Error(t, z.Assign(cache, []float64{1, 2}))
	})

	_, err = NewScale(src, 1)
	assert.Error(t, err, "factor count must match source components")
}

func TestSumComponents(t *testing.T) {
	m := NewManager()
	cache := m.CreateFieldCache()
	defer cache.Destroy()
	require.NoError(t, cache.RequestDerivatives(2))

	src := newStubField(t, m, &stubCore{
		values: []float64{1, 2, 3},
		// d/dxi0 = (1, 0, 2), d/dxi1 = (0, 1, 1)
		derivs: []float64{1, 0, 0, 1, 2, 1},
	})
	f, err := NewSumComponents(src)
	require.NoError(t, err)

	out := make([]float64, 1)
	require.True(t, f.EvaluateReal(cache, out))
	assert.Equal(t, 6.0, out[0])

	derivs := make([]float64, 2)
	require.True(t, f.EvaluateDerivatives(cache, derivs))
	assert.Equal(t, []float64{3, 2}, derivs)
}

func TestManager_ChangeBatching(t *testing.T) {
	m := NewManager()
	var flushes []map[*Field]Change
	m.AddListener(func(changes map[*Field]Change) {
		copied := make(map[*Field]Change, len(changes))
		for f, c := range changes {
			copied[f] = c
		}
		flushes = append(flushes, copied)
	})

	t.Run("CoalescedWithinBracket", func(t *testing.T) {
		m.BeginChange()
		a := newStubField(t, m, &stubCore{values: []float64{1}})
		b := newStubField(t, m, &stubCore{values: []float64{2}})
		a.SetChanged()
		a.SetChanged()
		b.SetChanged()
		assert.Empty(t, flushes, "nothing flushes before the bracket closes")
		require.NoError(t, m.EndChange())
		require.Len(t, flushes, 1, "one notification per bracket")
		assert.Equal(t, ChangeAdd|ChangeResult, flushes[0][a])
	})

	t.Run("NestedBracketsFlushOnce", func(t *testing.T) {
		flushes = nil
		m.BeginChange()
		m.BeginChange()
		f := newStubField(t, m, &stubCore{values: []float64{1}})
		f.SetChanged()
		require.NoError(t, m.EndChange())
		assert.Empty(t, flushes, "inner EndChange must not flush")
		require.NoError(t, m.EndChange())
		assert.Len(t, flushes, 1)
	})

	t.Run("UnbalancedEndReported", func(t *testing.T) {
		assert.Error(t, m.EndChange())
	})

	t.Run("ResultPropagatesToDependents", func(t *testing.T) {
		flushes = nil
		src := newStubField(t, m, &stubCore{values: []float64{3, 4}})
		mag, err := NewMagnitude(src)
		require.NoError(t, err)
		flushes = nil
		src.SetChanged()
		require.Len(t, flushes, 1)
		assert.Equal(t, ChangeResult, flushes[0][mag]&ChangeResult,
			"dependent must be marked result-changed")
	})

	t.Run("RemoveField", func(t *testing.T) {
		f := newStubField(t, m, &stubCore{values: []float64{1}})
		flushes = nil
		require.True(t, m.RemoveField(f))
		require.False(t, m.RemoveField(f), "double removal reports false")
		require.Len(t, flushes, 1)
		assert.Equal(t, ChangeRemove, flushes[0][f])
	})
}
