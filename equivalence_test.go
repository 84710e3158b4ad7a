package main

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// scaled returns e^{i·phase(i,j)}·u entrywise.
func scaled(u mat.CMatrix, phase func(i, j int) float64) *mat.CDense {
	r, c := u.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, cmplx.Exp(complex(0, phase(i, j)))*u.At(i, j))
		}
	}
	return out
}

// denseTestUnitary is a 3-qubit unitary with no zero entries.
func denseTestUnitary(t *testing.T) *mat.CDense {
	t.Helper()
	c := NewCircuit(3)
	c.H(0)
	c.AddParameterizedGate("RX", 1, []float64{0.7})
	c.AddParameterizedGate("RY", 2, []float64{1.1})
	c.CX(0, 2)
	c.AddParameterizedGate("CP", 1, []float64{math.Pi / 3}, 2)
	c.AddParameterizedGate("RZ", 0, []float64{-0.4})
	u, err := Unitary(c)
	require.NoError(t, err)
	return u
}

func toffoliUnitaries(t *testing.T) (custom, reference *mat.CDense) {
	t.Helper()
	c, l := PhaseFlipToffoli()
	custom, err := Unitary(c)
	require.NoError(t, err)
	reference, err = Unitary(ReferenceMCX(l))
	require.NoError(t, err)
	return custom, reference
}

func TestGlobalPhaseEquivalent_Self(t *testing.T) {
	u := denseTestUnitary(t)

	ok, fidelity, err := GlobalPhaseEquivalent(u, u, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, fidelity, 1e-12)

	ok, mismatches, err := MagnitudeEquivalent(u, u, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mismatches)
}

func TestGlobalPhaseEquivalent_AnyGlobalPhase(t *testing.T) {
	u := denseTestUnitary(t)
	for _, theta := range []float64{0, 0.3, -1.2, math.Pi / 2, math.Pi, -math.Pi, 4.5, 2 * math.Pi} {
		v := scaled(u, func(int, int) float64 { return theta })
		ok, fidelity, err := GlobalPhaseEquivalent(u, v, DefaultEqualityTol)
		require.NoError(t, err)
		assert.True(t, ok, "theta=%g fidelity=%.15f", theta, fidelity)
	}
}

func TestGlobalPhaseEquivalent_ScaleInvariant(t *testing.T) {
	u := denseTestUnitary(t)
	v := mat.NewCDense(8, 8, nil)
	v.Copy(u)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			v.Set(i, j, 3*v.At(i, j))
		}
	}
	ok, _, err := GlobalPhaseEquivalent(u, v, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMagnitudeEquivalent_InvariantUnderEntrywisePhase(t *testing.T) {
	u := denseTestUnitary(t)
	v := scaled(u, func(i, j int) float64 { return 0.7*float64(i) - 1.3*float64(j) })

	ok, mismatches, err := MagnitudeEquivalent(u, v, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mismatches)

	ok, _, err = GlobalPhaseEquivalent(u, v, DefaultEqualityTol)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMagnitudeEquivalent_ReportsMismatchesRowMajor(t *testing.T) {
	a := mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})
	b := mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})

	ok, mismatches, err := MagnitudeEquivalent(a, b, DefaultEqualityTol)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []MismatchEntry{
		{Row: 0, Col: 0, Custom: 1, Reference: 0},
		{Row: 0, Col: 1, Custom: 0, Reference: 1},
		{Row: 1, Col: 0, Custom: 0, Reference: 1},
		{Row: 1, Col: 1, Custom: 1, Reference: 0},
	}, mismatches)
}

func TestMagnitudeEquivalent_DifferenceAtToleranceMismatches(t *testing.T) {
	a := mat.NewCDense(1, 1, []complex128{0.5})
	b := mat.NewCDense(1, 1, []complex128{0.25})

	ok, mismatches, err := MagnitudeEquivalent(a, b, 0.25)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, mismatches, 1)

	ok, _, err = MagnitudeEquivalent(a, b, 0.5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGeneratePhaseTable_SelfIsZero(t *testing.T) {
	u := denseTestUnitary(t)
	table, err := GeneratePhaseTable(u, u, DefaultNegligibleTol)
	require.NoError(t, err)

	assert.Len(t, table.Entries, 64)
	assert.Empty(t, table.Undefined)
	for _, e := range table.Entries {
		assert.InDelta(t, 0, e.Phase, 1e-12, "(%s,%s)", e.RowLabel, e.ColLabel)
	}
}

func TestGeneratePhaseTable_GlobalPhase(t *testing.T) {
	u := denseTestUnitary(t)
	for _, theta := range []float64{0.3, -2.0, math.Pi, 5.0, -math.Pi / 2} {
		v := scaled(u, func(int, int) float64 { return theta })
		table, err := GeneratePhaseTable(v, u, DefaultNegligibleTol)
		require.NoError(t, err)
		for _, e := range table.Entries {
			assert.Less(t, phaseDistance(e.Phase, theta), 1e-9, "theta=%g got %g", theta, e.Phase)
			assert.True(t, e.Phase > -math.Pi && e.Phase <= math.Pi, "phase %g outside (-pi, pi]", e.Phase)
		}
		groups := table.Groups(DefaultNegligibleTol)
		require.Len(t, groups, 1)
		assert.Equal(t, 64, groups[0].Count)
	}
}

func TestPhaseFlipToffoli_Scenario(t *testing.T) {
	custom, reference := toffoliUnitaries(t)

	ok, fidelity, err := GlobalPhaseEquivalent(custom, reference, DefaultEqualityTol)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 0.5, fidelity, 1e-12)

	ok, mismatches, err := MagnitudeEquivalent(custom, reference, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mismatches)

	table, err := GeneratePhaseTable(custom, reference, DefaultNegligibleTol)
	require.NoError(t, err)
	assert.Empty(t, table.Undefined)
	require.Len(t, table.Entries, 8)

	flipped := map[BasisPair]bool{
		{Row: "111", Col: "011"}: true,
		{Row: "011", Col: "111"}: true,
	}
	for key, e := range table.Entries {
		if flipped[key] {
			assert.InDelta(t, math.Pi, e.Phase, 1e-12, "(%s,%s)", key.Row, key.Col)
		} else {
			assert.InDelta(t, 0, e.Phase, 1e-12, "(%s,%s)", key.Row, key.Col)
		}
	}

	e, found := table.Lookup(7, 3)
	require.True(t, found)
	assert.InDelta(t, 3.1416, e.Phase, 1e-4)

	assert.Equal(t, []PhaseGroup{{Phase: 0, Count: 6}, {Phase: math.Pi, Count: 2}}, table.Groups(DefaultNegligibleTol))
}

func TestGeneratePhaseTable_NegligibleBoundary(t *testing.T) {
	reference := mat.NewCDense(2, 2, []complex128{1, 0, 0, 0})

	t.Run("exactly at threshold is zero", func(t *testing.T) {
		custom := mat.NewCDense(2, 2, []complex128{1, 0, 0, complex(DefaultNegligibleTol, 0)})
		table, err := GeneratePhaseTable(custom, reference, DefaultNegligibleTol)
		require.NoError(t, err)
		assert.Len(t, table.Entries, 1)
		assert.Empty(t, table.Undefined)
	})

	t.Run("above threshold is unexpected support", func(t *testing.T) {
		custom := mat.NewCDense(2, 2, []complex128{1, 0, 0, complex(2*DefaultNegligibleTol, 0)})
		table, err := GeneratePhaseTable(custom, reference, DefaultNegligibleTol)
		require.NoError(t, err)
		assert.Len(t, table.Entries, 1)
		require.Len(t, table.Undefined, 1)
		u := table.Undefined[0]
		assert.Equal(t, UnexpectedSupport, u.Kind)
		assert.Equal(t, "1", u.RowLabel)
		assert.Equal(t, "1", u.ColLabel)
		assert.Equal(t, 2*DefaultNegligibleTol, u.Custom)
	})

	t.Run("reference above threshold is missing support", func(t *testing.T) {
		custom := mat.NewCDense(2, 2, []complex128{complex(DefaultNegligibleTol, 0), 0, 0, 0})
		table, err := GeneratePhaseTable(custom, reference, DefaultNegligibleTol)
		require.NoError(t, err)
		assert.Empty(t, table.Entries)
		require.Len(t, table.Undefined, 1)
		assert.Equal(t, MissingSupport, table.Undefined[0].Kind)
		assert.Equal(t, 0, table.Undefined[0].Row)
	})
}

func TestShapeErrors(t *testing.T) {
	small := mat.NewCDense(4, 4, nil)
	large := mat.NewCDense(8, 8, nil)

	_, _, err := GlobalPhaseEquivalent(small, large, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, _, err = MagnitudeEquivalent(small, large, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = GeneratePhaseTable(large, small, DefaultNegligibleTol)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Verify(Comparison{CustomUnitary: small, ReferenceUnitary: large}, DefaultTolerances())
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, _, err = MagnitudeEquivalent(mat.NewCDense(2, 3, nil), mat.NewCDense(2, 3, nil), DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrNotSquare)

	_, _, err = GlobalPhaseEquivalent(&mat.CDense{}, &mat.CDense{}, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = GlobalPhaseEquivalent(small, small, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrZeroNorm)
}

func TestStatesEquivalent(t *testing.T) {
	s := complex(1/math.Sqrt2, 0)
	plus := []complex128{s, s}
	minus := []complex128{s, -s}

	ok, overlap, err := StatesEquivalent(plus, []complex128{1i * s, 1i * s}, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1, overlap, 1e-12)

	ok, overlap, err = StatesEquivalent(plus, minus, DefaultEqualityTol)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 0, overlap, 1e-12)

	ok, _, err = StatesEquivalent([]complex128{2, 0}, []complex128{-0.5, 0}, DefaultEqualityTol)
	require.NoError(t, err)
	assert.True(t, ok, "states are normalized before comparison")

	_, _, err = StatesEquivalent(plus, []complex128{1, 0, 0, 0}, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, _, err = StatesEquivalent(nil, plus, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrEmpty)
	_, _, err = StatesEquivalent([]complex128{0, 0}, plus, DefaultEqualityTol)
	assert.ErrorIs(t, err, ErrZeroNorm)
}

func TestWrapPhase(t *testing.T) {
	assert.Equal(t, math.Pi, wrapPhase(-math.Pi))
	assert.Equal(t, math.Pi, wrapPhase(math.Pi))
	assert.InDelta(t, 0, wrapPhase(2*math.Pi), 1e-15)
	assert.InDelta(t, -math.Pi/2, wrapPhase(3*math.Pi/2), 1e-15)
	assert.InDelta(t, 0.5, wrapPhase(0.5+4*math.Pi), 1e-12)
}

func TestLabelWidth(t *testing.T) {
	assert.Equal(t, 1, labelWidth(1))
	assert.Equal(t, 1, labelWidth(2))
	assert.Equal(t, 3, labelWidth(8))
	assert.Equal(t, 3, labelWidth(5))
	assert.Equal(t, "0101", basisLabel(5, 4))
}
