package main

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func assertAmplitude(t *testing.T, want, got complex128, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), 1e-12, msgAndArgs...)
	assert.InDelta(t, imag(want), imag(got), 1e-12, msgAndArgs...)
}

func TestSingleQubitGates(t *testing.T) {
	s := 1 / math.Sqrt2
	tests := []struct {
		name string
		gate Gate
		want []complex128
	}{
		{"X", Gate{Type: "X", Control: -1}, []complex128{0, 1}},
		{"Y", Gate{Type: "Y", Control: -1}, []complex128{0, 1i}},
		{"Z", Gate{Type: "Z", Control: -1}, []complex128{1, 0}},
		{"H", Gate{Type: "H", Control: -1}, []complex128{complex(s, 0), complex(s, 0)}},
		{"RX(pi)", Gate{Type: "RX", Control: -1, Params: []float64{math.Pi}}, []complex128{0, -1i}},
		{"RY(pi)", Gate{Type: "RY", Control: -1, Params: []float64{math.Pi}}, []complex128{0, 1}},
		{"RZ(pi)", Gate{Type: "RZ", Control: -1, Params: []float64{math.Pi}}, []complex128{-1i, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewBasisState(1, 0)
			require.NoError(t, state.ApplyGate(tt.gate))
			for i := range tt.want {
				assertAmplitude(t, tt.want[i], state.Amplitudes[i], "amplitude %d", i)
			}
		})
	}
}

func TestPhaseGatesOnOne(t *testing.T) {
	tests := []struct {
		gate Gate
		want complex128
	}{
		{Gate{Type: "Z", Control: -1}, -1},
		{Gate{Type: "S", Control: -1}, 1i},
		{Gate{Type: "S", Control: -1, IsDagger: true}, -1i},
		{Gate{Type: "T", Control: -1}, cmplx.Exp(complex(0, math.Pi/4))},
		{Gate{Type: "TDG", Control: -1}, cmplx.Exp(complex(0, -math.Pi/4))},
		{Gate{Type: "P", Control: -1, Params: []float64{0.3}}, cmplx.Exp(0.3i)},
	}
	for _, tt := range tests {
		state := NewBasisState(1, 1)
		require.NoError(t, state.ApplyGate(tt.gate))
		assertAmplitude(t, tt.want, state.Amplitudes[1], tt.gate.Type)
		assertAmplitude(t, 0, state.Amplitudes[0], tt.gate.Type)
	}
}

func TestToffoliTruthTable(t *testing.T) {
	c := NewCircuit(3)
	c.CCX(0, 1, 2)
	for basis := 0; basis < 8; basis++ {
		state, err := SimulateState(c, basis)
		require.NoError(t, err)
		want := basis
		if basis&0b011 == 0b011 {
			want ^= 0b100
		}
		assertAmplitude(t, 1, state.Amplitudes[want], "input %03b", basis)
	}
}

func TestMultiControlGates(t *testing.T) {
	mcx := NewCircuit(5)
	mcx.MCX([]int{0, 1, 2, 3}, 4)
	mcz := NewCircuit(5)
	mcz.AddMultiControlGate("MCZ", 4, []int{0, 1, 2, 3})

	for basis := 0; basis < 32; basis++ {
		state, err := SimulateState(mcx, basis)
		require.NoError(t, err)
		want := basis
		if basis&0b01111 == 0b01111 {
			want ^= 0b10000
		}
		assertAmplitude(t, 1, state.Amplitudes[want], "mcx input %05b", basis)

		state, err = SimulateState(mcz, basis)
		require.NoError(t, err)
		sign := complex128(1)
		if basis == 0b11111 {
			sign = -1
		}
		assertAmplitude(t, sign, state.Amplitudes[basis], "mcz input %05b", basis)
	}
}

func TestSwapAndControlledPhase(t *testing.T) {
	c := NewCircuit(2)
	c.AddGate("SWAP", 1, 0)
	state, err := SimulateState(c, 0b01)
	require.NoError(t, err)
	assertAmplitude(t, 1, state.Amplitudes[0b10])

	cp := NewCircuit(2)
	cp.AddParameterizedGate("CP", 1, []float64{math.Pi / 2}, 0)
	state, err = SimulateState(cp, 0b11)
	require.NoError(t, err)
	assertAmplitude(t, 1i, state.Amplitudes[0b11])

	state, err = SimulateState(cp, 0b01)
	require.NoError(t, err)
	assertAmplitude(t, 1, state.Amplitudes[0b01])
}

func TestUnitaryColumnsAreBasisImages(t *testing.T) {
	c := NewCircuit(2)
	c.H(0)
	c.CX(0, 1)
	u, err := Unitary(c)
	require.NoError(t, err)

	rows, cols := u.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 4, cols)
	for j := 0; j < 4; j++ {
		state, err := SimulateState(c, j)
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			assert.Equal(t, state.Amplitudes[i], u.At(i, j))
		}
	}
}

func TestUnitaryIsUnitary(t *testing.T) {
	c := NewCircuit(3)
	c.H(0)
	c.AddParameterizedGate("RY", 1, []float64{0.4})
	c.CCX(0, 1, 2)
	c.AddGate("SWAP", 2, 0)
	c.AddParameterizedGate("CP", 0, []float64{1.9}, 2)
	c.AddDaggerGate("T", 1)
	u, err := Unitary(c)
	require.NoError(t, err)

	h := mat.NewCDense(8, 8, nil)
	h.Copy(u.H())
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			var sum complex128
			for k := 0; k < 8; k++ {
				sum += h.At(i, k) * u.At(k, j)
			}
			want := complex128(0)
			if i == j {
				want = 1
			}
			assertAmplitude(t, want, sum, "(U^H U)[%d,%d]", i, j)
		}
	}
}

func TestSimulatorErrors(t *testing.T) {
	_, err := Unitary(NewCircuit(MaxUnitaryQubits + 1))
	assert.ErrorIs(t, err, ErrTooManyQubits)

	_, err = SimulateState(NewCircuit(2), 4)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	bad := NewCircuit(2)
	bad.CX(0, 2)
	_, err = Unitary(bad)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	measured := NewCircuit(1)
	measured.AddGate("MEASURE", 0)
	_, err = Unitary(measured)
	assert.ErrorIs(t, err, ErrNonUnitary)

	odd := NewCircuit(1)
	odd.AddGate("SX", 0)
	_, err = SimulateState(odd, 0)
	assert.ErrorIs(t, err, ErrUnknownGate)
}

func TestSupport(t *testing.T) {
	c := NewCircuit(2)
	c.H(0)
	c.Z(0)
	state, err := SimulateState(c, 0)
	require.NoError(t, err)

	terms := state.Support(DefaultNegligibleTol)
	require.Len(t, terms, 2)
	assert.Equal(t, "00", terms[0].Label)
	assert.Equal(t, "01", terms[1].Label)
	assert.InDelta(t, 0.5, terms[1].Prob, 1e-12)
	assert.InDelta(t, math.Pi, math.Abs(terms[1].Phase), 1e-12)
}
