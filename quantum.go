package main

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

type Complex = complex128

// MaxUnitaryQubits bounds Unitary; a 12-qubit operator is 4096x4096.
const MaxUnitaryQubits = 12

var ErrTooManyQubits = errors.New("simulator: too many qubits for a dense unitary")

// StateVector holds 2^NumQubits amplitudes. Qubit q is bit q of the index.
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// NewBasisState returns the computational basis state |basis⟩.
func NewBasisState(numQubits, basis int) *StateVector {
	amps := make([]Complex, 1<<numQubits)
	amps[basis] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// ApplyGate applies a single gate in place.
func (s *StateVector) ApplyGate(g Gate) error {
	param := 0.0
	if len(g.Params) > 0 {
		param = g.Params[0]
	}
	switch g.Type {
	case "BARRIER", "I", "ID":
	case "H":
		s.applyH(g.Target)
	case "X":
		s.applyX(g.Target)
	case "Y":
		s.applyY(g.Target)
	case "Z":
		s.applyPhase(g.Target, -1)
	case "S":
		s.applyS(g.Target, g.IsDagger)
	case "SDG":
		s.applyS(g.Target, true)
	case "T":
		s.applyT(g.Target, g.IsDagger)
	case "TDG":
		s.applyT(g.Target, true)
	case "RX":
		s.applyRX(g.Target, param)
	case "RY":
		s.applyRY(g.Target, param)
	case "RZ":
		s.applyRZ(g.Target, param)
	case "P", "U1":
		s.applyPhase(g.Target, cmplx.Exp(complex(0, param)))
	case "CX":
		s.applyMCX([]int{g.Control}, g.Target)
	case "CZ":
		s.applyMCZ([]int{g.Control}, g.Target)
	case "CP", "CU1":
		s.applyControlledPhase([]int{g.Control}, g.Target, cmplx.Exp(complex(0, param)))
	case "SWAP":
		s.applySWAP(g.Control, g.Target)
	case "CCX", "TOFFOLI", "MCX":
		s.applyMCX(g.Controls, g.Target)
	case "MCZ", "CCZ":
		s.applyMCZ(g.Controls, g.Target)
	case "MEASURE", "RESET", "NOISE":
		return fmt.Errorf("%w: %s", ErrNonUnitary, g.Type)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGate, g.Type)
	}
	return nil
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = hFactor * (a + b)
			s.Amplitudes[j] = hFactor * (a - b)
		}
	}
}

func (s *StateVector) applyX(q int) {
	s.applyMCX(nil, q)
}

func (s *StateVector) applyY(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

// applyPhase multiplies every amplitude with qubit q set by factor.
func (s *StateVector) applyPhase(q int, factor Complex) {
	s.applyControlledPhase(nil, q, factor)
}

func (s *StateVector) applyS(q int, dagger bool) {
	factor := Complex(1i)
	if dagger {
		factor = -1i
	}
	s.applyPhase(q, factor)
}

func (s *StateVector) applyT(q int, dagger bool) {
	angle := math.Pi / 4
	if dagger {
		angle = -angle
	}
	s.applyPhase(q, cmplx.Exp(complex(0, angle)))
}

func (s *StateVector) applyRX(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a + js*b
			s.Amplitudes[j] = js*a + c*b
		}
	}
}

func (s *StateVector) applyRY(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a - sn*b
			s.Amplitudes[j] = sn*a + c*b
		}
	}
}

func (s *StateVector) applyRZ(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= cmplx.Conj(phase)
		}
	}
}

func controlMask(controls []int) int {
	mask := 0
	for _, c := range controls {
		mask |= 1 << c
	}
	return mask
}

// applyMCX flips the target on every basis state where all controls are set.
func (s *StateVector) applyMCX(controls []int, target int) {
	n := len(s.Amplitudes)
	cMask := controlMask(controls)
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cMask == cMask && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyMCZ(controls []int, target int) {
	s.applyControlledPhase(controls, target, -1)
}

func (s *StateVector) applyControlledPhase(controls []int, target int, factor Complex) {
	n := len(s.Amplitudes)
	mask := controlMask(controls) | 1<<target
	for i := 0; i < n; i++ {
		if i&mask == mask {
			s.Amplitudes[i] *= factor
		}
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	n := len(s.Amplitudes)
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := 0; i < n; i++ {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i & ^bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Run applies every gate of the circuit in program order.
func (s *StateVector) Run(c *Circuit) error {
	for i, g := range c.Gates {
		if err := s.ApplyGate(g); err != nil {
			return fmt.Errorf("gate %d: %w", i, err)
		}
	}
	return nil
}

// SimulateState runs the circuit on |basis⟩ and returns the final state.
func SimulateState(c *Circuit, basis int) (*StateVector, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if basis < 0 || basis >= 1<<c.NumQubits {
		return nil, fmt.Errorf("%w: basis state %d with %d qubits", ErrQubitOutOfRange, basis, c.NumQubits)
	}
	state := NewBasisState(c.NumQubits, basis)
	if err := state.Run(c); err != nil {
		return nil, err
	}
	return state, nil
}

// Unitary returns the dense operator of the circuit: column j is the circuit
// applied to |j⟩.
func Unitary(c *Circuit) (*mat.CDense, error) {
	if c.NumQubits > MaxUnitaryQubits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, c.NumQubits, MaxUnitaryQubits)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	dim := 1 << c.NumQubits
	u := mat.NewCDense(dim, dim, nil)
	for j := 0; j < dim; j++ {
		state := NewBasisState(c.NumQubits, j)
		if err := state.Run(c); err != nil {
			return nil, err
		}
		for i, amp := range state.Amplitudes {
			u.Set(i, j, amp)
		}
	}
	return u, nil
}

// BasisAmplitude is one non-negligible term of a state vector.
type BasisAmplitude struct {
	Basis     int     `json:"basis"`
	Label     string  `json:"label"`
	Amplitude Complex `json:"-"`
	Prob      float64 `json:"prob"`
	Phase     float64 `json:"phase"`
}

// Support lists the basis states whose amplitude magnitude exceeds negligible.
func (s *StateVector) Support(negligible float64) []BasisAmplitude {
	var terms []BasisAmplitude
	for i, amp := range s.Amplitudes {
		if cmplx.Abs(amp) <= negligible {
			continue
		}
		terms = append(terms, BasisAmplitude{
			Basis:     i,
			Label:     basisLabel(i, s.NumQubits),
			Amplitude: amp,
			Prob:      real(amp * cmplx.Conj(amp)),
			Phase:     cmplx.Phase(amp),
		})
	}
	return terms
}
