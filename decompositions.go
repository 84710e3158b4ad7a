package main

import (
	"errors"
	"fmt"
	"slices"
)

var ErrBadLayout = errors.New("decomposition: invalid layout")

// Layout names the role of every qubit in an MCX experiment.
type Layout struct {
	NumQubits int
	Controls  []int
	Ancillas  []int
	Target    int
}

// StandardLayout puts k controls on q[0..k-1], the ancillas after them and
// the target on the last qubit.
func StandardLayout(k, ancillas int) Layout {
	l := Layout{NumQubits: k + ancillas + 1, Target: k + ancillas}
	for q := 0; q < k; q++ {
		l.Controls = append(l.Controls, q)
	}
	for q := 0; q < ancillas; q++ {
		l.Ancillas = append(l.Ancillas, k+q)
	}
	return l
}

// Validate checks that every role is a distinct qubit inside the register.
func (l Layout) Validate() error {
	if len(l.Controls) == 0 {
		return fmt.Errorf("%w: no controls", ErrBadLayout)
	}
	seen := make(map[int]bool)
	for _, q := range append(append(slices.Clone(l.Controls), l.Ancillas...), l.Target) {
		if q < 0 || q >= l.NumQubits {
			return fmt.Errorf("%w: q[%d] outside %d qubits", ErrBadLayout, q, l.NumQubits)
		}
		if seen[q] {
			return fmt.Errorf("%w: q[%d] has two roles", ErrBadLayout, q)
		}
		seen[q] = true
	}
	return nil
}

// AllOnesInput is the basis index with every control and ancilla set,
// the input the verification runs prepare.
func (l Layout) AllOnesInput() int {
	basis := 0
	for _, q := range append(slices.Clone(l.Controls), l.Ancillas...) {
		basis |= 1 << q
	}
	return basis
}

// ReferenceMCX is the plain multi-controlled X over the layout; ancillas idle.
func ReferenceMCX(l Layout) *Circuit {
	c := NewCircuit(l.NumQubits)
	c.MCX(l.Controls, l.Target)
	return c
}

// DirtyPairMCX4 builds a 4-control Toffoli with two dirty ancillas a, b:
//
//	H a; H b; ccx(x4,b,y); ccx(x3,a,b); ccx(x1,x2,a); ccx(x3,a,b); ccx(x4,b,y); H a; H b
//
// It flips y on x1x2x3x4 and leaves the phase (-1)^(x1x2·a ⊕ x1x2x3·b).
func DirtyPairMCX4(l Layout) (*Circuit, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if len(l.Controls) != 4 || len(l.Ancillas) != 2 {
		return nil, fmt.Errorf("%w: need 4 controls and 2 ancillas, have %d and %d", ErrBadLayout, len(l.Controls), len(l.Ancillas))
	}
	x1, x2, x3, x4 := l.Controls[0], l.Controls[1], l.Controls[2], l.Controls[3]
	a, b, y := l.Ancillas[0], l.Ancillas[1], l.Target

	c := NewCircuit(l.NumQubits)
	c.H(a)
	c.H(b)
	c.CCX(x4, b, y)
	c.CCX(x3, a, b)
	c.CCX(x1, x2, a)
	c.CCX(x3, a, b)
	c.CCX(x4, b, y)
	c.H(a)
	c.H(b)
	return c, nil
}

// BarencoLemma72 builds C^k X from a Toffoli ladder over k-2 ancillas
// (Barenco et al., Lemma 7.2) with the ancillas conjugated by Hadamards.
// The ladder runs once forward and once back, 2k-3 Toffolis in total, so the
// ancillas keep a control-dependent phase.
func BarencoLemma72(k int) (*Circuit, Layout, error) {
	if k < 3 {
		return nil, Layout{}, fmt.Errorf("%w: lemma 7.2 needs at least 3 controls, got %d", ErrBadLayout, k)
	}
	l := StandardLayout(k, k-2)
	controls, ancilla := l.Controls, l.Ancillas
	m := len(ancilla)
	n := l.NumQubits

	c := NewCircuit(n)
	for _, a := range ancilla {
		c.H(a)
	}
	c.CCX(controls[k-1], ancilla[m-1], l.Target)
	for i := 2; i < k-1; i++ {
		c.CCX(controls[k-i], ancilla[m-i], n-i)
	}
	c.CCX(controls[0], controls[1], ancilla[0])
	for i := k - 2; i >= 2; i-- {
		c.CCX(controls[k-i], ancilla[m-i], n-i)
	}
	c.CCX(controls[k-1], ancilla[m-1], l.Target)
	for _, a := range ancilla {
		c.H(a)
	}
	return c, l, nil
}

// DirtyAncillaMCX appends C^k X on target using one dirty ancilla, recursing
// on the first k-1 controls with the ancilla as their target and the last
// control as their borrowed ancilla.
func DirtyAncillaMCX(c *Circuit, controls []int, target, ancilla int) error {
	k := len(controls)
	if k < 2 {
		return fmt.Errorf("%w: need at least 2 controls, got %d", ErrBadLayout, k)
	}
	last := controls[k-1]
	c.H(ancilla)
	c.CCX(ancilla, last, target)
	if err := dirtyAncillaStep(c, controls[:k-1], ancilla, last); err != nil {
		return err
	}
	c.CCX(ancilla, last, target)
	c.H(ancilla)
	return nil
}

func dirtyAncillaStep(c *Circuit, controls []int, target, ancilla int) error {
	switch len(controls) {
	case 1:
		c.CX(controls[0], target)
		return nil
	case 2:
		c.CCX(controls[0], controls[1], target)
		return nil
	default:
		return DirtyAncillaMCX(c, controls, target, ancilla)
	}
}

// PhaseFlipToffoli is a 2-control Toffoli followed by CZ(c0, c1) written as
// H·CX·H on c1. Magnitudes match CCX; entries with both controls set pick up
// a phase of pi.
func PhaseFlipToffoli() (*Circuit, Layout) {
	l := StandardLayout(2, 0)
	c0, c1 := l.Controls[0], l.Controls[1]
	c := NewCircuit(l.NumQubits)
	c.CCX(c0, c1, l.Target)
	c.H(c1)
	c.CX(c0, c1)
	c.H(c1)
	return c, l
}

// Experiment pairs a custom construction with its reference.
type Experiment struct {
	Name        string
	Description string
	Layout      Layout
	Custom      *Circuit
	Reference   *Circuit
	Input       int // basis state for the state comparison
}

// Experiments builds every registered construction. k is the control count
// for the constructions that take one.
func Experiments(k int) ([]Experiment, error) {
	var exps []Experiment

	toffoli, tl := PhaseFlipToffoli()
	exps = append(exps, Experiment{
		Name:        "phase-flip-toffoli",
		Description: "CCX followed by an H-conjugated CX on the controls",
		Layout:      tl,
		Custom:      toffoli,
		Reference:   ReferenceMCX(tl),
		Input:       tl.AllOnesInput(),
	})

	pl := StandardLayout(4, 2)
	pair, err := DirtyPairMCX4(pl)
	if err != nil {
		return nil, err
	}
	exps = append(exps, Experiment{
		Name:        "dirty-pair-mcx4",
		Description: "4-control Toffoli, two H-conjugated dirty ancillas",
		Layout:      pl,
		Custom:      pair,
		Reference:   ReferenceMCX(pl),
		Input:       pl.AllOnesInput(),
	})

	bk := max(k, 3)
	barenco, bl, err := BarencoLemma72(bk)
	if err != nil {
		return nil, err
	}
	exps = append(exps, Experiment{
		Name:        "barenco-lemma-7.2",
		Description: fmt.Sprintf("%d-control Toffoli ladder, %d H-conjugated ancillas", bk, bk-2),
		Layout:      bl,
		Custom:      barenco,
		Reference:   ReferenceMCX(bl),
		Input:       0,
	})

	dk := max(k, 2)
	dl := StandardLayout(dk, 1)
	dirty := NewCircuit(dl.NumQubits)
	if err := DirtyAncillaMCX(dirty, dl.Controls, dl.Target, dl.Ancillas[0]); err != nil {
		return nil, err
	}
	exps = append(exps, Experiment{
		Name:        "dirty-ancilla-mcx",
		Description: fmt.Sprintf("%d-control Toffoli, one recursive dirty ancilla", dk),
		Layout:      dl,
		Custom:      dirty,
		Reference:   ReferenceMCX(dl),
		Input:       dl.AllOnesInput(),
	})

	return exps, nil
}

// FindExperiment returns the named experiment.
func FindExperiment(exps []Experiment, name string) (Experiment, bool) {
	for _, e := range exps {
		if e.Name == name {
			return e, true
		}
	}
	return Experiment{}, false
}
