package main

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultEqualityTol bounds |fidelity-1|, |overlap-1| and entrywise
	// magnitude differences.
	DefaultEqualityTol = 1e-10

	// DefaultNegligibleTol is the magnitude at or below which an amplitude
	// is treated as structurally zero.
	DefaultNegligibleTol = 1e-8

	// phaseSnapTol folds angles this close to -pi onto +pi so a flipped
	// sign always reads as pi regardless of the sign of a zero imaginary part.
	phaseSnapTol = 1e-12
)

var (
	ErrShapeMismatch = errors.New("equivalence: shape mismatch")
	ErrNotSquare     = errors.New("equivalence: matrix is not square")
	ErrEmpty         = errors.New("equivalence: empty operand")
	ErrZeroNorm      = errors.New("equivalence: operand has zero norm")
)

// Tolerances configures the checker.
type Tolerances struct {
	Equality   float64 `json:"equality"`
	Negligible float64 `json:"negligible"`
}

func DefaultTolerances() Tolerances {
	return Tolerances{Equality: DefaultEqualityTol, Negligible: DefaultNegligibleTol}
}

// MismatchEntry is a matrix entry whose magnitudes differ beyond tolerance.
type MismatchEntry struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Custom    float64 `json:"custom"`
	Reference float64 `json:"reference"`
}

// BasisPair keys a phase table by basis labels.
type BasisPair struct {
	Row string
	Col string
}

// PhaseEntry is the relative phase angle(custom/reference) at one entry.
type PhaseEntry struct {
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	RowLabel string  `json:"row_label"`
	ColLabel string  `json:"col_label"`
	Phase    float64 `json:"phase"`
}

// UndefinedKind says which side of an entry carried the only amplitude.
type UndefinedKind int

const (
	// UnexpectedSupport: the custom operator has amplitude where the
	// reference has none.
	UnexpectedSupport UndefinedKind = iota
	// MissingSupport: the reference has amplitude the custom operator lacks.
	MissingSupport
)

func (k UndefinedKind) String() string {
	switch k {
	case UnexpectedSupport:
		return "unexpected-support"
	case MissingSupport:
		return "missing-support"
	default:
		return fmt.Sprintf("UndefinedKind(%d)", int(k))
	}
}

func (k UndefinedKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *UndefinedKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unexpected-support":
		*k = UnexpectedSupport
	case "missing-support":
		*k = MissingSupport
	default:
		return fmt.Errorf("unknown undefined-phase kind %q", text)
	}
	return nil
}

// UndefinedPhase flags an entry whose relative phase cannot be computed
// because exactly one side is negligible.
type UndefinedPhase struct {
	Row       int           `json:"row"`
	Col       int           `json:"col"`
	RowLabel  string        `json:"row_label"`
	ColLabel  string        `json:"col_label"`
	Custom    float64       `json:"custom"`
	Reference float64       `json:"reference"`
	Kind      UndefinedKind `json:"kind"`
}

// PhaseTable maps basis-label pairs to relative phases, built only over
// entries where both operators carry non-negligible amplitude.
type PhaseTable struct {
	NumQubits int
	Entries   map[BasisPair]PhaseEntry
	Undefined []UndefinedPhase
}

// Lookup returns the entry for the (row, col) matrix position.
func (t PhaseTable) Lookup(row, col int) (PhaseEntry, bool) {
	e, ok := t.Entries[BasisPair{basisLabel(row, t.NumQubits), basisLabel(col, t.NumQubits)}]
	return e, ok
}

// Sorted returns the entries in row-major order.
func (t PhaseTable) Sorted() []PhaseEntry {
	out := make([]PhaseEntry, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b PhaseEntry) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return out
}

// PhaseGroup is one distinct phase value and how many entries carry it.
type PhaseGroup struct {
	Phase float64 `json:"phase"`
	Count int     `json:"count"`
}

// Groups buckets the phases: two phases belong to the same group when they
// are within tol of each other modulo 2pi. Groups come out in ascending phase.
func (t PhaseTable) Groups(tol float64) []PhaseGroup {
	var groups []PhaseGroup
	for _, e := range t.Sorted() {
		found := false
		for i := range groups {
			if phaseDistance(groups[i].Phase, e.Phase) <= tol {
				groups[i].Count++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, PhaseGroup{Phase: e.Phase, Count: 1})
		}
	}
	slices.SortFunc(groups, func(a, b PhaseGroup) int {
		switch {
		case a.Phase < b.Phase:
			return -1
		case a.Phase > b.Phase:
			return 1
		}
		return 0
	})
	return groups
}

// basisLabel renders index as a zero-padded binary string of width n.
func basisLabel(index, n int) string {
	return fmt.Sprintf("%0*b", n, index)
}

// labelWidth is the number of qubits a dimension-dim operator acts on.
func labelWidth(dim int) int {
	if dim <= 1 {
		return 1
	}
	return bits.Len(uint(dim - 1))
}

// wrapPhase maps an angle into (-pi, pi].
func wrapPhase(p float64) float64 {
	p = math.Remainder(p, 2*math.Pi)
	if scalar.EqualWithinAbs(p, -math.Pi, phaseSnapTol) {
		return math.Pi
	}
	return p
}

// phaseDistance is the absolute angular distance between a and b, in [0, pi].
func phaseDistance(a, b float64) float64 {
	return math.Abs(math.Remainder(a-b, 2*math.Pi))
}

func checkVectors(custom, reference []complex128) error {
	if len(custom) == 0 || len(reference) == 0 {
		return ErrEmpty
	}
	if len(custom) != len(reference) {
		return fmt.Errorf("%w: custom has %d amplitudes, reference has %d", ErrShapeMismatch, len(custom), len(reference))
	}
	return nil
}

// checkMatrices validates two operators and returns their common dimension.
func checkMatrices(custom, reference mat.CMatrix) (int, error) {
	cr, cc := custom.Dims()
	rr, rc := reference.Dims()
	if cr == 0 || cc == 0 || rr == 0 || rc == 0 {
		return 0, ErrEmpty
	}
	if cr != cc {
		return 0, fmt.Errorf("%w: custom is %dx%d", ErrNotSquare, cr, cc)
	}
	if rr != rc {
		return 0, fmt.Errorf("%w: reference is %dx%d", ErrNotSquare, rr, rc)
	}
	if cr != rr {
		return 0, fmt.Errorf("%w: custom is %dx%d, reference is %dx%d", ErrShapeMismatch, cr, cc, rr, rc)
	}
	return cr, nil
}

// flatten copies a matrix into a row-major slice.
func flatten(m mat.CMatrix) []complex128 {
	r, c := m.Dims()
	out := make([]complex128, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// overlap returns |<a|b>| / (|a| |b|).
func overlap(a, b []complex128) (float64, error) {
	na, nb := cmplxs.Norm(a, 2), cmplxs.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0, ErrZeroNorm
	}
	return cmplx.Abs(cmplxs.Dot(a, b)) / (na * nb), nil
}

// StatesEquivalent reports whether two state vectors differ only by a global
// phase. Both are normalized first, so the returned overlap is
// |<custom|reference>| of the unit vectors.
func StatesEquivalent(custom, reference []complex128, tol float64) (bool, float64, error) {
	if err := checkVectors(custom, reference); err != nil {
		return false, 0, err
	}
	ov, err := overlap(custom, reference)
	if err != nil {
		return false, 0, err
	}
	return math.Abs(ov-1) < tol, ov, nil
}

// GlobalPhaseEquivalent reports whether two operators are equal up to a
// single global phase. The fidelity is the trace overlap of the
// Frobenius-normalized operators, |tr(A^H B)| / (|A|_F |B|_F), which for
// N x N unitaries is |tr(U^H V)| / N.
func GlobalPhaseEquivalent(custom, reference mat.CMatrix, tol float64) (bool, float64, error) {
	if _, err := checkMatrices(custom, reference); err != nil {
		return false, 0, err
	}
	fidelity, err := overlap(flatten(custom), flatten(reference))
	if err != nil {
		return false, 0, err
	}
	return math.Abs(fidelity-1) < tol, fidelity, nil
}

// MagnitudeEquivalent compares |custom[i,j]| with |reference[i,j]|. Entries
// whose magnitudes differ by tol or more are returned in row-major order.
// Relative phases are ignored.
func MagnitudeEquivalent(custom, reference mat.CMatrix, tol float64) (bool, []MismatchEntry, error) {
	n, err := checkMatrices(custom, reference)
	if err != nil {
		return false, nil, err
	}
	var mismatches []MismatchEntry
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cm, rm := cmplx.Abs(custom.At(i, j)), cmplx.Abs(reference.At(i, j))
			if math.Abs(cm-rm) >= tol {
				mismatches = append(mismatches, MismatchEntry{Row: i, Col: j, Custom: cm, Reference: rm})
			}
		}
	}
	return len(mismatches) == 0, mismatches, nil
}

// GeneratePhaseTable computes angle(custom[i,j]/reference[i,j]) in (-pi, pi]
// for every entry where both magnitudes exceed negligible. An amplitude
// exactly at negligible is structurally zero. Entries where only one side is
// significant are recorded in Undefined.
//
// The table is only a faithful phase pattern when MagnitudeEquivalent holds.
func GeneratePhaseTable(custom, reference mat.CMatrix, negligible float64) (PhaseTable, error) {
	n, err := checkMatrices(custom, reference)
	if err != nil {
		return PhaseTable{}, err
	}
	width := labelWidth(n)
	table := PhaseTable{
		NumQubits: width,
		Entries:   make(map[BasisPair]PhaseEntry),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c, r := custom.At(i, j), reference.At(i, j)
			cm, rm := cmplx.Abs(c), cmplx.Abs(r)
			cSig, rSig := cm > negligible, rm > negligible
			rowLabel, colLabel := basisLabel(i, width), basisLabel(j, width)

			switch {
			case cSig && rSig:
				table.Entries[BasisPair{rowLabel, colLabel}] = PhaseEntry{
					Row:      i,
					Col:      j,
					RowLabel: rowLabel,
					ColLabel: colLabel,
					Phase:    wrapPhase(cmplx.Phase(c / r)),
				}
			case cSig || rSig:
				kind := UnexpectedSupport
				if rSig {
					kind = MissingSupport
				}
				table.Undefined = append(table.Undefined, UndefinedPhase{
					Row:       i,
					Col:       j,
					RowLabel:  rowLabel,
					ColLabel:  colLabel,
					Custom:    cm,
					Reference: rm,
					Kind:      kind,
				})
			}
		}
	}
	return table, nil
}
