package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"
)

// maxListed caps how many mismatch, phase or warning lines the text report prints.
const maxListed = 64

// Comparison is the input to Verify. The states are optional; when both are
// nil the state check is skipped.
type Comparison struct {
	CustomState      []complex128
	ReferenceState   []complex128
	CustomUnitary    mat.CMatrix
	ReferenceUnitary mat.CMatrix
}

// Report collects every equivalence notion for one custom/reference pair.
type Report struct {
	RunID      string     `json:"run_id,omitempty"`
	Experiment string     `json:"experiment,omitempty"`
	Dimension  int        `json:"dimension"`
	NumQubits  int        `json:"num_qubits"`
	Tolerances Tolerances `json:"tolerances"`

	StateChecked     bool    `json:"state_checked"`
	StateEquivalent  bool    `json:"state_equivalent"`
	StateOverlap     float64 `json:"state_overlap"`
	InputLabel       string  `json:"input_label,omitempty"`
	CustomOutput     []BasisAmplitude `json:"custom_output,omitempty"`
	ReferenceOutput  []BasisAmplitude `json:"reference_output,omitempty"`

	GlobalPhaseEquivalent bool    `json:"global_phase_equivalent"`
	Fidelity              float64 `json:"fidelity"`

	MagnitudeEquivalent bool            `json:"magnitude_equivalent"`
	Mismatches          []MismatchEntry `json:"mismatches,omitempty"`

	// PhaseTableMeaningful is true when magnitudes agree, so every phase
	// entry is a pure relative phase.
	PhaseTableMeaningful bool             `json:"phase_table_meaningful"`
	Phases               []PhaseEntry     `json:"phases,omitempty"`
	PhaseGroups          []PhaseGroup     `json:"phase_groups,omitempty"`
	Undefined            []UndefinedPhase `json:"undefined,omitempty"`

	CustomStats    *CircuitStats `json:"custom_stats,omitempty"`
	ReferenceStats *CircuitStats `json:"reference_stats,omitempty"`

	table PhaseTable
}

// PhaseTable returns the keyed phase table behind Phases.
func (r *Report) PhaseTable() PhaseTable {
	return r.table
}

// RelativePhaseOnly is true when the operators agree in magnitude but not up
// to a global phase, which is the usual signature of an ancilla construction
// leaving a control-dependent phase behind.
func (r *Report) RelativePhaseOnly() bool {
	return r.MagnitudeEquivalent && !r.GlobalPhaseEquivalent
}

// Verify runs every check on the comparison. Shape problems abort with an
// error; every other discrepancy is captured in the report.
func Verify(cmp Comparison, tol Tolerances) (*Report, error) {
	if cmp.CustomUnitary == nil || cmp.ReferenceUnitary == nil {
		return nil, fmt.Errorf("verify: %w: missing unitary", ErrEmpty)
	}
	dim, err := checkMatrices(cmp.CustomUnitary, cmp.ReferenceUnitary)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	rep := &Report{
		Dimension:  dim,
		NumQubits:  labelWidth(dim),
		Tolerances: tol,
	}

	if cmp.CustomState != nil || cmp.ReferenceState != nil {
		if len(cmp.CustomState) != dim || len(cmp.ReferenceState) != dim {
			return nil, fmt.Errorf("verify: %w: states have %d and %d amplitudes, unitaries are %dx%d",
				ErrShapeMismatch, len(cmp.CustomState), len(cmp.ReferenceState), dim, dim)
		}
		rep.StateChecked = true
		rep.StateEquivalent, rep.StateOverlap, err = StatesEquivalent(cmp.CustomState, cmp.ReferenceState, tol.Equality)
		if err != nil {
			return nil, fmt.Errorf("verify state: %w", err)
		}
	}

	rep.GlobalPhaseEquivalent, rep.Fidelity, err = GlobalPhaseEquivalent(cmp.CustomUnitary, cmp.ReferenceUnitary, tol.Equality)
	if err != nil {
		return nil, fmt.Errorf("verify unitary: %w", err)
	}

	rep.MagnitudeEquivalent, rep.Mismatches, err = MagnitudeEquivalent(cmp.CustomUnitary, cmp.ReferenceUnitary, tol.Equality)
	if err != nil {
		return nil, fmt.Errorf("verify magnitudes: %w", err)
	}

	rep.table, err = GeneratePhaseTable(cmp.CustomUnitary, cmp.ReferenceUnitary, tol.Negligible)
	if err != nil {
		return nil, fmt.Errorf("verify phases: %w", err)
	}
	rep.PhaseTableMeaningful = rep.MagnitudeEquivalent
	rep.Phases = rep.table.Sorted()
	rep.PhaseGroups = rep.table.Groups(tol.Negligible)
	rep.Undefined = rep.table.Undefined

	return rep, nil
}

// ──────────────────────────── Text rendering ────────────────────────────

func verdict(ok bool) string {
	if ok {
		return passStyle.Render("✔ yes")
	}
	return failStyle.Render("✘ no")
}

// RenderReport formats the report for a terminal. When all is false the
// phase table lists only entries with a non-zero phase.
func RenderReport(r *Report, all bool) string {
	var sb strings.Builder

	title := "Verification"
	if r.Experiment != "" {
		title += ": " + r.Experiment
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s\n\n", dimStyle.Render(fmt.Sprintf("%d qubits, %dx%d operator, tol=%g, negligible=%g",
		r.NumQubits, r.Dimension, r.Dimension, r.Tolerances.Equality, r.Tolerances.Negligible)))

	if r.CustomStats != nil && r.ReferenceStats != nil {
		fmt.Fprintf(&sb, "%s %d gates, depth %d, %d Toffoli\n", labelStyle.Render("Custom:   "),
			r.CustomStats.Gates, r.CustomStats.Depth, r.CustomStats.Toffolis)
		fmt.Fprintf(&sb, "%s %d gates, depth %d\n\n", labelStyle.Render("Reference:"),
			r.ReferenceStats.Gates, r.ReferenceStats.Depth)
	}

	if r.StateChecked {
		fmt.Fprintf(&sb, "%s %s  %s\n", labelStyle.Render("States match?                       "),
			verdict(r.StateEquivalent), dimStyle.Render(fmt.Sprintf("overlap=%.12f", r.StateOverlap)))
		if r.InputLabel != "" {
			fmt.Fprintf(&sb, "  input |%s⟩ → custom %s, reference %s\n", r.InputLabel,
				formatSupport(r.CustomOutput), formatSupport(r.ReferenceOutput))
		}
	}
	fmt.Fprintf(&sb, "%s %s  %s\n", labelStyle.Render("Unitaries match (global phase)?     "),
		verdict(r.GlobalPhaseEquivalent), dimStyle.Render(fmt.Sprintf("fidelity=%.12f", r.Fidelity)))
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Unitaries match (relative phase)?   "),
		verdict(r.MagnitudeEquivalent))

	if !r.MagnitudeEquivalent {
		sb.WriteString("\n")
		sb.WriteString(failStyle.Render(fmt.Sprintf("Entries differ in magnitude (%d):", len(r.Mismatches))))
		sb.WriteString("\n")
		for i, m := range r.Mismatches {
			if i == maxListed {
				fmt.Fprintf(&sb, "  … and %d more\n", len(r.Mismatches)-maxListed)
				break
			}
			fmt.Fprintf(&sb, "  Mismatch at (%d,%d): |custom|=%.4g, |reference|=%.4g\n", m.Row, m.Col, m.Custom, m.Reference)
		}
	}

	if len(r.Undefined) > 0 {
		sb.WriteString("\n")
		sb.WriteString(warnStyle.Render(fmt.Sprintf("Undefined phases (%d):", len(r.Undefined))))
		sb.WriteString("\n")
		for i, u := range r.Undefined {
			if i == maxListed {
				fmt.Fprintf(&sb, "  … and %d more\n", len(r.Undefined)-maxListed)
				break
			}
			fmt.Fprintf(&sb, "  (%s,%s): %s |custom|=%.4g, |reference|=%.4g\n",
				u.RowLabel, u.ColLabel, u.Kind, u.Custom, u.Reference)
		}
	}

	sb.WriteString("\n")
	header := "Phase table"
	if !r.PhaseTableMeaningful {
		header += " (magnitudes differ, phases are indicative only)"
	}
	sb.WriteString(titleStyle.Render(header))
	sb.WriteString("\n")
	for _, g := range r.PhaseGroups {
		fmt.Fprintf(&sb, "  %s on %d entries\n", gateStyle.Render(formatPhase(g.Phase)), g.Count)
	}

	listed := 0
	for _, e := range r.Phases {
		if !all && phaseDistance(e.Phase, 0) <= r.Tolerances.Negligible {
			continue
		}
		if listed == maxListed {
			sb.WriteString("  …\n")
			break
		}
		fmt.Fprintf(&sb, "  ('%s', '%s'): phase = %s\n", e.RowLabel, e.ColLabel, formatPhase(e.Phase))
		listed++
	}

	return sb.String()
}

func formatSupport(terms []BasisAmplitude) string {
	if len(terms) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, fmt.Sprintf("%.3g|%s⟩", t.Amplitude, t.Label))
	}
	return strings.Join(parts, " + ")
}

// ──────────────────────────── Export ────────────────────────────

// WriteReports encodes reports as "json" or "msgpack".
func WriteReports(w io.Writer, reports []*Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "msgpack":
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(reports)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// ReadReports decodes what WriteReports produced with format "msgpack".
func ReadReports(r io.Reader) ([]*Report, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	var reports []*Report
	if err := dec.Decode(&reports); err != nil {
		return nil, err
	}
	return reports, nil
}
