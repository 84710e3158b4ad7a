package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CustomExperiment pairs a loaded circuit with the reference MCX whose
// controls are every qubit but the last. The state check starts from all
// controls set.
func CustomExperiment(name string, c *Circuit) (Experiment, error) {
	if c.NumQubits < 2 {
		return Experiment{}, fmt.Errorf("%w: a custom MCX needs at least 2 qubits, got %d", ErrBadLayout, c.NumQubits)
	}
	l := StandardLayout(c.NumQubits-1, 0)
	return Experiment{
		Name:        name,
		Description: fmt.Sprintf("custom circuit against C^%d X", len(l.Controls)),
		Layout:      l,
		Custom:      c,
		Reference:   ReferenceMCX(l),
		Input:       l.AllOnesInput(),
	}, nil
}

// RunExperiment simulates both circuits of exp and verifies them.
func RunExperiment(exp Experiment, tol Tolerances, log zerolog.Logger) (*Report, error) {
	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Str("experiment", exp.Name).Logger()

	if exp.Custom.NumQubits != exp.Reference.NumQubits {
		return nil, fmt.Errorf("%s: %w: custom has %d qubits, reference has %d",
			exp.Name, ErrShapeMismatch, exp.Custom.NumQubits, exp.Reference.NumQubits)
	}

	customU, err := Unitary(exp.Custom)
	if err != nil {
		return nil, fmt.Errorf("%s: custom unitary: %w", exp.Name, err)
	}
	referenceU, err := Unitary(exp.Reference)
	if err != nil {
		return nil, fmt.Errorf("%s: reference unitary: %w", exp.Name, err)
	}
	customState, err := SimulateState(exp.Custom, exp.Input)
	if err != nil {
		return nil, fmt.Errorf("%s: custom state: %w", exp.Name, err)
	}
	referenceState, err := SimulateState(exp.Reference, exp.Input)
	if err != nil {
		return nil, fmt.Errorf("%s: reference state: %w", exp.Name, err)
	}
	log.Debug().
		Int("qubits", exp.Custom.NumQubits).
		Int("custom_gates", len(exp.Custom.Gates)).
		Msg("simulated")

	rep, err := Verify(Comparison{
		CustomState:      customState.Amplitudes,
		ReferenceState:   referenceState.Amplitudes,
		CustomUnitary:    customU,
		ReferenceUnitary: referenceU,
	}, tol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exp.Name, err)
	}

	rep.RunID = runID
	rep.Experiment = exp.Name
	rep.InputLabel = basisLabel(exp.Input, exp.Custom.NumQubits)
	rep.CustomOutput = customState.Support(tol.Negligible)
	rep.ReferenceOutput = referenceState.Support(tol.Negligible)
	customStats, referenceStats := exp.Custom.Stats(), exp.Reference.Stats()
	rep.CustomStats, rep.ReferenceStats = &customStats, &referenceStats

	log.Info().
		Int("dimension", rep.Dimension).
		Bool("state_equivalent", rep.StateEquivalent).
		Float64("fidelity", rep.Fidelity).
		Bool("global_phase_equivalent", rep.GlobalPhaseEquivalent).
		Bool("magnitude_equivalent", rep.MagnitudeEquivalent).
		Int("phase_groups", len(rep.PhaseGroups)).
		Msg("verified")
	if len(rep.Undefined) > 0 {
		log.Warn().Int("entries", len(rep.Undefined)).Msg("phase undefined where only one operator has support")
	}
	return rep, nil
}
