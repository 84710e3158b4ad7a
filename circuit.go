package main

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	twoQubitParamRegex   = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	multiQubitRegex      = regexp.MustCompile(`^(\w+)\s+((?:q\[\d+\]\s*,\s*)+q\[\d+\]);?$`)
	qubitRefRegex        = regexp.MustCompile(`q\[(\d+)\]`)
	qregRegex            = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
)

var (
	ErrQubitOutOfRange = errors.New("circuit: qubit index out of range")
	ErrDuplicateQubit  = errors.New("circuit: qubit used twice by one gate")
	ErrNonUnitary      = errors.New("circuit: non-unitary operation")
	ErrUnknownGate     = errors.New("circuit: unknown gate")
)

// Gate represents a quantum gate placed on the circuit.
type Gate struct {
	Type     string
	Target   int
	Control  int       // -1 if not a single-control gate
	Controls []int     // control qubits for CCX/MCX/MCZ
	Params   []float64 // parameters for rotation gates
	IsDagger bool
}

// Circuit holds an ordered gate program over NumQubits qubits.
type Circuit struct {
	NumQubits int
	Gates     []Gate
}

// NewCircuit returns an empty circuit over n qubits.
func NewCircuit(n int) *Circuit {
	return &Circuit{NumQubits: n}
}

func (c *Circuit) place(g Gate) {
	c.Gates = append(c.Gates, g)
}

// AddGate appends a gate to the circuit.
func (c *Circuit) AddGate(gateType string, target int, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.place(Gate{Type: gateType, Target: target, Control: ctrl})
}

// AddParameterizedGate appends a parameterized gate to the circuit.
func (c *Circuit) AddParameterizedGate(gateType string, target int, params []float64, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.place(Gate{Type: gateType, Target: target, Control: ctrl, Params: params})
}

// AddMultiControlGate appends a multi-controlled gate to the circuit.
func (c *Circuit) AddMultiControlGate(gateType string, target int, controls []int) {
	c.place(Gate{Type: gateType, Target: target, Control: -1, Controls: slices.Clone(controls)})
}

// AddDaggerGate appends a dagger (adjoint) gate to the circuit.
func (c *Circuit) AddDaggerGate(gateType string, target int) {
	c.place(Gate{Type: gateType, Target: target, Control: -1, IsDagger: true})
}

// AddBarrier appends a barrier spanning all qubits.
func (c *Circuit) AddBarrier() {
	c.place(Gate{Type: "BARRIER", Target: -1, Control: -1})
}

func (c *Circuit) H(q int)           { c.AddGate("H", q) }
func (c *Circuit) X(q int)           { c.AddGate("X", q) }
func (c *Circuit) Z(q int)           { c.AddGate("Z", q) }
func (c *Circuit) CX(ctrl, t int)    { c.AddGate("CX", t, ctrl) }
func (c *Circuit) CZ(ctrl, t int)    { c.AddGate("CZ", t, ctrl) }
func (c *Circuit) CCX(c0, c1, t int) { c.AddMultiControlGate("CCX", t, []int{c0, c1}) }

// MCX appends a multi-controlled X. One control degrades to CX and two to CCX
// so the emitted QASM stays within qelib1.
func (c *Circuit) MCX(controls []int, target int) {
	switch len(controls) {
	case 0:
		c.X(target)
	case 1:
		c.CX(controls[0], target)
	case 2:
		c.CCX(controls[0], controls[1], target)
	default:
		c.AddMultiControlGate("MCX", target, controls)
	}
}

// Qubits returns every qubit the gate touches, target first.
func (g Gate) Qubits() []int {
	if g.Type == "BARRIER" {
		return nil
	}
	qs := []int{g.Target}
	if g.Control >= 0 {
		qs = append(qs, g.Control)
	}
	return append(qs, g.Controls...)
}

// gateReferences reports whether the gate references the given qubit.
func (g Gate) gateReferences(qubit int) bool {
	return slices.Contains(g.Qubits(), qubit)
}

// Validate checks every gate against the register size.
func (c *Circuit) Validate() error {
	for i, g := range c.Gates {
		seen := make(map[int]bool, 4)
		for _, q := range g.Qubits() {
			if q < 0 || q >= c.NumQubits {
				return fmt.Errorf("gate %d (%s): %w: q[%d] with %d qubits", i, g.Type, ErrQubitOutOfRange, q, c.NumQubits)
			}
			if seen[q] {
				return fmt.Errorf("gate %d (%s): %w: q[%d]", i, g.Type, ErrDuplicateQubit, q)
			}
			seen[q] = true
		}
	}
	return nil
}

func qasmQubits(qs []int) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = fmt.Sprintf("q[%d]", q)
	}
	return strings.Join(parts, ", ")
}

// ToQASM generates QASM 2.0 output from the circuit.
func (c *Circuit) ToQASM() string {
	maxQubit := -1
	for _, gate := range c.Gates {
		for _, q := range gate.Qubits() {
			maxQubit = max(maxQubit, q)
		}
	}
	numQubits := max(maxQubit+1, c.NumQubits, 1)

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", numQubits)

	for _, gate := range c.Gates {
		switch {
		case gate.Type == "BARRIER":
			qubits := make([]int, numQubits)
			for q := 0; q < numQubits; q++ {
				qubits[q] = q
			}
			fmt.Fprintf(&sb, "barrier %s;\n", qasmQubits(qubits))
		case len(gate.Controls) > 0:
			name := strings.ToLower(gate.Type)
			if gate.Type == "TOFFOLI" {
				name = "ccx"
			}
			fmt.Fprintf(&sb, "%s %s;\n", name, qasmQubits(append(slices.Clone(gate.Controls), gate.Target)))
		case gate.Control >= 0:
			name := strings.ToLower(gate.Type)
			if gate.Type == "CP" {
				name = "cu1"
			}
			if len(gate.Params) > 0 {
				fmt.Fprintf(&sb, "%s(%s) q[%d], q[%d];\n", name, formatParam(gate.Params[0]), gate.Control, gate.Target)
			} else {
				fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", name, gate.Control, gate.Target)
			}
		default:
			gateType := strings.ToLower(gate.Type)
			switch {
			case len(gate.Params) > 0:
				ps := make([]string, len(gate.Params))
				for i, p := range gate.Params {
					ps[i] = formatParam(p)
				}
				fmt.Fprintf(&sb, "%s(%s) q[%d];\n", gateType, strings.Join(ps, ", "), gate.Target)
			case gate.IsDagger:
				fmt.Fprintf(&sb, "%sdg q[%d];\n", gateType, gate.Target)
			default:
				fmt.Fprintf(&sb, "%s q[%d];\n", gateType, gate.Target)
			}
		}
	}

	return sb.String()
}

// ParseQASM parses QASM text and rebuilds the circuit from it.
// Operations with no unitary meaning (measure, reset, classical control)
// are rejected.
func (c *Circuit) ParseQASM(qasm string) error {
	c.Gates = nil

	for n, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" ||
			strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "creg") {
			continue
		}
		if err := c.parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
	}

	return c.Validate()
}

func (c *Circuit) parseLine(line string) error {
	if strings.HasPrefix(line, "qreg") {
		if matches := qregRegex.FindStringSubmatch(line); len(matches) > 2 {
			n, _ := strconv.Atoi(matches[2])
			c.NumQubits = n
		}
		return nil
	}
	if strings.HasPrefix(line, "barrier") {
		c.AddBarrier()
		return nil
	}
	if strings.HasPrefix(line, "measure") || strings.HasPrefix(line, "reset") || strings.HasPrefix(line, "if") {
		return fmt.Errorf("%w: %q", ErrNonUnitary, line)
	}

	// Two-qubit parameterized gates (CRZ, CU1, CP)
	if matches := twoQubitParamRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		param, _ := parseParamExpr(matches[2])
		ctrl, _ := strconv.Atoi(matches[3])
		target, _ := strconv.Atoi(matches[4])
		if gateType == "CU1" {
			gateType = "CP"
		}
		c.AddParameterizedGate(gateType, target, []float64{param}, ctrl)
		return nil
	}

	// Two-qubit gates: cx, cz, swap
	if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		ctrl, _ := strconv.Atoi(matches[2])
		target, _ := strconv.Atoi(matches[3])
		switch gateType {
		case "CX", "CNOT":
			c.CX(ctrl, target)
		case "CZ", "SWAP":
			c.AddGate(gateType, target, ctrl)
		case "MCX":
			c.MCX([]int{ctrl}, target)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownGate, matches[1])
		}
		return nil
	}

	// Multi-qubit gates: ccx/toffoli, mcx, ccz/mcz. The last qubit is the target.
	if matches := multiQubitRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		var qubits []int
		for _, ref := range qubitRefRegex.FindAllStringSubmatch(matches[2], -1) {
			q, _ := strconv.Atoi(ref[1])
			qubits = append(qubits, q)
		}
		controls, target := qubits[:len(qubits)-1], qubits[len(qubits)-1]
		switch gateType {
		case "CCX", "TOFFOLI", "MCX":
			c.MCX(controls, target)
		case "CCZ", "MCZ":
			c.AddMultiControlGate("MCZ", target, controls)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownGate, matches[1])
		}
		return nil
	}

	// Single-qubit parameterized gates (RX, RY, RZ, P, U1)
	if matches := singleGateParamRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		target, _ := strconv.Atoi(matches[3])
		params := parseParams(matches[2])
		if params == nil {
			return fmt.Errorf("invalid parameters %q", matches[2])
		}
		if gateType == "U1" {
			gateType = "P"
		}
		if !isSingleQubitGate(gateType) {
			return fmt.Errorf("%w: %s", ErrUnknownGate, matches[1])
		}
		c.AddParameterizedGate(gateType, target, params)
		return nil
	}

	// Single-qubit gate (including sdg, tdg)
	if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		target, _ := strconv.Atoi(matches[2])
		if base, ok := strings.CutSuffix(gateType, "DG"); ok {
			if base != "S" && base != "T" {
				return fmt.Errorf("%w: %s", ErrUnknownGate, matches[1])
			}
			c.AddDaggerGate(base, target)
			return nil
		}
		if !isSingleQubitGate(gateType) {
			return fmt.Errorf("%w: %s", ErrUnknownGate, matches[1])
		}
		c.AddGate(gateType, target)
		return nil
	}

	return fmt.Errorf("%w: cannot parse %q", ErrUnknownGate, line)
}

func isSingleQubitGate(gateType string) bool {
	switch gateType {
	case "H", "X", "Y", "Z", "I", "ID", "S", "T", "RX", "RY", "RZ", "P":
		return true
	}
	return false
}
