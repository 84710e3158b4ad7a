package main

import (
	"slices"
)

// DAGNode represents a gate in the circuit as a node in a DAG.
// Dependencies represent ordering constraints - a gate cannot execute before
// the gates that touched the same qubits earlier in the program.
type DAGNode struct {
	ID           int   // index of the gate in program order
	Gate         Gate  // the gate itself
	Dependencies []int // IDs of nodes that must execute before this one
	Layer        int   // ASAP layer, 0-based
}

// CircuitDAG represents a quantum circuit as a Directed Acyclic Graph.
type CircuitDAG struct {
	Nodes     []*DAGNode
	NumQubits int
}

// FromCircuit creates a DAG from a Circuit, linking every gate to the last
// gate seen on each of its qubits. Barriers depend on, and block, every qubit.
func FromCircuit(circuit *Circuit) *CircuitDAG {
	dag := &CircuitDAG{
		Nodes:     make([]*DAGNode, 0, len(circuit.Gates)),
		NumQubits: circuit.NumQubits,
	}

	lastGateOnQubit := make(map[int]int)
	qubitLayer := make(map[int]int)

	for id, gate := range circuit.Gates {
		node := &DAGNode{ID: id, Gate: gate}

		qubitsUsed := gate.Qubits()
		if gate.Type == "BARRIER" {
			qubitsUsed = make([]int, circuit.NumQubits)
			for q := 0; q < circuit.NumQubits; q++ {
				qubitsUsed[q] = q
			}
		}

		depSet := make(map[int]bool)
		for _, qubit := range qubitsUsed {
			if lastID, ok := lastGateOnQubit[qubit]; ok {
				depSet[lastID] = true
			}
			node.Layer = max(node.Layer, qubitLayer[qubit])
		}
		var deps []int
		for dep := range depSet {
			deps = append(deps, dep)
		}
		slices.Sort(deps)
		node.Dependencies = deps

		for _, qubit := range qubitsUsed {
			lastGateOnQubit[qubit] = id
			qubitLayer[qubit] = node.Layer + 1
		}
		dag.Nodes = append(dag.Nodes, node)
	}

	return dag
}

// TopologicalSort returns nodes in an order respecting dependencies (Kahn's
// algorithm, ties broken by program order).
func (dag *CircuitDAG) TopologicalSort() []*DAGNode {
	indegree := make([]int, len(dag.Nodes))
	dependents := make([][]int, len(dag.Nodes))
	for _, node := range dag.Nodes {
		indegree[node.ID] = len(node.Dependencies)
		for _, dep := range node.Dependencies {
			dependents[dep] = append(dependents[dep], node.ID)
		}
	}

	var ready []int
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}

	result := make([]*DAGNode, 0, len(dag.Nodes))
	for len(ready) > 0 {
		slices.Sort(ready)
		id := ready[0]
		ready = ready[1:]
		result = append(result, dag.Nodes[id])
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	return result
}

// Depth returns the number of layers.
func (dag *CircuitDAG) Depth() int {
	depth := 0
	for _, node := range dag.Nodes {
		depth = max(depth, node.Layer+1)
	}
	return depth
}

// CircuitStats summarizes a circuit for reports.
type CircuitStats struct {
	Qubits    int            `json:"qubits"`
	Gates     int            `json:"gates"`
	Depth     int            `json:"depth"`
	Toffolis  int            `json:"toffolis"`
	GateCount map[string]int `json:"gate_count"`
}

// Stats counts gates by type and measures depth. Barriers are not counted.
func (dag *CircuitDAG) Stats() CircuitStats {
	stats := CircuitStats{
		Qubits:    dag.NumQubits,
		Depth:     dag.Depth(),
		GateCount: make(map[string]int),
	}
	for _, node := range dag.Nodes {
		if node.Gate.Type == "BARRIER" {
			continue
		}
		stats.Gates++
		stats.GateCount[node.Gate.Type]++
		if node.Gate.Type == "CCX" {
			stats.Toffolis++
		}
	}
	return stats
}

// Stats returns gate counts and depth for the circuit.
func (c *Circuit) Stats() CircuitStats {
	return FromCircuit(c).Stats()
}
