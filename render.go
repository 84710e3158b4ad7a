package main

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	total := width - n
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate box.
func gateDisplayName(g *Gate) string {
	switch {
	case g.IsDagger:
		return g.Type + "†"
	case g.Type == "CP" || g.Type == "CU1":
		return "P"
	default:
		return g.Type
	}
}

// controlSymbol returns the wire symbol for a control qubit.
func controlSymbol(gateType string) string {
	if gateType == "SWAP" {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the target of a multi-qubit gate,
// or "" when the target is drawn as a box.
func targetSymbol(gateType string) string {
	switch gateType {
	case "CX", "CCX", "MCX", "TOFFOLI":
		return "⊕"
	case "CZ", "CCZ", "MCZ":
		return "●"
	case "SWAP":
		return "×"
	default:
		return ""
	}
}

// ──────────────────────────── Column packing ────────────────────────────

// gateSpan is the range of wires a gate's drawing covers.
func gateSpan(g Gate, numQubits int) (lo, hi int) {
	if g.Type == "BARRIER" {
		return 0, numQubits - 1
	}
	qs := g.Qubits()
	return slices.Min(qs), slices.Max(qs)
}

// packColumns assigns gates to diagram columns in dependency order. A gate
// occupies every wire between its outermost qubits, so vertical connectors
// never cross another gate's box.
func packColumns(c *Circuit) [][]Gate {
	free := make([]int, c.NumQubits)
	var cols [][]Gate
	for _, node := range FromCircuit(c).TopologicalSort() {
		lo, hi := gateSpan(node.Gate, c.NumQubits)
		col := 0
		for q := lo; q <= hi; q++ {
			col = max(col, free[q])
		}
		for q := lo; q <= hi; q++ {
			free[q] = col + 1
		}
		for len(cols) <= col {
			cols = append(cols, nil)
		}
		cols[col] = append(cols[col], node.Gate)
	}
	return cols
}

// cellInfo describes what occupies one wire in one column.
type cellInfo struct {
	gate        *Gate
	isControl   bool
	isTarget    bool
	isBarrier   bool
	passThrough bool // a connector crosses this wire without touching it
	vertAbove   bool
	vertBelow   bool
}

func getCellInfo(col []Gate, qubit, numQubits int) cellInfo {
	for i := range col {
		g := &col[i]
		lo, hi := gateSpan(*g, numQubits)
		if qubit < lo || qubit > hi {
			continue
		}
		if g.Type == "BARRIER" {
			return cellInfo{isBarrier: true}
		}
		multi := hi > lo
		info := cellInfo{vertAbove: multi && qubit > lo, vertBelow: multi && qubit < hi}
		if !g.gateReferences(qubit) {
			info.passThrough = true
			return info
		}
		info.gate = g
		if multi {
			info.isTarget = qubit == g.Target
			info.isControl = !info.isTarget
		}
		return info
	}
	return cellInfo{}
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW (11) visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch {
	case info.isBarrier:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "│" + strings.Repeat("─", dashR)
		bot = vertRow

	case info.gate != nil && info.isControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render(controlSymbol(info.gate.Type)) + strings.Repeat("─", dashR)

	case info.gate != nil && info.isTarget && targetSymbol(info.gate.Type) != "":
		mid = strings.Repeat("─", dashL) + gateStyle.Render(targetSymbol(info.gate.Type)) + strings.Repeat("─", dashR)

	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.gate), gateNameW)

		boxTop := gateStyle.Render("┌" + strings.Repeat("─", gateNameW) + "┐")
		boxBot := gateStyle.Render("└" + strings.Repeat("─", gateNameW) + "┘")
		if info.vertAbove {
			boxTop = gateStyle.Render("┌" + strings.Repeat("─", gateNameW/2) + "┴" + strings.Repeat("─", gateNameW-gateNameW/2-1) + "┐")
		}
		if info.vertBelow {
			boxBot = gateStyle.Render("└" + strings.Repeat("─", gateNameW/2) + "┬" + strings.Repeat("─", gateNameW-gateNameW/2-1) + "┘")
		}
		top = strings.Repeat(" ", margin) + boxTop + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + boxBot + strings.Repeat(" ", rightMargin)

	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)

	default:
		mid = strings.Repeat("─", cellW)
	}
	return
}

// ──────────────────────────── Circuit rendering ────────────────────────────

// RenderCircuit draws the circuit as box-drawing text. Columns that do not
// fit in width are folded onto further blocks; width <= 0 disables folding.
func RenderCircuit(c *Circuit, width int) string {
	cols := packColumns(c)
	perBlock := max(len(cols), 1)
	if width > 0 {
		perBlock = max((width-labelVisualW)/cellW, 1)
	}

	var sb strings.Builder
	for start := 0; start == 0 || start < len(cols); start += perBlock {
		end := min(start+perBlock, len(cols))
		if start > 0 {
			sb.WriteString("\n")
		}

		header := strings.Repeat(" ", labelVisualW)
		for col := start; col < end; col++ {
			header += dimStyle.Render(padCenter(fmt.Sprintf("%d", col), cellW))
		}
		sb.WriteString(header + "\n")

		for qubit := 0; qubit < c.NumQubits; qubit++ {
			topLine := strings.Repeat(" ", labelVisualW)
			midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))) + "──"
			botLine := strings.Repeat(" ", labelVisualW)

			for col := start; col < end; col++ {
				top, mid, bot := renderCell(getCellInfo(cols[col], qubit, c.NumQubits))
				topLine += top
				midLine += mid
				botLine += bot
			}

			sb.WriteString(topLine + "\n")
			sb.WriteString(midLine + "\n")
			sb.WriteString(botLine + "\n")
		}
	}
	return sb.String()
}
