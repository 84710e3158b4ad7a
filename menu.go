package main

import (
	"fmt"
	"strings"
)

// menuItem is one experiment as listed in the picker.
type menuItem struct {
	name   string
	symbol string
}

func experimentMenu(exps []Experiment) []menuItem {
	items := make([]menuItem, len(exps))
	for i, e := range exps {
		items[i] = menuItem{
			name:   e.Name,
			symbol: fmt.Sprintf("C^%d X +%d", len(e.Layout.Controls), len(e.Layout.Ancillas)),
		}
	}
	return items
}

// menuHeight is the rendered height of the experiment picker.
func (m Model) menuHeight() int {
	return len(m.experiments) + 5
}

// renderMenu renders the experiment picker.
func (m Model) renderMenu(width int) string {
	var sb strings.Builder

	title := "Experiments"
	if m.focus == focusMenu {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", max(width-4, 10))))
	sb.WriteString("\n")

	for i, item := range experimentMenu(m.experiments) {
		if i == m.selected {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-20s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-20s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		sb.WriteString("\n")
	}
	phases := "non-zero phases"
	if m.allPhases {
		phases = "all phases"
	}
	sb.WriteString(dimStyle.Render(fmt.Sprintf(" tol=%g  negligible=%g  %s", m.tol.Equality, m.tol.Negligible, phases)))

	return menuBorderStyle.Width(width).Render(sb.String())
}
