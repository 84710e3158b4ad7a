package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusMenu focus = iota
	focusQASM
	focusReport
)

// Model represents the TUI application state.
type Model struct {
	experiments []Experiment
	tol         Tolerances
	log         zerolog.Logger

	selected  int
	custom    *Circuit // edited custom circuit of the selected experiment
	report    *Report
	verifyErr error
	allPhases bool

	width      int
	height     int
	qasmEditor textarea.Model
	reportView viewport.Model
	focus      focus
	lastQASM   string
	statusMsg  string // transient status message (e.g. save confirmation)
}

func initialModel(exps []Experiment, tol Tolerances, log zerolog.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit the custom circuit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(16)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		experiments: exps,
		tol:         tol,
		log:         log,
		qasmEditor:  ta,
		reportView:  viewport.New(80, 20),
		focus:       focusMenu,
	}
	m.selectExperiment(0)
	return m
}

// selectExperiment loads the i-th experiment's custom circuit into the editor.
func (m *Model) selectExperiment(i int) {
	if i < 0 || i >= len(m.experiments) {
		return
	}
	m.selected = i
	m.custom = m.experiments[i].Custom
	qasm := m.custom.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	m.verify()
}

// verify re-runs the checker on the edited custom circuit.
func (m *Model) verify() {
	exp := m.experiments[m.selected]
	exp.Custom = m.custom
	m.report, m.verifyErr = RunExperiment(exp, m.tol, m.log)
	m.refreshReport()
}

func (m *Model) refreshReport() {
	exp := m.experiments[m.selected]
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Custom: " + exp.Description))
	sb.WriteString("\n")
	sb.WriteString(RenderCircuit(m.custom, m.reportView.Width))
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("Reference"))
	sb.WriteString("\n")
	sb.WriteString(RenderCircuit(exp.Reference, m.reportView.Width))
	sb.WriteString("\n")
	if m.verifyErr != nil {
		sb.WriteString(failStyle.Render(fmt.Sprintf("Cannot verify: %v", m.verifyErr)))
	} else {
		sb.WriteString(RenderReport(m.report, m.allPhases))
	}
	m.reportView.SetContent(sb.String())
}

func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm

	c := NewCircuit(0)
	if err := c.ParseQASM(qasm); err != nil {
		m.verifyErr = err
		m.refreshReport()
		return
	}
	m.custom = c
	m.verify()
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		leftW, mainH := m.panelSizes()
		m.qasmEditor.SetWidth(max(leftW-4, 20))
		m.qasmEditor.SetHeight(max(mainH-m.menuHeight()-6, 4))
		m.reportView.Width = max(m.width-leftW-8, 20)
		m.reportView.Height = max(mainH-2, 4)
		m.refreshReport()

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}
		if key == "ctrl+s" {
			name := m.experiments[m.selected].Name + ".qasm"
			if err := os.WriteFile(name, []byte(m.qasmEditor.Value()), 0644); err != nil {
				m.statusMsg = fmt.Sprintf("Save error: %v", err)
			} else {
				m.statusMsg = "Saved " + name
			}
			return m, nil
		}

		switch m.focus {
		case focusMenu:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "up", "k":
				if m.selected > 0 {
					m.selectExperiment(m.selected - 1)
				}
			case "down", "j":
				if m.selected < len(m.experiments)-1 {
					m.selectExperiment(m.selected + 1)
				}
			case "ctrl+r":
				m.selectExperiment(m.selected)
				m.statusMsg = "Restored " + m.experiments[m.selected].Name
			case "a":
				m.allPhases = !m.allPhases
				m.refreshReport()
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusReport
				m.qasmEditor.Blur()
			case "esc":
				m.focus = focusMenu
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}

		case focusReport:
			switch key {
			case "tab", "esc":
				m.focus = focusMenu
			case "q":
				return m, tea.Quit
			default:
				var cmd tea.Cmd
				m.reportView, cmd = m.reportView.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// panelSizes returns the left column width and the height of the main row.
func (m Model) panelSizes() (leftW, mainH int) {
	leftW = max(m.width/3, 34)
	mainH = max(m.height-controlsHeight-2, 8)
	return leftW, mainH
}

const controlsHeight = 4

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	leftW, mainH := m.panelSizes()
	rightW := m.width - leftW - 4

	menuPanel := m.renderMenu(leftW)
	qasmPanel := m.renderQASMPanel(leftW, mainH-lipgloss.Height(menuPanel))
	left := lipgloss.JoinVertical(lipgloss.Left, menuPanel, qasmPanel)

	reportPanel := m.renderReportPanel(rightW, mainH)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, left, reportPanel)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "Custom QASM"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(max(height-2, 1)).Render(sb.String())
}

// renderReportPanel renders the circuit diagrams and the verification report.
func (m Model) renderReportPanel(width, height int) string {
	var sb strings.Builder

	title := "Verification"
	if m.focus == focusReport {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %3.0f%%", m.reportView.ScrollPercent()*100)))
	sb.WriteString("\n")
	sb.WriteString(m.reportView.View())

	return circuitStyle.Width(width).Height(max(height-2, 1)).Render(sb.String())
}

// renderControlsPanel renders the bottom help/status bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Keys: "))
	sb.WriteString("↑↓/jk Experiment  Tab Switch focus  a All phases  ^R Restore  ^S Save  q/^C Quit")
	sb.WriteString("\n")

	switch {
	case m.statusMsg != "":
		sb.WriteString(activeGateStyle.Render(m.statusMsg))
	case m.verifyErr != nil:
		sb.WriteString(failStyle.Render(m.verifyErr.Error()))
	case m.report != nil:
		sb.WriteString(verdictLine(m.report))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// verdictLine is the one-line summary shown in the status bar.
func verdictLine(r *Report) string {
	switch {
	case r.GlobalPhaseEquivalent:
		return passStyle.Render("equivalent up to global phase")
	case r.RelativePhaseOnly():
		return warnStyle.Render(fmt.Sprintf("equivalent up to relative phase (%d distinct phases)", len(r.PhaseGroups)))
	default:
		return failStyle.Render(fmt.Sprintf("not equivalent: %d magnitude mismatches", len(r.Mismatches)))
	}
}
