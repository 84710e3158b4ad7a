package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// exitNotEquivalent is the -strict exit status when a circuit differs from
// its reference by more than a global phase.
const exitNotEquivalent = 2

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "mcxverify:", err)
		}
		os.Exit(1)
	}
	os.Exit(code)
}

func run(args []string, stdout io.Writer) (int, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return 1, err
	}

	log := NewLogger(cfg.Log)
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 1, fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log = newLogger(LogConfig{Level: cfg.Log.Level}, f)
	} else if cfg.TUI {
		// stderr would tear the alternate screen
		log = zerolog.Nop()
	}

	if cfg.ShowFile != "" {
		return 0, showReports(cfg, stdout)
	}

	exps, err := selectExperiments(cfg)
	if err != nil {
		return 1, err
	}
	log.Debug().Int("experiments", len(exps)).Msg("experiments selected")

	if cfg.TUI {
		p := tea.NewProgram(initialModel(exps, cfg.Tolerances, log), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return 1, err
		}
		return 0, nil
	}

	reports := make([]*Report, 0, len(exps))
	for _, exp := range exps {
		rep, err := RunExperiment(exp, cfg.Tolerances, log)
		if err != nil {
			return 1, err
		}
		reports = append(reports, rep)

		if cfg.ShowCircuits {
			fmt.Fprintln(stdout, titleStyle.Render("Custom circuit"))
			fmt.Fprintln(stdout, RenderCircuit(exp.Custom, 0))
			fmt.Fprintln(stdout, titleStyle.Render("Reference circuit"))
			fmt.Fprintln(stdout, RenderCircuit(exp.Reference, 0))
		}
		fmt.Fprintln(stdout, RenderReport(rep, cfg.AllPhases))
	}

	if cfg.OutFile != "" {
		if err := writeReportFile(cfg.OutFile, reports, cfg.Format); err != nil {
			return 1, err
		}
		log.Info().Str("file", cfg.OutFile).Str("format", cfg.Format).Int("reports", len(reports)).Msg("reports written")
	}

	if cfg.Strict {
		for _, rep := range reports {
			if !rep.GlobalPhaseEquivalent {
				return exitNotEquivalent, nil
			}
		}
	}
	return 0, nil
}

// selectExperiments resolves -qasm and -experiment into the runs to perform.
func selectExperiments(cfg *Config) ([]Experiment, error) {
	if cfg.QASMFile != "" {
		data, err := os.ReadFile(cfg.QASMFile)
		if err != nil {
			return nil, fmt.Errorf("read custom circuit: %w", err)
		}
		c := NewCircuit(0)
		if err := c.ParseQASM(string(data)); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.QASMFile, err)
		}
		exp, err := CustomExperiment(cfg.QASMFile, c)
		if err != nil {
			return nil, err
		}
		return []Experiment{exp}, nil
	}

	exps, err := Experiments(cfg.Controls)
	if err != nil {
		return nil, err
	}
	if cfg.Experiment == "all" {
		return exps, nil
	}
	exp, ok := FindExperiment(exps, cfg.Experiment)
	if !ok {
		return nil, fmt.Errorf("unknown experiment %q", cfg.Experiment)
	}
	return []Experiment{exp}, nil
}

func writeReportFile(path string, reports []*Report, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteReports(f, reports, format); err != nil {
		f.Close()
		return fmt.Errorf("write reports: %w", err)
	}
	return f.Close()
}

func showReports(cfg *Config, stdout io.Writer) error {
	f, err := os.Open(cfg.ShowFile)
	if err != nil {
		return fmt.Errorf("open reports: %w", err)
	}
	defer f.Close()
	reports, err := ReadReports(f)
	if err != nil {
		return fmt.Errorf("read reports: %w", err)
	}
	for _, rep := range reports {
		fmt.Fprintln(stdout, RenderReport(rep, cfg.AllPhases))
	}
	return nil
}
