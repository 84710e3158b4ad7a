package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config holds the run configuration. Environment (and .env) sets the
// defaults; command-line flags override them.
type Config struct {
	Tolerances   Tolerances
	Controls     int    // control count for the constructions that take one
	Experiment   string // experiment name, or "all"
	QASMFile     string // custom circuit compared against the reference MCX
	AllPhases    bool   // list zero phases too
	ShowCircuits bool
	OutFile      string
	Format       string // json or msgpack
	ShowFile     string // re-render a saved msgpack export
	Strict       bool   // exit 2 unless every run is globally equivalent
	TUI          bool
	Log          LogConfig
}

// LoadConfig reads .env, the environment and then args.
func LoadConfig(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Tolerances: Tolerances{
			Equality:   getEnvAsFloat("MCX_EQUALITY_TOL", DefaultEqualityTol),
			Negligible: getEnvAsFloat("MCX_NEGLIGIBLE_TOL", DefaultNegligibleTol),
		},
		Controls:   getEnvAsInt("MCX_CONTROLS", 3),
		Experiment: getEnv("MCX_EXPERIMENT", "all"),
		Format:     getEnv("MCX_REPORT_FORMAT", "json"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Pretty: getEnvAsBool("LOG_PRETTY", true),
			File:   getEnv("LOG_FILE", ""),
		},
	}

	fs := flag.NewFlagSet("mcxverify", flag.ContinueOnError)
	fs.Float64Var(&cfg.Tolerances.Equality, "tol", cfg.Tolerances.Equality, "equality tolerance for fidelity, overlap and magnitudes")
	fs.Float64Var(&cfg.Tolerances.Negligible, "negligible", cfg.Tolerances.Negligible, "amplitudes at or below this are structurally zero")
	fs.IntVar(&cfg.Controls, "controls", cfg.Controls, "control count for the Barenco and dirty-ancilla constructions")
	fs.StringVar(&cfg.Experiment, "experiment", cfg.Experiment, "experiment to run, or all")
	fs.StringVar(&cfg.QASMFile, "qasm", "", "QASM file with a custom MCX to verify (last qubit is the target)")
	fs.BoolVar(&cfg.AllPhases, "all-phases", false, "list every phase, not just the non-zero ones")
	fs.BoolVar(&cfg.ShowCircuits, "circuits", false, "draw the custom and reference circuits")
	fs.StringVar(&cfg.OutFile, "out", "", "write reports to this file")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "report export format: json or msgpack")
	fs.StringVar(&cfg.ShowFile, "show", "", "render reports from a msgpack export and exit")
	fs.BoolVar(&cfg.Strict, "strict", false, "exit with status 2 unless every circuit matches up to global phase")
	fs.BoolVar(&cfg.TUI, "tui", false, "open the interactive explorer")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn, error or disabled")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the tolerances, control count and export format.
func (c *Config) Validate() error {
	if c.Tolerances.Equality <= 0 || c.Tolerances.Negligible <= 0 {
		return fmt.Errorf("%w: tolerances must be positive (tol=%g, negligible=%g)",
			ErrInvalidConfig, c.Tolerances.Equality, c.Tolerances.Negligible)
	}
	if c.Tolerances.Negligible < c.Tolerances.Equality {
		return fmt.Errorf("%w: negligible (%g) is below the equality tolerance (%g)",
			ErrInvalidConfig, c.Tolerances.Negligible, c.Tolerances.Equality)
	}
	if c.Controls < 2 {
		return fmt.Errorf("%w: need at least 2 controls, got %d", ErrInvalidConfig, c.Controls)
	}
	if c.Format != "json" && c.Format != "msgpack" {
		return fmt.Errorf("%w: unknown report format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
