package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// paramPattern matches a single parameter value: numbers, pi expressions, or combinations.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "-pi", "-2*pi/3", "3.14e-2"
const paramPattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// parseParamExpr parses a single parameter expression, supporting plain numbers and pi expressions.
// Returns the parsed float64 value and true on success, or 0 and false on failure.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func parseParamExpr(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Try plain number first
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, true
	}

	// Try pi expression
	s = strings.ToLower(s)
	if matches := piExprRegex.FindStringSubmatch(s); matches != nil {
		negative := matches[1] == "-"
		coeffStr := matches[2]
		denomStr := matches[3]

		coeff := 1.0
		if coeffStr != "" {
			var err error
			coeff, err = strconv.ParseFloat(coeffStr, 64)
			if err != nil {
				return 0, false
			}
		}

		result := coeff * math.Pi

		if denomStr != "" {
			denom, err := strconv.ParseFloat(denomStr, 64)
			if err != nil || denom == 0 {
				return 0, false
			}
			result /= denom
		}

		if negative {
			result = -result
		}
		return result, true
	}

	return 0, false
}

// piDenominators are the denominators formatParam tries, smallest first so
// that 2*pi/4 prints as pi/2.
var piDenominators = []int{1, 2, 3, 4, 6, 8, 16}

// formatParam formats a float64 parameter value, using pi notation when the
// value is a small rational multiple of pi (pi, pi/2, 3*pi/4, -2*pi/3, ...).
func formatParam(val float64) string {
	if val != 0 {
		for _, d := range piDenominators {
			n := math.Round(val * float64(d) / math.Pi)
			if n == 0 || math.Abs(n) > 4*float64(d) || math.Abs(val-n*math.Pi/float64(d)) >= 1e-10 {
				continue
			}
			var sb strings.Builder
			if n < 0 {
				sb.WriteByte('-')
				n = -n
			}
			if n != 1 {
				fmt.Fprintf(&sb, "%d*", int(n))
			}
			sb.WriteString("pi")
			if d != 1 {
				fmt.Fprintf(&sb, "/%d", d)
			}
			return sb.String()
		}
	}
	return fmt.Sprintf("%g", val)
}

// parseParams parses a comma separated parameter list.
// Returns nil if any part fails to parse.
func parseParams(input string) []float64 {
	var params []float64
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val, ok := parseParamExpr(part)
		if !ok {
			return nil
		}
		params = append(params, val)
	}
	return params
}

// formatPhase renders a phase in radians with its pi form when one exists,
// e.g. "3.1416 rad (pi)".
func formatPhase(phase float64) string {
	if math.Abs(phase) < 5e-5 {
		phase = 0 // no "-0.0000"
	}
	s := fmt.Sprintf("%.4f rad", phase)
	if pf := formatParam(phase); strings.Contains(pf, "pi") {
		s += " (" + pf + ")"
	}
	return s
}
