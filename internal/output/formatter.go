// Package output provides utilities for formatting user-facing output and messages
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/mrz1836/go-test-runner/internal/engine"
	"github.com/mrz1836/go-test-runner/internal/runner"
)

// Formatter handles all output formatting for the test runner
type Formatter struct {
	colorEnabled bool
	out          io.Writer
	err          io.Writer
}

// Options for configuring the formatter
type Options struct {
	ColorEnabled bool
	Out          io.Writer
	Err          io.Writer
}

// New creates a new formatter with the given options
func New(opts Options) *Formatter {
	f := &Formatter{
		colorEnabled: opts.ColorEnabled,
		out:          opts.Out,
		err:          opts.Err,
	}

	// Default to stdout/stderr if not specified
	if f.out == nil {
		f.out = os.Stdout
	}
	if f.err == nil {
		f.err = os.Stderr
	}

	// Don't modify global color state to avoid race conditions
	// Instead, we'll handle coloring in each method

	return f
}

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto automatically detects the best color setting
	ColorAuto ColorMode = iota
	// ColorAlways always enables color output
	ColorAlways
	// ColorNever never enables color output
	ColorNever
)

// NewDefault creates a formatter with default settings, respecting environment variables
func NewDefault() *Formatter {
	return NewWithColorMode(ColorAuto)
}

// NewWithColorMode creates a formatter with the specified color mode
func NewWithColorMode(mode ColorMode) *Formatter {
	colorEnabled := shouldUseColor(mode)

	return New(Options{
		ColorEnabled: colorEnabled,
		Out:          os.Stdout,
		Err:          os.Stderr,
	})
}

// shouldUseColor determines if color output should be enabled based on the mode
func shouldUseColor(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		// Check explicit disable flags first
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if os.Getenv("GO_TEST_RUNNER_COLOR_OUTPUT") == "false" {
			return false
		}
		// Check for dumb terminal
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		// Check if running in CI environment
		if isCI() {
			return false
		}
		// Check if stdout is a TTY
		return isTTY()
	default:
		return false
	}
}

// isCI detects if we're running in a CI environment
func isCI() bool {
	// Check common CI environment variables
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"CIRCLECI",
		"TRAVIS",
		"BUILDKITE",
		"DRONE",
		"TEAMCITY_VERSION",
		"TF_BUILD", // Azure DevOps
		"APPVEYOR",
		"CODEBUILD_BUILD_ID", // AWS CodeBuild
	}

	for _, envVar := range ciEnvVars {
		if value := os.Getenv(envVar); value == "true" || value == "1" || (envVar != "CI" && value != "") {
			return true
		}
	}

	return false
}

// isTTY checks if stdout is connected to a terminal
func isTTY() bool {
	// os.Stdout is already *os.File, no need for type assertion
	return isatty.IsTerminal(os.Stdout.Fd())
}

// resultColor maps a result type to the color used when rendering it
func resultColor(rt engine.ResultType) *color.Color {
	switch rt {
	case engine.Passed:
		return color.New(color.FgGreen)
	case engine.Skipped, engine.ExpectedFailure:
		return color.New(color.FgYellow)
	case engine.Failed:
		return color.New(color.FgRed)
	case engine.Broken:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgWhite)
	}
}

// CaseResult prints the outcome line for a single completed test case
func (f *Formatter) CaseResult(cr runner.CaseResult) {
	label := fmt.Sprintf("%s:%s", cr.Program.Binary, cr.Name)
	if f.colorEnabled {
		c := resultColor(cr.Result.Type)
		c.SetWriter(f.out)
		_, _ = fmt.Fprintf(f.out, "%s  ->  ", label)
		_, _ = c.Fprintf(f.out, "%s", cr.Result.String())
		_, _ = fmt.Fprintf(f.out, "  [%s]\n", f.Duration(cr.Duration))
	} else {
		_, _ = fmt.Fprintf(f.out, "%s  ->  %s  [%s]\n", label, cr.Result.String(), f.Duration(cr.Duration))
	}
}

// Summary prints aggregate counters after a full run
func (f *Formatter) Summary(results *runner.Results) {
	total := len(results.CaseResults)

	_, _ = fmt.Fprintf(f.out, "\n")
	f.Detail("%d/%d passed (%d failed, %d skipped, %d expected failures, %d broken)",
		results.Passed, total, results.Failed, results.Skipped,
		results.ExpectedFailures, results.Broken)
	f.Detail("total time: %s", f.Duration(results.TotalDuration))

	if results.Success() {
		f.Success("All test cases passed")
	} else {
		f.Error("Some test cases failed")
	}
}

// Success prints a success message with green checkmark
func (f *Formatter) Success(format string, args ...interface{}) {
	if f.colorEnabled {
		c := color.New(color.FgGreen)
		c.SetWriter(f.out)
		_, _ = c.Fprintf(f.out, "✓ "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(f.out, "✓ "+format+"\n", args...)
	}
}

// Error prints an error message with red X
func (f *Formatter) Error(format string, args ...interface{}) {
	if f.colorEnabled {
		c := color.New(color.FgRed)
		c.SetWriter(f.err)
		_, _ = c.Fprintf(f.err, "✗ "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(f.err, "✗ "+format+"\n", args...)
	}
}

// Warning prints a warning message with yellow warning symbol
func (f *Formatter) Warning(format string, args ...interface{}) {
	if f.colorEnabled {
		c := color.New(color.FgYellow)
		c.SetWriter(f.err)
		_, _ = c.Fprintf(f.err, "⚠ "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(f.err, "⚠ "+format+"\n", args...)
	}
}

// Info prints an info message with blue info symbol
func (f *Formatter) Info(format string, args ...interface{}) {
	if f.colorEnabled {
		c := color.New(color.FgBlue)
		c.SetWriter(f.out)
		_, _ = c.Fprintf(f.out, "ℹ "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(f.out, "ℹ "+format+"\n", args...)
	}
}

// Header prints a section header
func (f *Formatter) Header(text string) {
	if f.colorEnabled {
		c := color.New(color.FgCyan, color.Bold)
		c.SetWriter(f.out)
		_, _ = c.Fprintf(f.out, "\n%s\n", text)
	} else {
		_, _ = fmt.Fprintf(f.out, "\n%s\n", text)
	}
}

// Detail prints detailed information with indentation
func (f *Formatter) Detail(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(f.out, "  "+format+"\n", args...)
}

// Duration formats a duration for display
func (f *Formatter) Duration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dμs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
