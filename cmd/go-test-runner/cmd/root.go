// Package cmd implements the command-line interface for the test runner
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/go-test-runner/internal/output"
)

//nolint:gochecknoglobals // Required by cobra
var (
	noColor   bool
	colorMode string
)

// rootCmd represents the base command when called without any subcommands
//
//nolint:gochecknoglobals // Required by cobra
var rootCmd = &cobra.Command{
	Use:   "go-test-runner",
	Short: "Go Test Runner - Metadata-aware execution of test programs",
	Long: `Go Test Runner executes test programs and their test cases, honoring
the metadata each case declares: timeouts, architecture and platform
restrictions, required configuration variables, required files and
programs, memory demands and privilege requirements.

Cases whose requirements are not met by the current system are skipped
with an explanatory reason instead of failing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo configures the version string shown by --version
func SetVersionInfo(version, commit, buildDate string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

//nolint:gochecknoinits // Required by cobra
func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output (same as --color=never)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Control color output: auto, always, never")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}

// newFormatter builds the output formatter from the global color flags
func newFormatter() *output.Formatter {
	if noColor {
		return output.NewWithColorMode(output.ColorNever)
	}

	switch colorMode {
	case "always":
		return output.NewWithColorMode(output.ColorAlways)
	case "never":
		return output.NewWithColorMode(output.ColorNever)
	default:
		return output.NewWithColorMode(output.ColorAuto)
	}
}
