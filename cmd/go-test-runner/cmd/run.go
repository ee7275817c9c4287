package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/go-test-runner/internal/config"
	"github.com/mrz1836/go-test-runner/internal/configtree"
	"github.com/mrz1836/go-test-runner/internal/engine"
	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/executor"
	"github.com/mrz1836/go-test-runner/internal/output"
	"github.com/mrz1836/go-test-runner/internal/requirements"
	"github.com/mrz1836/go-test-runner/internal/runner"
)

//nolint:gochecknoglobals // Required by cobra
var (
	configFile string
	buildRoot  string
	testSuite  string
	parallel   int
	failFast   bool
	quiet      bool
)

// runCmd represents the run command
//
//nolint:gochecknoglobals // Required by cobra
var runCmd = &cobra.Command{
	Use:   "run [flags] binary...",
	Short: "Run test programs",
	Long: `Run the test cases of one or more test programs.

Each binary is queried for its list of test cases, every case is checked
against its declared requirements, and eligible cases are executed with
their stdout and stderr captured. Cases whose requirements cannot be met
are reported as skipped with the unmet requirement as the reason.`,
	Example: `  # Run all cases of a single test program
  go-test-runner run ./integration_test

  # Run several programs with a suite configuration file
  go-test-runner run --config suite.yaml --test-suite integration a_test b_test

  # Run sequentially and stop at the first failure
  go-test-runner run --fail-fast -p 1 ./integration_test`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTests,
}

//nolint:gochecknoinits // Required by cobra
func init() {
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Suite configuration file (YAML)")
	runCmd.Flags().StringVar(&buildRoot, "build-root", "", "Directory test binaries are resolved against")
	runCmd.Flags().StringVar(&testSuite, "test-suite", "default", "Test suite name for configuration lookups")
	runCmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Number of parallel workers (0 = auto)")
	runCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop on first failed or broken test case")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress messages, show only results")
}

func runTests(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		formatter := output.NewDefault()
		formatter.Error("Failed to load configuration: %v", err)
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	formatter := newRunFormatter(cfg)

	tree, err := loadSuiteConfig(cfg)
	if err != nil {
		formatter.Error("%v", err)
		return err
	}

	root := buildRoot
	if root == "" {
		root = cfg.BuildRoot
	}

	ctx := cmd.Context()
	if cfg.Performance.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Performance.Timeout)*time.Second)
		defer cancel()
	}

	exec := executor.New()
	cases := discoverCases(ctx, exec, formatter, root, args)

	env := requirements.Current(tree)

	opts := runner.Options{
		Parallel: parallel,
		FailFast: failFast || cfg.Performance.FailFast,
	}
	if opts.Parallel == 0 {
		opts.Parallel = cfg.Performance.ParallelWorkers
	}
	if !quiet {
		opts.ProgressCallback = func(caseName, status string) {
			if status == "running" {
				formatter.Detail("running %s", caseName)
			}
		}
	}

	results, err := runner.New(exec, env).Run(ctx, cases, opts)
	if err != nil {
		formatter.Error("Run failed: %v", err)
		return err
	}

	for _, cr := range results.CaseResults {
		formatter.CaseResult(cr)
	}
	formatter.Summary(results)

	if !results.Success() {
		return fmt.Errorf("%d of %d test cases failed or broke",
			results.Failed+results.Broken, len(results.CaseResults))
	}
	return nil
}

// newRunFormatter builds the formatter, letting the framework
// configuration veto colors before the command-line flags apply
func newRunFormatter(cfg *config.Config) *output.Formatter {
	if !cfg.UI.ColorOutput {
		return output.NewWithColorMode(output.ColorNever)
	}
	return newFormatter()
}

// loadSuiteConfig loads the suite configuration tree named by the
// --config flag or the framework configuration. A nil tree means no
// configuration was requested.
func loadSuiteConfig(cfg *config.Config) (*configtree.Tree, error) {
	path := configFile
	if path == "" {
		path = cfg.ConfigFile
	}
	if path == "" {
		return nil, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", prerrors.ErrConfigFileNotFound, path)
	}
	return configtree.LoadFile(path)
}

// discoverCases queries each test binary for its case list. A program
// that cannot be listed contributes a single broken placeholder case so
// the failure shows up in the results instead of aborting the run.
func discoverCases(ctx context.Context, exec *executor.Executor, formatter *output.Formatter,
	root string, binaries []string) []engine.TestCase {
	var cases []engine.TestCase
	for _, binary := range binaries {
		program := &engine.Program{
			Binary:    binary,
			Root:      root,
			TestSuite: testSuite,
		}

		programCases, err := exec.List(ctx, program)
		if err != nil {
			formatter.Warning("Failed to list test cases of %s: %v", binary, err)
			cases = append(cases, engine.ListFailureCase(program, err))
			continue
		}
		cases = append(cases, programCases...)
	}
	return cases
}
