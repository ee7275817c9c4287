package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mrz1836/go-test-runner/internal/engine"
	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/executor"
)

//nolint:gochecknoglobals // Required by cobra
var verboseList bool

// listCmd represents the list command
//
//nolint:gochecknoglobals // Required by cobra
var listCmd = &cobra.Command{
	Use:   "list [flags] binary...",
	Short: "List the test cases of test programs",
	Long: `List the test cases exposed by one or more test programs without
running them. With --verbose, each case also shows its non-default
metadata properties in canonical form.`,
	Example: `  # List the cases of a test program
  go-test-runner list ./integration_test

  # Include each case's metadata properties
  go-test-runner list --verbose ./integration_test`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCases,
}

//nolint:gochecknoinits // Required by cobra
func init() {
	listCmd.Flags().BoolVarP(&verboseList, "verbose", "v", false, "Show metadata properties of each test case")
}

func listCases(cmd *cobra.Command, args []string) error {
	formatter := newFormatter()
	exec := executor.New()

	var failed bool
	for _, binary := range args {
		program := &engine.Program{Binary: binary}

		cases, err := exec.List(cmd.Context(), program)
		if err != nil {
			formatter.Error("Failed to list test cases of %s: %v", binary, err)
			failed = true
			continue
		}

		for _, tc := range cases {
			fmt.Printf("%s:%s\n", binary, tc.Name())
			if !verboseList {
				continue
			}

			props := tc.Metadata().AllProperties()
			keys := make([]string, 0, len(props))
			for key := range props {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				formatter.Detail("%s = %s", key, props[key])
			}
		}
	}

	if failed {
		return prerrors.ErrListFailed
	}
	return nil
}
