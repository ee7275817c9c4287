// Package main provides the entry point for the test runner
package main

import (
	"fmt"
	"os"

	"github.com/mrz1836/go-test-runner/cmd/go-test-runner/cmd"
)

func main() {
	os.Exit(run())
}

// run executes the main application logic and returns the exit code.
// This function is separated from main() to enable testing.
func run() int {
	cmd.SetVersionInfo(Version, Commit, BuildDate)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
