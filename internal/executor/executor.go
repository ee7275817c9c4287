// Package executor spawns test binaries, captures their output and
// enforces execution timeouts
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mrz1836/go-test-runner/internal/configtree"
	"github.com/mrz1836/go-test-runner/internal/engine"
	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/metadata"
)

// listTimeout bounds how long a test program may take to print its case
// list
const listTimeout = 30 * time.Second

// Executor runs test binaries. It implements engine.Executor.
type Executor struct {
	// workDir receives the captured stdout/stderr files; defaults to
	// the system temporary directory
	workDir string
}

// Option configures an Executor
type Option func(*Executor)

// WithWorkDir stores captured output files under dir
func WithWorkDir(dir string) Option {
	return func(e *Executor) {
		e.workDir = dir
	}
}

// New creates an executor
func New(opts ...Option) *Executor {
	e := &Executor{workDir: os.TempDir()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// List obtains the test cases declared by a program by running it with
// the -l flag and parsing its output. Failures are reported to the
// caller, which typically degrades them into a synthetic broken case.
func (e *Executor) List(ctx context.Context, program *engine.Program) ([]engine.TestCase, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, program.AbsolutePath(), "-l")
	cmd.Dir = program.Root

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", prerrors.ErrListFailed, program.Binary, err)
	}

	return engine.ParseTestCaseList(program, &stdout)
}

// Run executes one test case body. The metadata timeout bounds the
// process; stdout and stderr are captured to files, and the hooks are
// notified for each stream that produced output.
func (e *Executor) Run(ctx context.Context, program *engine.Program, name string,
	md *metadata.Metadata, _ *configtree.Tree, hooks engine.Hooks) engine.Result {
	if hooks == nil {
		hooks = engine.NopHooks()
	}

	stdoutFile, err := os.CreateTemp(e.workDir, "stdout.*.txt")
	if err != nil {
		return engine.NewResultWithReason(engine.Broken,
			fmt.Sprintf("Failed to create stdout file: %v", err))
	}
	stderrFile, err := os.CreateTemp(e.workDir, "stderr.*.txt")
	if err != nil {
		_ = stdoutFile.Close()
		return engine.NewResultWithReason(engine.Broken,
			fmt.Sprintf("Failed to create stderr file: %v", err))
	}

	timeout := md.Timeout()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, program.AbsolutePath(), name)
	cmd.Dir = program.Root
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	runErr := cmd.Run()
	_ = stdoutFile.Close()
	_ = stderrFile.Close()

	notifyOutput(hooks.GotStdout, stdoutFile.Name())
	notifyOutput(hooks.GotStderr, stderrFile.Name())

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		return engine.NewResultWithReason(engine.Broken,
			fmt.Sprintf("Test case timed out after %s", timeout))
	case runErr == nil:
		return engine.NewResult(engine.Passed)
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return engine.NewResultWithReason(engine.Failed,
				fmt.Sprintf("Returned non-success exit status %d", exitErr.ExitCode()))
		}
		return engine.NewResultWithReason(engine.Broken,
			fmt.Sprintf("Failed to execute %s: %v", program.Binary, runErr))
	}
}

// notifyOutput invokes the hook iff the captured stream is non-empty
func notifyOutput(hook func(string), path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		// No output; leave nothing behind.
		_ = os.Remove(path)
		return
	}
	hook(filepath.Clean(path))
}
