// Package runner provides the scheduling engine that admits and
// executes test cases
package runner

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/mrz1836/go-test-runner/internal/configtree"
	"github.com/mrz1836/go-test-runner/internal/engine"
	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
	"github.com/mrz1836/go-test-runner/internal/requirements"
)

// Runner executes test cases against a fixed environment snapshot
type Runner struct {
	executor engine.Executor
	env      requirements.Environment
}

// Options configures a run
type Options struct {
	Parallel         int
	FailFast         bool
	Hooks            engine.Hooks
	ProgressCallback ProgressCallback
}

// Results contains the results of a run
type Results struct {
	CaseResults      []CaseResult
	Passed           int
	Failed           int
	Skipped          int
	ExpectedFailures int
	Broken           int
	TotalDuration    time.Duration
}

// CaseResult contains the result of a single test case
type CaseResult struct {
	Program  *engine.Program
	Name     string
	Result   engine.Result
	Duration time.Duration
}

// ProgressCallback is called during execution for progress updates
type ProgressCallback func(caseName, status string)

// New creates a new Runner. The environment snapshot is taken once; all
// admission decisions during the run evaluate against it.
func New(executor engine.Executor, env requirements.Environment) *Runner {
	return &Runner{executor: executor, env: env}
}

// Run admits and executes the given test cases. A case whose
// requirements are not met is reported as skipped, carrying the
// checker's explanation, and its body is never executed.
func (r *Runner) Run(ctx context.Context, cases []engine.TestCase, opts Options) (*Results, error) {
	start := time.Now()

	if len(cases) == 0 {
		return nil, prerrors.ErrNoTestPrograms
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	results := &Results{
		CaseResults: make([]CaseResult, 0, len(cases)),
	}

	if opts.FailFast {
		// Sequential execution, stopping at the first bad result.
		for _, tc := range cases {
			result := r.runCase(ctx, tc, opts)
			results.add(result, opts.ProgressCallback)
			if !result.Result.Good() {
				break
			}
		}
	} else {
		resultsChan := make(chan CaseResult, len(cases))
		var wg sync.WaitGroup
		semaphore := make(chan struct{}, parallel)

		for _, tc := range cases {
			wg.Add(1)
			go func(tc engine.TestCase) {
				defer wg.Done()

				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				resultsChan <- r.runCase(ctx, tc, opts)
			}(tc)
		}

		wg.Wait()
		close(resultsChan)

		for result := range resultsChan {
			results.add(result, opts.ProgressCallback)
		}
	}

	results.TotalDuration = time.Since(start)
	return results, nil
}

// runCase checks admission for a single case and executes it if eligible
func (r *Runner) runCase(ctx context.Context, tc engine.TestCase, opts Options) CaseResult {
	start := time.Now()

	if opts.ProgressCallback != nil {
		opts.ProgressCallback(tc.Name(), "running")
	}

	if reason := tc.CheckRequirements(r.env); reason != "" {
		return CaseResult{
			Program:  tc.Program(),
			Name:     tc.Name(),
			Result:   engine.NewResultWithReason(engine.Skipped, reason),
			Duration: time.Since(start),
		}
	}

	result := tc.Run(ctx, r.executor, r.config(), opts.Hooks)
	return CaseResult{
		Program:  tc.Program(),
		Name:     tc.Name(),
		Result:   result,
		Duration: time.Since(start),
	}
}

// config returns the configuration tree from the environment snapshot
func (r *Runner) config() *configtree.Tree {
	return r.env.Config
}

// add records one case result in the aggregate counters
func (res *Results) add(result CaseResult, progress ProgressCallback) {
	res.CaseResults = append(res.CaseResults, result)

	switch result.Result.Type {
	case engine.Passed:
		res.Passed++
	case engine.Failed:
		res.Failed++
	case engine.Skipped:
		res.Skipped++
	case engine.ExpectedFailure:
		res.ExpectedFailures++
	case engine.Broken:
		res.Broken++
	}

	if progress != nil {
		progress(result.Name, result.Result.Type.String())
	}
}

// Success reports whether every case ended in a good result
func (res *Results) Success() bool {
	return res.Failed == 0 && res.Broken == 0
}
