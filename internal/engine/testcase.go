package engine

import (
	"context"
	"path/filepath"

	"github.com/mrz1836/go-test-runner/internal/configtree"
	"github.com/mrz1836/go-test-runner/internal/metadata"
	"github.com/mrz1836/go-test-runner/internal/requirements"
)

// Program references a test binary on disk. A Program is owned by the
// caller and must outlive every test case built against it.
type Program struct {
	// Binary is the path of the test binary, relative to Root
	Binary string

	// Root is the directory the binary path is resolved against
	Root string

	// TestSuite is the name of the suite the program belongs to; it
	// scopes require.config lookups
	TestSuite string
}

// AbsolutePath returns the resolved path of the test binary
func (p *Program) AbsolutePath() string {
	if filepath.IsAbs(p.Binary) {
		return p.Binary
	}
	return filepath.Join(p.Root, p.Binary)
}

// Hooks observes the output of a running test case. The executor calls
// each method at most once, and only if the test produced output on that
// stream. A synthetic test case never invokes them.
type Hooks interface {
	// GotStdout is called with the path to the captured stdout
	GotStdout(path string)

	// GotStderr is called with the path to the captured stderr
	GotStderr(path string)
}

// nopHooks discards all output notifications
type nopHooks struct{}

func (nopHooks) GotStdout(string) {}
func (nopHooks) GotStderr(string) {}

// NopHooks returns hooks that ignore all notifications
func NopHooks() Hooks {
	return nopHooks{}
}

// Executor runs the body of a real test case. Implementations own
// process spawning, stream capture and timeout enforcement.
type Executor interface {
	Run(ctx context.Context, program *Program, name string,
		md *metadata.Metadata, cfg *configtree.Tree, hooks Hooks) Result
}

// TestCase is one runnable test. There are exactly two implementations:
// a real case built from a program's declared properties, and a
// synthetic case carrying a precomputed result.
type TestCase interface {
	// Program returns the test program the case belongs to
	Program() *Program

	// Name returns the case name, unique within its program
	Name() string

	// Description returns the declared description, possibly empty
	Description() string

	// Metadata returns the declared requirements, or nil for a
	// synthetic case
	Metadata() *metadata.Metadata

	// CheckRequirements reports why the case cannot run in the given
	// environment; empty means runnable
	CheckRequirements(env requirements.Environment) string

	// Run executes the case and returns its result
	Run(ctx context.Context, executor Executor, cfg *configtree.Tree, hooks Hooks) Result
}

// realTestCase is a test case backed by a binary's declared properties
type realTestCase struct {
	program *Program
	name    string
	md      *metadata.Metadata
}

// New creates a test case from already-built metadata
func New(program *Program, name string, md *metadata.Metadata) TestCase {
	return &realTestCase{program: program, name: name, md: md}
}

// FromProperties builds a test case by parsing the raw property map the
// program declared for it. A property that fails its grammar or an
// unknown key makes the whole construction fail.
func FromProperties(program *Program, name string, props map[string]string) (TestCase, error) {
	md, err := metadata.FromProperties(props)
	if err != nil {
		return nil, err
	}
	return New(program, name, md), nil
}

func (tc *realTestCase) Program() *Program            { return tc.program }
func (tc *realTestCase) Name() string                 { return tc.name }
func (tc *realTestCase) Description() string          { return tc.md.Description() }
func (tc *realTestCase) Metadata() *metadata.Metadata { return tc.md }

func (tc *realTestCase) CheckRequirements(env requirements.Environment) string {
	return requirements.Check(tc.md, tc.program.TestSuite, env)
}

func (tc *realTestCase) Run(ctx context.Context, executor Executor,
	cfg *configtree.Tree, hooks Hooks) Result {
	if hooks == nil {
		hooks = NopHooks()
	}
	return executor.Run(ctx, tc.program, tc.name, tc.md, cfg, hooks)
}

// syntheticTestCase represents a programmatically synthesized
// pseudo-case, such as the placeholder emitted when a program's case
// list cannot be obtained
type syntheticTestCase struct {
	program     *Program
	name        string
	description string
	result      Result
}

// NewSynthetic creates a test case with a fixed description and a
// precomputed result
func NewSynthetic(program *Program, name, description string, result Result) TestCase {
	return &syntheticTestCase{
		program:     program,
		name:        name,
		description: description,
		result:      result,
	}
}

func (tc *syntheticTestCase) Program() *Program            { return tc.program }
func (tc *syntheticTestCase) Name() string                 { return tc.name }
func (tc *syntheticTestCase) Description() string          { return tc.description }
func (tc *syntheticTestCase) Metadata() *metadata.Metadata { return nil }

// CheckRequirements trivially passes: a synthetic case has no
// requirements to check
func (tc *syntheticTestCase) CheckRequirements(requirements.Environment) string {
	return ""
}

// Run returns the precomputed result without touching the executor or
// the hooks
func (tc *syntheticTestCase) Run(context.Context, Executor, *configtree.Tree, Hooks) Result {
	return tc.result
}
