// Package engine provides the test case model and its execution contract
package engine

// ResultType identifies the outcome variant of a completed test case
type ResultType int

const (
	// Passed means the test case ran and succeeded
	Passed ResultType = iota

	// Failed means the test case ran and reported a failure
	Failed

	// Skipped means the test case did not run, with a reason
	Skipped

	// ExpectedFailure means the test case failed in a way it declared
	// it would
	ExpectedFailure

	// Broken means the test case could not be executed properly
	Broken
)

// String returns the wire name of the result type
func (rt ResultType) String() string {
	switch rt {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case ExpectedFailure:
		return "expected_failure"
	case Broken:
		return "broken"
	default:
		return "unknown"
	}
}

// Result is the outcome of one test case: a type tag plus an optional
// free-text reason
type Result struct {
	Type   ResultType
	Reason string
}

// NewResult creates a result without a reason
func NewResult(rt ResultType) Result {
	return Result{Type: rt}
}

// NewResultWithReason creates a result carrying an explanation
func NewResultWithReason(rt ResultType, reason string) Result {
	return Result{Type: rt, Reason: reason}
}

// Good reports whether the result counts as a successful outcome.
// Skipped and expected failures are good; failures and broken runs are
// not.
func (r Result) Good() bool {
	switch r.Type {
	case Passed, Skipped, ExpectedFailure:
		return true
	default:
		return false
	}
}

// String renders the result for reporting, e.g. "passed" or
// "skipped: Requires root privileges"
func (r Result) String() string {
	if r.Reason == "" {
		return r.Type.String()
	}
	return r.Type.String() + ": " + r.Reason
}
