package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	prerrors "github.com/mrz1836/go-test-runner/internal/errors"
)

// ListCaseName is the name given to the synthetic case that stands in
// for a program whose case list could not be obtained
const ListCaseName = "__test_cases_list__"

// identProperty is the per-paragraph key carrying the case name; it is
// consumed by the parser and never reaches the metadata layer
const identProperty = "ident"

// ParseTestCaseList reads a program's case-list output and builds the
// declared test cases.
//
// The format is line oriented: an optional Content-Type header followed
// by a blank line, then one paragraph per test case of "key: value"
// lines, paragraphs separated by blank lines. Each paragraph must start
// with an ident line naming the case; the remaining lines are the raw
// properties handed to the metadata parser.
func ParseTestCaseList(program *Program, r io.Reader) ([]TestCase, error) {
	scanner := bufio.NewScanner(r)

	var cases []TestCase
	props := make(map[string]string)
	name := ""
	lineno := 0

	flush := func() error {
		if name == "" && len(props) == 0 {
			return nil
		}
		if name == "" {
			return fmt.Errorf("%w: test case paragraph without '%s'",
				prerrors.ErrListFailed, identProperty)
		}
		tc, err := FromProperties(program, name, props)
		if err != nil {
			return fmt.Errorf("%w: in test case '%s': %w", prerrors.ErrListFailed, name, err)
		}
		cases = append(cases, tc)
		name = ""
		props = make(map[string]string)
		return nil
	}

	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		if lineno == 1 && strings.HasPrefix(line, "Content-Type:") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: malformed line %d: %q",
				prerrors.ErrListFailed, lineno, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == identProperty {
			if err := flush(); err != nil {
				return nil, err
			}
			name = value
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("%w: property '%s' before any '%s' at line %d",
				prerrors.ErrListFailed, key, identProperty, lineno)
		}
		props[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", prerrors.ErrListFailed, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: no test cases declared", prerrors.ErrListFailed)
	}
	return cases, nil
}

// ListFailureCase wraps a listing failure into the synthetic pseudo-case
// that reports it as a broken result
func ListFailureCase(program *Program, err error) TestCase {
	return NewSynthetic(program, ListCaseName,
		"Bogus test cases whose only purpose is to report an error obtaining the real list",
		NewResultWithReason(Broken, err.Error()))
}
