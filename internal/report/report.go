// Package report collects per-extension results for a single run.
package report

import (
	"fmt"
	"strings"
)

// Result is the outcome of one extension.
type Result struct {
	Name string
	OK   bool
	Err  error
}

// Summary is an ordered list of results for one operation, such as
// "package" or "publish".
type Summary struct {
	verb    string
	past    string
	results []Result
}

// New returns an empty Summary. verb and past are the present and past
// forms of the operation, e.g. "package" and "packaged".
func New(verb, past string) *Summary {
	return &Summary{verb: verb, past: past}
}

// Succeeded records a success for name.
func (s *Summary) Succeeded(name string) {
	s.results = append(s.results, Result{Name: name, OK: true})
}

// Failed records a failure for name.
func (s *Summary) Failed(name string, err error) {
	s.results = append(s.results, Result{Name: name, Err: err})
}

// Results returns the recorded results in order.
func (s *Summary) Results() []Result {
	return append([]Result(nil), s.results...)
}

// Counts returns the number of successes and failures.
func (s *Summary) Counts() (ok, failed int) {
	for _, r := range s.results {
		if r.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Len returns the number of recorded results.
func (s *Summary) Len() int { return len(s.results) }

// Line formats a single result.
func (s *Summary) Line(r Result) string {
	if r.OK {
		return fmt.Sprintf("%s: successfully %s", r.Name, s.past)
	}
	return fmt.Sprintf("%s: failed to %s", r.Name, s.verb)
}

// String joins one line per result with newlines.
func (s *Summary) String() string {
	lines := make([]string, len(s.results))
	for i, r := range s.results {
		lines[i] = s.Line(r)
	}
	return strings.Join(lines, "\n")
}
