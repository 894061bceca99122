// Package gate composes independent discovery preconditions with AND
// semantics while keeping per-condition diagnostics.
package gate

import (
	"strings"

	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
)

// Condition is one named precondition. Check may have side effects such as
// logging; it is always invoked.
type Condition struct {
	Name  string
	Check func() bool
}

// Outcome records the value a single condition produced.
type Outcome struct {
	Name   string
	Passed bool
}

// Result is the conjunction of all evaluated conditions.
type Result struct {
	outcomes []Outcome
}

// Evaluate runs every condition in declaration order, never short-circuiting,
// and returns the AND of their results. No conditions means pass.
func Evaluate(logger logging.Logger, conditions ...Condition) Result {
	result := Result{outcomes: make([]Outcome, 0, len(conditions))}
	for _, c := range conditions {
		passed := c.Check != nil && c.Check()
		logger.Debugf("Gate condition %s is %t", c.Name, passed)
		result.outcomes = append(result.outcomes, Outcome{Name: c.Name, Passed: passed})
	}
	if failed := result.Failed(); len(failed) > 0 {
		logger.Debugf("Gate failed, conditions not met: %s", strings.Join(failed, ", "))
	} else {
		logger.Debugf("Gate passed, %d conditions met", len(result.outcomes))
	}
	return result
}

// Pass is a result with no failed conditions.
func Pass() Result {
	return Result{}
}

// Fail is a result in which each named condition failed.
func Fail(names ...string) Result {
	if len(names) == 0 {
		names = []string{"unspecified"}
	}
	r := Result{outcomes: make([]Outcome, 0, len(names))}
	for _, name := range names {
		r.outcomes = append(r.outcomes, Outcome{Name: name})
	}
	return r
}

func (r Result) Passed() bool {
	for _, o := range r.outcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// Failed lists the names of failed conditions in evaluation order.
func (r Result) Failed() []string {
	var failed []string
	for _, o := range r.outcomes {
		if !o.Passed {
			failed = append(failed, o.Name)
		}
	}
	return failed
}

func (r Result) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}
