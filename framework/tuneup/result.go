package tuneup

import "time"

// Results summarizes a test run. The harness itself reports only through its uia.Logger;
// Results exists so that a command-line runner can choose an exit code or record failures.
type Results struct {
	Tests           []TestResult
	Failures        []TestResult
	CleanupFailures []TestResult
}

type TestResult struct {
	Title    string
	Outcome  Outcome
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// FailedTitles returns the titles of the failed tests in the order they ran.
func (r Results) FailedTitles() []string {
	ret := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		ret = append(ret, f.Title)
	}
	return ret
}

func (r *Results) add(result TestResult) {
	r.Tests = append(r.Tests, result)
	if !result.Outcome.OK() {
		r.Failures = append(r.Failures, result)
	}
}
