package tuneup

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Outcome is the result of invoking a test body: either passed, or failed with a message
// and a trace.
type Outcome struct {
	failed  bool
	message string
	trace   string
}

func Passed() Outcome {
	return Outcome{}
}

func Failed(message, trace string) Outcome {
	return Outcome{failed: true, message: message, trace: trace}
}

// OK returns true if the body completed without failing.
func (o Outcome) OK() bool { return !o.failed }

// Message describes the failure, or is empty if the body passed.
func (o Outcome) Message() string { return o.message }

// Trace is the stack trace of the failure, or is empty if the body passed.
func (o Outcome) Trace() string { return o.trace }

func (o Outcome) String() string {
	if o.failed {
		return "failed: " + o.message
	}
	return "passed"
}

// outcomeOf runs action, turning a returned error or a panic into a failed Outcome.
func outcomeOf(action func() error) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = panicOutcome(r)
		}
	}()
	if err := action(); err != nil {
		return errorOutcome(err)
	}
	return Passed()
}

func errorOutcome(err error) Outcome {
	var es ErrorWithStacktrace
	if errors.As(err, &es) {
		return Failed(err.Error(), es.Trace())
	}
	return Failed(err.Error(), err.Error())
}

func panicOutcome(r interface{}) Outcome {
	if err, ok := r.(error); ok {
		var es ErrorWithStacktrace
		if errors.As(err, &es) {
			return Failed(err.Error(), es.Trace())
		}
		return Failed(err.Error(), err.Error()+"\n"+string(debug.Stack()))
	}
	message := fmt.Sprintf("%v", r)
	return Failed(message, message+"\n"+string(debug.Stack()))
}
