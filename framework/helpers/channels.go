package helpers

import (
	"time"

	"github.com/tuneup-harness/tuneup/framework/opt"
)

// TestContext is the subset of *testing.T used by the Require helpers.
type TestContext interface {
	Helper()
	Errorf(msgFormat string, msgArgs ...interface{})
	FailNow()
}

// NonBlockingSend is a shortcut for using select to do a non-blocking send. It returns
// true on success or false if the channel was full.
func NonBlockingSend[V any](ch chan<- V, value V) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// TryReceive waits up to timeout for a value from ch. The result has no value if it timed
// out.
func TryReceive[V any](ch <-chan V, timeout time.Duration) opt.Maybe[V] {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case value := <-ch:
		return opt.Some(value)
	case <-deadline.C:
		return opt.None[V]()
	}
}

// RequireValue receives a value from ch, or fails the test and stops it if none arrives
// within timeout.
func RequireValue[V any](t TestContext, ch <-chan V, timeout time.Duration) V {
	t.Helper()
	maybeValue := TryReceive(ch, timeout)
	if !maybeValue.IsDefined() {
		var empty V
		t.Errorf("timed out waiting for value of type %T", empty)
		t.FailNow()
	}
	return maybeValue.Value()
}
