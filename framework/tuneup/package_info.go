// Package tuneup contains the test registration and execution harness.
//
// A test script creates one Session, optionally calls Setup, registers any number of tests
// with Test, and finally calls TearDown, which runs every registered test in the order it
// was registered and then runs the final teardown body. Every test runs inside a protective
// envelope: failures are reported through the session's uia.Logger, diagnostics are
// collected from the target, and nothing a test does can stop the rest of the run.
package tuneup
