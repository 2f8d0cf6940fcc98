package tuneup

import (
	"fmt"
	"time"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/helpers"
	"github.com/tuneup-harness/tuneup/framework/opt"
	"github.com/tuneup-harness/tuneup/framework/uia"
)

const (
	setupTitle    = "Setup"
	teardownTitle = "Teardown"
)

// Body is a test body or cleanup function. It fails by returning a non-nil error (see
// Failf) or by panicking.
type Body func(target uia.Target, app uia.Application) error

// SessionConfig contains options for the entire test run.
type SessionConfig struct {
	// Target resolves the automation target. It is called again before every test body
	// and every cleanup function.
	Target uia.TargetProvider

	// Logger receives the start/pass/fail/error events for every test that runs.
	Logger uia.Logger

	// Filters determines which test titles actually run.
	Filters TitleFilters

	// Defaults overrides fields of DefaultOptions for every test that does not specify
	// its own options, including Setup and Teardown.
	Defaults OptionOverrides

	// DebugLogger receives messages about the harness itself, such as skipped tests.
	DebugLogger framework.Logger
}

// TestCase is a registered test. It cannot be changed after registration.
type TestCase struct {
	title   string
	body    Body
	cleanup Body
	options opt.Maybe[Options]
}

func (tc TestCase) Title() string { return tc.title }

func (tc TestCase) HasCleanup() bool { return tc.cleanup != nil }

// Options returns the options that were specified at registration, if any.
func (tc TestCase) Options() opt.Maybe[Options] { return tc.options }

// Session holds the queue of registered tests and runs them.
//
// A Session is single-use: TearDown drains the queue once, and it is not safe for
// concurrent use.
type Session struct {
	config  SessionConfig
	queue   []TestCase
	drained bool
	results Results
}

// NewSession creates a Session. A nil Logger or DebugLogger discards output.
func NewSession(config SessionConfig) *Session {
	if config.Logger == nil {
		config.Logger = nullLogger{}
	}
	if config.DebugLogger == nil {
		config.DebugLogger = framework.NullLogger()
	}
	return &Session{config: config}
}

// DefaultOptions returns the options used by tests that specify none.
func (s *Session) DefaultOptions() Options {
	return s.config.Defaults.Apply(DefaultOptions())
}

// Queue returns a copy of the tests that are registered and not yet run.
func (s *Session) Queue() []TestCase {
	return append([]TestCase(nil), s.queue...)
}

// Results returns the results of every test that has run so far.
func (s *Session) Results() Results {
	return s.results
}

// Setup runs body immediately, under the title "Setup" and with default options. It is
// meant to put the application into a known state before the registered tests run.
func (s *Session) Setup(body Body) {
	s.runProtected(setupTitle, body, opt.None[Options]())
}

// TestOption is an optional parameter for Test.
type TestOption interface {
	Configure(*testParams) error
}

type testParams struct {
	cleanup   Body
	options   opt.Maybe[Options]
	overrides OptionOverrides
}

type testOptionFunc func(*testParams) error

func (f testOptionFunc) Configure(params *testParams) error { return f(params) }

// WithCleanup specifies a function to run right after the test body, whether or not the
// body failed. It runs even when the title filters excluded the test body.
func WithCleanup(cleanup Body) TestOption {
	return testOptionFunc(func(params *testParams) error {
		params.cleanup = cleanup
		return nil
	})
}

// WithOptions specifies the complete set of diagnostic options for the test.
func WithOptions(options Options) TestOption {
	return testOptionFunc(func(params *testParams) error {
		params.options = opt.Some(options)
		return nil
	})
}

// WithOverrides changes only some diagnostic options. They are applied on top of
// WithOptions if that was also given, or else on top of the session defaults.
func WithOverrides(overrides OptionOverrides) TestOption {
	return testOptionFunc(func(params *testParams) error {
		params.overrides = overrides.Merge(params.overrides)
		return nil
	})
}

// Test adds a test to the queue. Nothing runs until TearDown is called.
func (s *Session) Test(title string, body Body, options ...TestOption) {
	if s.drained {
		s.config.DebugLogger.Printf("Ignoring test %q registered after the queue was drained", title)
		return
	}
	var params testParams
	_ = helpers.ApplyOptions(&params, options...)

	tc := TestCase{title: title, body: body, cleanup: params.cleanup, options: params.options}
	if !params.overrides.IsEmpty() {
		tc.options = opt.Some(params.overrides.Apply(params.options.OrElse(s.DefaultOptions())))
	}
	s.queue = append(s.queue, tc)
}

// TearDown runs every queued test in the order it was registered, each followed by its
// cleanup function if any, and then runs body under the title "Teardown".
//
// The "Teardown" test runs exactly once per call, however the queued tests behaved.
func (s *Session) TearDown(body Body) {
	s.drain()
	s.runTeardown(body)
}

func (s *Session) runTeardown(body Body) {
	defer func() {
		if r := recover(); r != nil {
			s.config.DebugLogger.Printf("Unexpected failure while running %s: %v", teardownTitle, r)
		}
	}()
	s.runProtected(teardownTitle, body, opt.None[Options]())
}

func (s *Session) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.config.DebugLogger.Printf("Unexpected failure while running queued tests: %v", r)
		}
	}()

	queue := s.queue
	s.queue = nil
	s.drained = true

	for _, tc := range queue {
		s.runProtected(tc.title, tc.body, tc.options)
		if tc.cleanup != nil {
			s.runCleanup(tc)
		}
	}
}

func (s *Session) runCleanup(tc TestCase) {
	startTime := time.Now()
	_, _, outcome := s.invoke(tc.cleanup)
	if outcome.OK() {
		return
	}
	s.config.Logger.LogError(fmt.Sprintf("Failed to run cleanup of: %q", tc.title))
	s.config.Logger.LogError(outcome.Trace())
	s.results.CleanupFailures = append(s.results.CleanupFailures,
		TestResult{Title: tc.title, Outcome: outcome, Duration: time.Since(startTime)})
}

// runProtected runs one test body, logging start and then pass or fail. On failure it
// collects whatever diagnostics the options ask for. It returns false if the title was
// excluded by the filters, in which case nothing was logged.
func (s *Session) runProtected(title string, body Body, options opt.Maybe[Options]) bool {
	if !s.config.Filters.Match(title) {
		s.config.DebugLogger.Printf("Skipping %q: excluded by title filters", title)
		return false
	}
	opts := options.OrElse(s.DefaultOptions())

	startTime := time.Now()
	s.config.Logger.LogStart(title)
	target, app, outcome := s.invoke(body)
	if outcome.OK() {
		s.config.Logger.LogPass(title)
	} else {
		s.logFailure(title, outcome, opts, target, app)
		s.config.Logger.LogFail(title)
	}
	s.results.add(TestResult{Title: title, Outcome: outcome, Duration: time.Since(startTime)})
	return true
}

// invoke resolves fresh target and application handles and calls body with them. Any
// failure, including one while resolving the handles, is returned as the Outcome.
func (s *Session) invoke(body Body) (target uia.Target, app uia.Application, outcome Outcome) {
	outcome = outcomeOf(func() error {
		if s.config.Target == nil {
			return fmt.Errorf("no automation target is configured")
		}
		target = s.config.Target()
		if target == nil {
			return fmt.Errorf("automation target is not available")
		}
		app = target.FrontMostApp()
		if body == nil {
			return nil
		}
		return body(target, app)
	})
	return target, app, outcome
}

func (s *Session) logFailure(title string, outcome Outcome, opts Options, target uia.Target, app uia.Application) {
	s.config.Logger.LogError(outcome.Message())
	if opts.LogStackTrace {
		s.config.Logger.LogError(outcome.Trace())
	}
	if opts.LogTree && target != nil {
		s.collectDiagnostic("element tree", target.LogElementTree)
	}
	if opts.LogTreeJSON && app != nil {
		s.collectDiagnostic("JSON element tree", func() { app.MainWindow().LogElementTreeJSON() })
	}
	if opts.ScreenCapture && target != nil {
		s.collectDiagnostic("screen capture", func() { target.CaptureScreenWithName(title + "-fail") })
	}
}

func (s *Session) collectDiagnostic(description string, action func()) {
	outcome := outcomeOf(func() error {
		action()
		return nil
	})
	if !outcome.OK() {
		s.config.Logger.LogError(fmt.Sprintf("Failed to collect %s: %s", description, outcome.Message()))
	}
}

type nullLogger struct{}

func (nullLogger) LogStart(string) {}
func (nullLogger) LogPass(string)  {}
func (nullLogger) LogFail(string)  {}
func (nullLogger) LogError(string) {}
