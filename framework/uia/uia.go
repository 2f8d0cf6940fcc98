// Package uia declares the collaborators that the tuneup harness drives but does not
// implement. Implementations live in framework/harness (remote automation) and
// framework/uialog (result sinks).
//
// The names follow the UIAutomation object model that tuneup scripts were written against.
package uia

// Target is a handle on the device or simulator under test.
type Target interface {
	// FrontMostApp returns the application that currently has focus.
	FrontMostApp() Application

	// LogElementTree dumps the target's current UI element hierarchy to the automation log.
	LogElementTree()

	// CaptureScreenWithName takes a screenshot and stores it under the given name.
	CaptureScreenWithName(name string)
}

// Application is a handle on a running application.
type Application interface {
	MainWindow() Window
}

// Window is a handle on an application window.
type Window interface {
	// LogElementTreeJSON dumps the window's element hierarchy as structured JSON.
	LogElementTreeJSON()
}

// TargetProvider resolves the current Target. It is called again for every test, since
// the state of the target may change between tests.
type TargetProvider func() Target

// Logger receives the start/pass/fail/error events that make up the observable result of
// a test run.
type Logger interface {
	LogStart(title string)
	LogPass(title string)
	LogFail(title string)
	LogError(message string)
}
