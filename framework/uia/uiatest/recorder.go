// Package uiatest provides in-memory implementations of the uia interfaces that record
// every call into a shared Journal, so tests can assert on the exact order of events.
package uiatest

import (
	"sync"

	"github.com/tuneup-harness/tuneup/framework/uia"
)

// Event kinds recorded in a Journal.
const (
	Start          = "start"
	Pass           = "pass"
	Fail           = "fail"
	Error          = "error"
	ElementTree    = "logElementTree"
	ElementJSON    = "logElementTreeJSON"
	ScreenCapture  = "captureScreen"
	FrontMostApp   = "frontMostApp"
	TargetResolved = "localTarget"
)

// Event is one recorded call.
type Event struct {
	Kind string
	Arg  string
}

// Journal is an append-only record of events, shared by a Logger and a Target.
type Journal struct {
	events []Event
	lock   sync.Mutex
}

func (j *Journal) add(kind, arg string) {
	j.lock.Lock()
	j.events = append(j.events, Event{Kind: kind, Arg: arg})
	j.lock.Unlock()
}

// Events returns a copy of everything recorded so far.
func (j *Journal) Events() []Event {
	j.lock.Lock()
	defer j.lock.Unlock()
	return append([]Event(nil), j.events...)
}

// Filter returns only the events whose kind is one of kinds.
func (j *Journal) Filter(kinds ...string) []Event {
	var ret []Event
	for _, e := range j.Events() {
		for _, k := range kinds {
			if e.Kind == k {
				ret = append(ret, e)
				break
			}
		}
	}
	return ret
}

// LogEvents returns only the Logger events.
func (j *Journal) LogEvents() []Event {
	return j.Filter(Start, Pass, Fail, Error)
}

// Logger is a uia.Logger that records into its Journal.
type Logger struct {
	Journal *Journal
}

func (l Logger) LogStart(title string)   { l.Journal.add(Start, title) }
func (l Logger) LogPass(title string)    { l.Journal.add(Pass, title) }
func (l Logger) LogFail(title string)    { l.Journal.add(Fail, title) }
func (l Logger) LogError(message string) { l.Journal.add(Error, message) }

// Target is a uia.Target that records into its Journal. If PanicOn names an event kind,
// the corresponding method panics after recording.
type Target struct {
	Journal *Journal
	AppName string
	PanicOn string
}

func (t *Target) record(kind, arg string) {
	t.Journal.add(kind, arg)
	if t.PanicOn == kind {
		panic(kind + " failed")
	}
}

func (t *Target) FrontMostApp() uia.Application {
	t.record(FrontMostApp, t.AppName)
	return application{target: t}
}

func (t *Target) LogElementTree() { t.record(ElementTree, "") }

func (t *Target) CaptureScreenWithName(name string) { t.record(ScreenCapture, name) }

// Provider returns a uia.TargetProvider that records each resolution and returns t.
func (t *Target) Provider() uia.TargetProvider {
	return func() uia.Target {
		t.record(TargetResolved, "")
		return t
	}
}

type application struct {
	target *Target
}

func (a application) MainWindow() uia.Window { return window(a) }

type window struct {
	target *Target
}

func (w window) LogElementTreeJSON() { w.target.record(ElementJSON, "") }

// New returns a Journal with a Logger and Target attached to it.
func New() (*Journal, Logger, *Target) {
	j := &Journal{}
	return j, Logger{Journal: j}, &Target{Journal: j, AppName: "App"}
}
