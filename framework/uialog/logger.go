package uialog

import (
	"fmt"
	"strings"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/tuneup"
	"github.com/tuneup-harness/tuneup/framework/uia"
)

// EndLogger is implemented by loggers that need to do something once the run is over,
// such as writing a report file or closing connections.
type EndLogger interface {
	EndLog(results tuneup.Results) error
}

// MultiLogger sends every event to each of its loggers in order.
type MultiLogger struct {
	Loggers []uia.Logger
}

func (m *MultiLogger) LogStart(title string) {
	for _, l := range m.Loggers {
		l.LogStart(title)
	}
}

func (m *MultiLogger) LogPass(title string) {
	for _, l := range m.Loggers {
		l.LogPass(title)
	}
}

func (m *MultiLogger) LogFail(title string) {
	for _, l := range m.Loggers {
		l.LogFail(title)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.Loggers {
		l.LogError(message)
	}
}

// EndLog calls EndLog on every logger that implements EndLogger. It returns the first
// error, but does not stop the others from finishing.
func (m *MultiLogger) EndLog(results tuneup.Results) error {
	var firstErr error
	for _, l := range m.Loggers {
		if el, ok := l.(EndLogger); ok {
			if err := el.EndLog(results); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

type errorOutput struct {
	logger uia.Logger
}

// ErrorOutput returns a framework.Logger that passes each message to logger.LogError. It is
// used to route diagnostic output from the automation target, such as element tree dumps,
// into the log of the test that requested it.
func ErrorOutput(logger uia.Logger) framework.Logger {
	return errorOutput{logger: logger}
}

func (e errorOutput) Println(args ...interface{}) {
	e.logger.LogError(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (e errorOutput) Printf(message string, args ...interface{}) {
	e.logger.LogError(fmt.Sprintf(message, args...))
}
