package uialog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

var consoleErrorColor = color.New(color.FgYellow)  //nolint:gochecknoglobals
var consoleFailedColor = color.New(color.FgRed)    //nolint:gochecknoglobals
var consolePassedColor = color.New(color.FgGreen)  //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen) //nolint:gochecknoglobals

// ConsoleLogger writes test progress in a human-readable form.
type ConsoleLogger struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// ShowPassed prints a line for every test that passes, not just the failures.
	ShowPassed bool
}

func (c ConsoleLogger) out() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}
	return c.Output
}

func (c ConsoleLogger) LogStart(title string) {
	fmt.Fprintf(c.out(), "[%s]\n", title)
}

func (c ConsoleLogger) LogPass(title string) {
	if c.ShowPassed {
		_, _ = consolePassedColor.Fprintf(c.out(), "  PASSED: %s\n", title)
	}
}

func (c ConsoleLogger) LogFail(title string) {
	_, _ = consoleFailedColor.Fprintf(c.out(), "  FAILED: %s\n", title)
}

func (c ConsoleLogger) LogError(message string) {
	for _, line := range strings.Split(message, "\n") {
		_, _ = consoleErrorColor.Fprintf(c.out(), "  %s\n", line)
	}
}

// PrintResults writes a summary of the run: a single line if everything passed, or the
// list of failed tests to os.Stderr.
func PrintResults(results tuneup.Results) {
	printResults(os.Stdout, os.Stderr, results)
}

func printResults(out, errOut io.Writer, results tuneup.Results) {
	if results.OK() {
		_, _ = allTestsPassedColor.Fprintf(out, "All tests passed (%d)\n", len(results.Tests))
	} else {
		_, _ = consoleFailedColor.Fprintf(errOut, "FAILED TESTS (%d of %d):\n", len(results.Failures), len(results.Tests))
		for _, f := range results.Failures {
			_, _ = consoleFailedColor.Fprintf(errOut, "  * %s\n", f.Title)
		}
	}
	if len(results.CleanupFailures) > 0 {
		_, _ = consoleErrorColor.Fprintf(errOut, "CLEANUP FAILURES (%d):\n", len(results.CleanupFailures))
		for _, f := range results.CleanupFailures {
			_, _ = consoleErrorColor.Fprintf(errOut, "  * %s\n", f.Title)
		}
	}
}
