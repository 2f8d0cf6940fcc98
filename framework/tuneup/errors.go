package tuneup

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrorWithStacktrace is an error that remembers where it was created. Test bodies get one
// from Failf; the harness uses the stacktrace when LogStackTrace is enabled.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StacktraceInfo
}

const maxStackDepth = 64

type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

// Trace renders the stacktrace one frame per line, innermost first.
func (e ErrorWithStacktrace) Trace() string {
	lines := make([]string, 0, len(e.Stacktrace)+1)
	lines = append(lines, e.Message)
	for _, s := range e.Stacktrace {
		lines = append(lines, "    at "+s.String())
	}
	return strings.Join(lines, "\n")
}

func (s StacktraceInfo) String() string {
	packageName := strings.TrimPrefix(s.Package, rootPackageName()+"/")
	return fmt.Sprintf("%s.%s (%s:%d)", packageName, s.Function, s.FileName, s.Line)
}

// Failf returns an error describing a test failure, with a stacktrace captured at the
// point where Failf was called. A test body reports failure by returning it:
//
//	if name == "" {
//		return tuneup.Failf("expected an application name")
//	}
func Failf(format string, args ...interface{}) error {
	return ErrorWithStacktrace{
		Message:    fmt.Sprintf(format, args...),
		Stacktrace: getStacktrace(1),
	}
}

func currentPackageName() string {
	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "?"
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "?"
	}
	packageName, _ := parsePackageAndFunctionName(f.Name())
	return packageName
}

func rootPackageName() string {
	parts := strings.Split(currentPackageName(), "/")
	if len(parts) < 3 {
		return strings.Join(parts, "/")
	}
	return strings.Join(parts[0:3], "/")
}

// getStacktrace returns the callers above the frame that is skip levels above
// getStacktrace itself, stopping when it reaches the session code that invoked the test
// body.
func getStacktrace(skip int) []StacktraceInfo {
	callers := []StacktraceInfo{}
	currentPackage := currentPackageName()
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs) // 0 is runtime.Callers, 1 is getStacktrace
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			break
		}
		packageName, functionName := parsePackageAndFunctionName(frame.Function)
		if packageName == currentPackage && strings.HasPrefix(functionName, "(*Session).") {
			break
		}
		callers = append(callers, StacktraceInfo{
			FileName: filepath.Base(frame.File),
			Package:  packageName,
			Function: functionName,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return callers
}

func parsePackageAndFunctionName(fullName string) (string, string) {
	lastSlash := strings.LastIndex(fullName, "/")
	firstDotAfterSlash := strings.Index(fullName[lastSlash+1:], ".")
	if firstDotAfterSlash < 0 {
		return fullName, ""
	}
	packageName := fullName[0 : lastSlash+firstDotAfterSlash+1]
	functionName := fullName[len(packageName)+1:]
	return packageName, functionName
}
