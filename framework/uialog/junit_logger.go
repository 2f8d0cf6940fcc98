package uialog

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

// JUnitLogger accumulates the status of each test and writes a JUnit XML report when
// EndLog is called.
type JUnitLogger struct {
	filePath   string
	suiteName  string
	properties map[string]string
	tests      []jUnitTestStatus // in the order they started; a title can appear more than once
	orphans    []string          // errors logged while no test was running
	lock       sync.Mutex
}

type jUnitTestStatus struct {
	title     string
	errors    []string
	failed    bool
	startTime time.Time
	duration  time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
	SystemErr  string             `xml:"system-err,omitempty"`
}

type jUnitXMLTestCase struct {
	XMLName   xml.Name         `xml:"testcase"`
	Classname string           `xml:"classname,attr"`
	Name      string           `xml:"name,attr"`
	Time      string           `xml:"time,attr"`
	Failure   *jUnitXMLFailure `xml:"failure,omitempty"`
	SystemErr string           `xml:"system-err,omitempty"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// NewJUnitLogger creates a JUnitLogger that will write to filePath. The properties are
// copied into the report as-is, along with a description of the filters.
func NewJUnitLogger(
	filePath string,
	suiteName string,
	filters tuneup.TitleFilters,
	properties map[string]string,
) *JUnitLogger {
	allProperties := map[string]string{
		"tests.filter.onlyRun": filters.OnlyRun.String(),
		"tests.filter.skip":    filters.Skip.String(),
	}
	for k, v := range properties {
		allProperties[k] = v
	}
	return &JUnitLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: allProperties,
	}
}

func (j *JUnitLogger) LogStart(title string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.tests = append(j.tests, jUnitTestStatus{title: title, startTime: time.Now()})
}

func (j *JUnitLogger) LogPass(title string) {
	j.finish(title, false)
}

func (j *JUnitLogger) LogFail(title string) {
	j.finish(title, true)
}

func (j *JUnitLogger) finish(title string, failed bool) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if status := j.current(); status != nil && status.title == title {
		status.failed = failed
		status.duration = time.Since(status.startTime)
	}
}

// LogError attaches the message to the most recently started test. Errors from a cleanup
// function arrive after that test's pass/fail event, so they still belong to it.
func (j *JUnitLogger) LogError(message string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if status := j.current(); status != nil {
		status.errors = append(status.errors, message)
	} else {
		j.orphans = append(j.orphans, message)
	}
}

func (j *JUnitLogger) current() *jUnitTestStatus {
	if len(j.tests) == 0 {
		return nil
	}
	return &j.tests[len(j.tests)-1]
}

// EndLog writes the report file.
func (j *JUnitLogger) EndLog(results tuneup.Results) error {
	fmt.Printf("Writing JUnit data to %s\n", j.filePath)

	data, err := j.render()
	if err != nil {
		return err
	}
	return os.WriteFile(j.filePath, data, 0644) //nolint:gosec
}

func (j *JUnitLogger) render() ([]byte, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	names := maps.Keys(j.properties)
	slices.Sort(names)
	properties := make([]jUnitXMLProperty, 0, len(names))
	for _, name := range names {
		properties = append(properties, jUnitXMLProperty{Name: name, Value: j.properties[name]})
	}

	suite := jUnitXMLTestSuite{
		Name:       j.suiteName,
		Properties: properties,
		SystemErr:  strings.Join(j.orphans, "\n"),
	}
	totalDuration := time.Duration(0)
	for _, status := range j.tests {
		suite.Tests++
		totalDuration += status.duration
		testCase := jUnitXMLTestCase{
			Classname: j.suiteName,
			Name:      status.title,
			Time:      jUnitDurationString(status.duration),
		}
		switch {
		case status.failed:
			suite.Failures++
			message := "failed"
			if len(status.errors) != 0 {
				message = status.errors[0]
			}
			testCase.Failure = &jUnitXMLFailure{
				Message:  message,
				Type:     "failure",
				Contents: strings.Join(status.errors, "\n"),
			}
		case len(status.errors) != 0:
			// a passing test can still have logged errors from its cleanup function
			testCase.SystemErr = strings.Join(status.errors, "\n")
		}
		suite.TestCases = append(suite.TestCases, testCase)
	}
	suite.Time = jUnitDurationString(totalDuration)

	doc := jUnitXMLDocument{Suites: []jUnitXMLTestSuite{suite}}
	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(bytes, '\n'), nil
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
