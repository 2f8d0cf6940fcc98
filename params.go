package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

type commandParams struct {
	serviceURL       string
	filters          tuneup.TitleFilters
	skipFile         string
	configFile       string
	jUnitFile        string
	jsonLogFile      string
	streamPort       int
	stopServiceAtEnd bool
	debug            bool
	recordFailures   string
	statusTimeout    time.Duration
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "", "automation service URL")
	fs.Var(&c.filters.OnlyRun, "run", "regex pattern(s) for the titles of tests to run")
	fs.Var(&c.filters.Skip, "skip", "regex pattern(s) for the titles of tests not to run")
	fs.StringVar(&c.skipFile, "skip-file", "", "path to a file of test titles not to run, one per line")
	fs.StringVar(&c.configFile, "config", "", "path to a JSON or YAML session configuration file")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.jsonLogFile, "json-log", "", "write test events as JSON lines to the specified path")
	fs.IntVar(&c.streamPort, "stream-port", 0, "serve test events as Server-Sent Events on this port")
	fs.BoolVar(&c.stopServiceAtEnd, "stop-service-at-end", false, "tell automation service to exit after the test run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging of the automation protocol")
	fs.StringVar(&c.recordFailures, "record-failures", "", "record failed test titles to the given file")
	fs.DurationVar(&c.statusTimeout, "status-timeout", defaultStatusTimeout, "how long to wait for the automation service")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.serviceURL == "" {
		fmt.Fprintln(os.Stderr, "-url is required")
		fs.Usage()
		return false
	}
	return true
}
