package main

import (
	"bufio"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/config"
	"github.com/tuneup-harness/tuneup/framework/harness"
	"github.com/tuneup-harness/tuneup/framework/tuneup"
	"github.com/tuneup-harness/tuneup/framework/uia"
	"github.com/tuneup-harness/tuneup/framework/uialog"
	"github.com/tuneup-harness/tuneup/uitests"
)

const defaultStatusTimeout = time.Second * 10

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("tuneup v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*tuneup.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}
	var defaults tuneup.OptionOverrides
	if params.configFile != "" {
		var err error
		if defaults, err = applyConfigFile(&params); err != nil {
			return nil, err
		}
	}

	mainDebugLogger := framework.NullLogger()
	if params.debug {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	service, err := harness.NewAutomationService(
		params.serviceURL,
		params.statusTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}
	info := service.ServiceInfo()

	testLogger, closeLoggers, err := makeTestLogger(params, info, mainDebugLogger)
	if err != nil {
		return nil, err
	}
	defer closeLoggers()

	target, err := service.NewTargetSession("tuneup", uialog.ErrorOutput(testLogger))
	if err != nil {
		return nil, err
	}

	fmt.Println()
	tuneup.PrintFilterDescription(os.Stdout, params.filters)

	session := tuneup.NewSession(tuneup.SessionConfig{
		Target:      func() uia.Target { return target },
		Logger:      testLogger,
		Filters:     params.filters,
		Defaults:    defaults,
		DebugLogger: mainDebugLogger,
	})
	results := uitests.RunSmokeSuite(session, info.Capabilities)
	closeTargetSession(target, mainDebugLogger)

	fmt.Println()
	logErr := testLogger.EndLog(results)
	uialog.PrintResults(results)

	if params.stopServiceAtEnd {
		fmt.Println("Stopping automation service")
		if err := service.StopService(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop automation service: %s\n", err)
		}
	}

	if logErr != nil {
		return nil, fmt.Errorf("error writing log: %w", logErr)
	}

	if params.recordFailures != "" {
		if err := recordFailures(params.recordFailures, results); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

func makeTestLogger(
	params commandParams,
	info harness.ServiceInfo,
	debugLogger framework.Logger,
) (*uialog.MultiLogger, func(), error) {
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	testLogger := &uialog.MultiLogger{Loggers: []uia.Logger{uialog.ConsoleLogger{ShowPassed: true}}}

	if params.jUnitFile != "" {
		testLogger.Loggers = append(testLogger.Loggers, uialog.NewJUnitLogger(
			params.jUnitFile,
			"tuneup",
			params.filters,
			map[string]string{"service.name": info.Name, "service.capabilities": strings.Join(info.Capabilities, ",")},
		))
	}

	if params.jsonLogFile != "" {
		f, err := os.Create(params.jsonLogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create JSON log file: %w", err)
		}
		closers = append(closers, func() { _ = f.Close() })
		testLogger.Loggers = append(testLogger.Loggers, uialog.NewJSONLinesLogger(f))
	}

	if params.streamPort != 0 {
		stream := uialog.NewStreamLogger(debugLogger)
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", params.streamPort),
			Handler:           stream,
			ReadHeaderTimeout: 10 * time.Second, // arbitrary but non-infinite timeout to avoid Slowloris Attack
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				debugLogger.Printf("Event stream listener failed: %s", err)
			}
		}()
		fmt.Printf("Serving test events at http://localhost:%d\n", params.streamPort)
		closers = append(closers, func() {
			stream.Close()
			_ = server.Close()
		})
		testLogger.Loggers = append(testLogger.Loggers, stream)
	}

	return testLogger, closeAll, nil
}

func closeTargetSession(target io.Closer, debugLogger framework.Logger) {
	if err := target.Close(); err != nil {
		debugLogger.Printf("Failed to close target session: %s", err)
	}
}

func applyConfigFile(params *commandParams) (tuneup.OptionOverrides, error) {
	fc, err := config.Load(params.configFile)
	if err != nil {
		return tuneup.OptionOverrides{}, err
	}
	filters, err := fc.Filters()
	if err != nil {
		return tuneup.OptionOverrides{}, fmt.Errorf("invalid filter in config file: %w", err)
	}
	params.filters.OnlyRun = append(params.filters.OnlyRun, filters.OnlyRun...)
	params.filters.Skip = append(params.filters.Skip, filters.Skip...)
	return fc.Defaults, nil
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := params.filters.Skip.Set(regexp.QuoteMeta(line)); err != nil {
			return fmt.Errorf("cannot parse suppression: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}

func recordFailures(path string, results tuneup.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create suppression file: %w", err)
	}
	for _, title := range results.FailedTitles() {
		fmt.Fprintln(f, title)
	}
	return f.Close()
}
