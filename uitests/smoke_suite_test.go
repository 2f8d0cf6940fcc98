package uitests

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/harness"
	"github.com/tuneup-harness/tuneup/framework/tuneup"
	"github.com/tuneup-harness/tuneup/framework/uia"
	"github.com/tuneup-harness/tuneup/framework/uia/uiatest"
	"github.com/tuneup-harness/tuneup/mockuia"
)

func TestSmokeSuiteWithLocalTarget(t *testing.T) {
	journal, logger, target := uiatest.New()
	session := tuneup.NewSession(tuneup.SessionConfig{Target: target.Provider(), Logger: logger})

	results := RunSmokeSuite(session, nil)
	assert.True(t, results.OK())
	assert.Equal(t, []uiatest.Event{
		{Kind: uiatest.Start, Arg: "Setup"},
		{Kind: uiatest.Pass, Arg: "Setup"},
		{Kind: uiatest.Start, Arg: TitleFrontMostApp},
		{Kind: uiatest.Pass, Arg: TitleFrontMostApp},
		{Kind: uiatest.Start, Arg: TitleElementTree},
		{Kind: uiatest.Pass, Arg: TitleElementTree},
		{Kind: uiatest.Start, Arg: "Teardown"},
		{Kind: uiatest.Pass, Arg: "Teardown"},
	}, journal.LogEvents())
}

func runRemote(t *testing.T, mock *mockuia.AutomationService) (tuneup.Results, *uiatest.Journal, framework.CapturedOutput) {
	var results tuneup.Results
	journal := &uiatest.Journal{}
	output := &framework.CapturingLogger{}
	httphelpers.WithServer(mock, func(server *httptest.Server) {
		service, err := harness.NewAutomationService(server.URL, time.Second, nil, nil)
		require.NoError(t, err)
		target, err := service.NewTargetSession("smoke", output)
		require.NoError(t, err)
		defer target.Close() //nolint:errcheck

		session := tuneup.NewSession(tuneup.SessionConfig{
			Target: func() uia.Target { return target },
			Logger: uiatest.Logger{Journal: journal},
		})
		results = RunSmokeSuite(session, service.ServiceInfo().Capabilities)
	})
	return results, journal, output.Output()
}

func TestSmokeSuiteWithRemoteTarget(t *testing.T) {
	mock := mockuia.NewAutomationService(nil,
		mockuia.WithCapabilities(harness.CapabilityElementTreeJSON, harness.CapabilityScreenCapture))

	results, journal, output := runRemote(t, mock)
	assert.True(t, results.OK())
	assert.Len(t, results.Tests, 6)
	assert.Len(t, journal.Filter(uiatest.Error), 0)
	assert.Contains(t, output.Messages(), `Saved screen capture "smoke" to /captures/smoke.png`)
}

func TestSmokeSuiteSkipsTestsForMissingCapabilities(t *testing.T) {
	results, _, _ := runRemote(t, mockuia.NewAutomationService(nil))
	assert.True(t, results.OK())

	var titles []string
	for _, r := range results.Tests {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Setup", TitleFrontMostApp, TitleElementTree, "Teardown"}, titles)
}

func TestSmokeSuiteReportsUnresolvableApplication(t *testing.T) {
	mock := mockuia.NewAutomationService(nil, mockuia.WithFailingCommands(harness.CommandFrontMostApp))

	results, journal, _ := runRemote(t, mock)
	assert.Equal(t, []string{"Setup", TitleFrontMostApp, "Teardown"}, results.FailedTitles())
	assert.Contains(t, journal.Filter(uiatest.Fail), uiatest.Event{Kind: uiatest.Fail, Arg: TitleFrontMostApp})
	assert.Contains(t, journal.Filter(uiatest.Pass), uiatest.Event{Kind: uiatest.Pass, Arg: TitleElementTree})
}
