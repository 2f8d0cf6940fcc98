package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/uia"
)

// Commands understood by a target session.
const (
	CommandFrontMostApp       = "frontMostApp"
	CommandLogElementTree     = "logElementTree"
	CommandLogElementTreeJSON = "logElementTreeJSON"
	CommandCaptureScreen      = "captureScreen"
)

// TargetSession is a uia.Target backed by a session in the remote automation service.
//
// The uia.Target methods have no way to return an error, so command failures are written
// to the output logger instead; see also Application.Err.
type TargetSession struct {
	resourceURL  string
	capabilities framework.Capabilities
	output       framework.Logger
	logger       framework.Logger
}

// Application is the uia.Application returned by TargetSession.FrontMostApp.
type Application struct {
	Name     string `json:"name"`
	BundleID string `json:"bundleId"`

	session *TargetSession
	err     error
}

type window struct {
	session *TargetSession
}

type elementTreeResponse struct {
	Tree string `json:"tree"`
}

type elementTreeJSONResponse struct {
	Tree ldvalue.Value `json:"tree"`
}

type captureScreenResponse struct {
	Path string `json:"path"`
}

// ResourceURL is the URL of this session within the automation service.
func (t *TargetSession) ResourceURL() string {
	return t.resourceURL
}

// FrontMostApp queries the service for the application currently in the foreground. The
// result is never nil; if the query failed, its Err method returns the error.
func (t *TargetSession) FrontMostApp() uia.Application {
	app := &Application{session: t}
	if err := t.SendCommand(CommandFrontMostApp, ldvalue.Null(), app); err != nil {
		t.output.Printf("Could not get front-most application: %s", err)
		app.err = err
	}
	return app
}

// LogElementTree writes the service's text dump of the element hierarchy to the output
// logger.
func (t *TargetSession) LogElementTree() {
	var resp elementTreeResponse
	if err := t.SendCommand(CommandLogElementTree, ldvalue.Null(), &resp); err != nil {
		t.output.Printf("Could not get element tree: %s", err)
		return
	}
	t.output.Println(resp.Tree)
}

// CaptureScreenWithName asks the service to save a screenshot under the given name, and
// writes the path it was saved to to the output logger.
func (t *TargetSession) CaptureScreenWithName(name string) {
	if !t.capabilities.Has(CapabilityScreenCapture) {
		t.output.Printf("Screen capture %q not available: service lacks capability %q", name, CapabilityScreenCapture)
		return
	}
	params := ldvalue.ObjectBuild().Set("name", ldvalue.String(name)).Build()
	var resp captureScreenResponse
	if err := t.SendCommand(CommandCaptureScreen, params, &resp); err != nil {
		t.output.Printf("Could not capture screen %q: %s", name, err)
		return
	}
	t.output.Printf("Saved screen capture %q to %s", name, resp.Path)
}

func (t *TargetSession) logElementTreeJSON() {
	if !t.capabilities.Has(CapabilityElementTreeJSON) {
		t.output.Printf("JSON element tree not available: service lacks capability %q", CapabilityElementTreeJSON)
		return
	}
	var resp elementTreeJSONResponse
	if err := t.SendCommand(CommandLogElementTreeJSON, ldvalue.Null(), &resp); err != nil {
		t.output.Printf("Could not get JSON element tree: %s", err)
		return
	}
	t.output.Println(resp.Tree.JSONString())
}

// Close tells the service to dispose of this session.
func (t *TargetSession) Close() error {
	t.logger.Printf("Closing %s", t.resourceURL)
	_, _, err := doRequest(http.MethodDelete, t.resourceURL, nil)
	if err != nil {
		t.logger.Printf("DELETE request to automation service failed: %s", err)
	}
	return err
}

// SendCommand sends a command to the session. Any properties of params, which must be a
// JSON object or null, are sent along with the command name. If responseOut is non-nil,
// the response body is parsed into it.
func (t *TargetSession) SendCommand(command string, params ldvalue.Value, responseOut interface{}) error {
	builder := ldvalue.ObjectBuild().Set("command", ldvalue.String(command))
	for _, key := range params.Keys(nil) {
		builder.Set(key, params.GetByKey(key))
	}
	data := builder.Build().JSONString()

	t.logger.Printf("Sending command: %s", data)
	body, _, err := doRequest(http.MethodPost, t.resourceURL, []byte(data))
	if err != nil {
		return err
	}
	if responseOut != nil {
		if len(body) == 0 {
			return errors.New("expected a response body but got none")
		}
		if err := json.Unmarshal(body, responseOut); err != nil {
			return fmt.Errorf("malformed response to %q: %w", command, err)
		}
		t.logger.Printf("Response: %s", string(body))
	}
	return nil
}

// MainWindow returns a handle for the application's main window.
func (a *Application) MainWindow() uia.Window {
	return window{session: a.session}
}

// Err returns the error from querying the service for this application, if any.
func (a *Application) Err() error {
	return a.err
}

func (w window) LogElementTreeJSON() {
	w.session.logElementTreeJSON()
}
