package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/tuneup-harness/tuneup/framework"
)

const (
	// CapabilityElementTreeJSON means the service can dump the element tree of a window as
	// JSON ("logElementTreeJSON").
	CapabilityElementTreeJSON = "element-tree-json"

	// CapabilityScreenCapture means the service can save a screenshot ("captureScreen").
	CapabilityScreenCapture = "screen-capture"
)

// ServiceInfo is status information returned by the automation service from the initial
// status query.
type ServiceInfo struct {
	ServiceInfoBase

	// FullData is the entire response received from the service, which might contain
	// additional properties beyond ServiceInfoBase.
	FullData []byte
}

// ServiceInfoBase is the basic set of properties that all automation services must provide.
type ServiceInfoBase struct {
	// Name identifies the automation backend, such as "simulator" or "device-farm".
	Name string `json:"name"`

	// Capabilities is a list of strings representing optional features of the service.
	Capabilities framework.Capabilities `json:"capabilities"`
}

// AutomationService manages communication with a remote automation service, which drives
// the application under test on our behalf.
//
// It verifies that the service is alive on startup, and can then open any number of target
// sessions (NewTargetSession). It knows nothing about what the tests do.
type AutomationService struct {
	baseURL string
	info    ServiceInfo
	logger  framework.Logger
}

// NewAutomationService creates an AutomationService, and verifies that the service is
// responding by querying its status resource until statusTimeout elapses.
func NewAutomationService(
	baseURL string,
	statusTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*AutomationService, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}
	info, err := queryServiceInfo(baseURL, statusTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	return &AutomationService{baseURL: baseURL, info: info, logger: debugLogger}, nil
}

// ServiceInfo returns the initial status information received from the service.
func (a *AutomationService) ServiceInfo() ServiceInfo {
	return a.info
}

func queryServiceInfo(url string, timeout time.Duration, output io.Writer) (ServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to automation service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			respData, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return ServiceInfo{}, fmt.Errorf("automation service returned status code %d", resp.StatusCode)
			}
			if readErr != nil {
				return ServiceInfo{}, readErr
			}
			if len(respData) == 0 {
				fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
				return ServiceInfo{}, nil
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var base ServiceInfoBase
			if err := json.Unmarshal(respData, &base); err != nil {
				return ServiceInfo{}, fmt.Errorf("malformed status response from automation service: %s", string(respData))
			}
			return ServiceInfo{ServiceInfoBase: base, FullData: respData}, nil
		}
		if !time.Now().Before(deadline) {
			return ServiceInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

// StopService tells the automation service that it should exit.
func (a *AutomationService) StopService() error {
	req, _ := http.NewRequest(http.MethodDelete, a.baseURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err == nil && resp.StatusCode >= 300 {
		return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
	}
	// It's normal for the request to return an I/O error if the service immediately quit before sending a response
	return nil
}

// NewTargetSession asks the service to attach to the application under test. The tag is
// only informational; services typically use it in their own logs.
//
// Diagnostic output requested by the tests, such as element tree dumps, is written to
// output. Protocol details are written to the debug logger.
func (a *AutomationService) NewTargetSession(tag string, output framework.Logger) (*TargetSession, error) {
	if output == nil {
		output = framework.NullLogger()
	}
	params := ldvalue.ObjectBuild().Set("tag", ldvalue.String(tag)).Build()

	a.logger.Printf("Creating target session (%s)", tag)
	_, headers, err := doRequest(http.MethodPost, a.baseURL, []byte(params.JSONString()))
	if err != nil {
		return nil, err
	}
	location := headers.Get("Location")
	if location == "" {
		return nil, errors.New("automation service did not return a Location header with a resource URL")
	}
	resourceURL, err := resolveURL(a.baseURL, location)
	if err != nil {
		return nil, err
	}
	return &TargetSession{
		resourceURL:  resourceURL,
		capabilities: a.info.Capabilities,
		output:       output,
		logger:       a.logger,
	}, nil
}

func resolveURL(baseURL, location string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid Location header %q: %w", location, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func doRequest(method, url string, body []byte) ([]byte, http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	var respBody []byte
	if resp.Body != nil {
		respBody, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ""
		if body != nil {
			message = " (" + string(body) + ")"
		}
		err = fmt.Errorf("automation service returned error %d for %s %s%s", resp.StatusCode, method, url, message)
	}
	return respBody, resp.Header, err
}
