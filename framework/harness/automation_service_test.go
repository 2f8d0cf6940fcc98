package harness

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/helpers"
	"github.com/tuneup-harness/tuneup/mockuia"
)

func TestQueryServiceInfo(t *testing.T) {
	mock := mockuia.NewAutomationService(nil,
		mockuia.WithName("simulator"), mockuia.WithCapabilities(CapabilityScreenCapture))
	httphelpers.WithServer(mock, func(server *httptest.Server) {
		var startup bytes.Buffer
		service, err := NewAutomationService(server.URL, time.Second, nil, &startup)
		require.NoError(t, err)

		info := service.ServiceInfo()
		assert.Equal(t, "simulator", info.Name)
		assert.Equal(t, framework.Capabilities{CapabilityScreenCapture}, info.Capabilities)
		assert.JSONEq(t, `{"name":"simulator","capabilities":["screen-capture"]}`, string(info.FullData))
		assert.True(t, strings.HasPrefix(startup.String(), "Connecting to automation service at "+server.URL))
	})
}

func TestQueryServiceInfoErrorStatus(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(503), func(server *httptest.Server) {
		_, err := NewAutomationService(server.URL, time.Second, nil, nil)
		assert.EqualError(t, err, "automation service returned status code 503")
	})
}

func TestQueryServiceInfoMalformed(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(200, nil, []byte("not json"))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		_, err := NewAutomationService(server.URL, time.Second, nil, nil)
		assert.EqualError(t, err, "malformed status response from automation service: not json")
	})
}

func TestQueryServiceInfoTimesOut(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	_, err := NewAutomationService(url, time.Millisecond*200, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out, result of last query was")
}

func TestStopService(t *testing.T) {
	mock := mockuia.NewAutomationService(nil)
	httphelpers.WithServer(mock, func(server *httptest.Server) {
		service, err := NewAutomationService(server.URL, time.Second, nil, nil)
		require.NoError(t, err)
		require.NoError(t, service.StopService())
		helpers.RequireValue(t, mock.Stopped(), time.Second)
	})
}

func TestStopServiceErrorStatus(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(400))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		service := &AutomationService{baseURL: server.URL, logger: framework.NullLogger()}
		assert.EqualError(t, service.StopService(), "service returned HTTP 400")
		r := <-requests
		assert.Equal(t, http.MethodDelete, r.Request.Method)
	})
}

func TestNewTargetSessionRequiresLocation(t *testing.T) {
	handler := httphelpers.HandlerWithStatus(201)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		service := &AutomationService{baseURL: server.URL, logger: framework.NullLogger()}
		_, err := service.NewTargetSession("x", nil)
		assert.EqualError(t, err, "automation service did not return a Location header with a resource URL")
	})
}

func TestResolveURL(t *testing.T) {
	u, err := resolveURL("http://localhost:8000", "/sessions/1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/sessions/1", u)

	u, err = resolveURL("http://localhost:8000/", "http://otherhost/s/2")
	require.NoError(t, err)
	assert.Equal(t, "http://otherhost/s/2", u)
}
