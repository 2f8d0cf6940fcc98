// Package mockuia contains an in-process implementation of the automation service
// protocol, for testing the harness client and the smoke suite without a device.
package mockuia

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/helpers"
)

const commandBufferSize = 100

// Command is a command received by a session of the mock service.
type Command struct {
	SessionID string
	Name      string
	Params    ldvalue.Value
}

// App describes the application that the mock service reports as front-most.
type App struct {
	Name     string `json:"name"`
	BundleID string `json:"bundleId"`
}

// AutomationService is a mock automation service. Use it as an http.Handler, typically with
// httptest.NewServer.
type AutomationService struct {
	name         string
	capabilities framework.Capabilities
	app          App
	tree         string
	treeJSON     ldvalue.Value
	failing      map[string]bool
	sessions     map[string]string
	lastID       int
	commands     chan Command
	stopped      chan struct{}
	stopOnce     sync.Once
	handler      http.Handler
	logger       framework.Logger
	lock         sync.Mutex
}

// ServiceOption is an optional parameter for NewAutomationService.
type ServiceOption helpers.ConfigOption[AutomationService]

type serviceOptionFunc func(*AutomationService) error

func (f serviceOptionFunc) Configure(s *AutomationService) error { return f(s) }

// WithName sets the name reported by the status resource.
func WithName(name string) ServiceOption {
	return serviceOptionFunc(func(s *AutomationService) error {
		s.name = name
		return nil
	})
}

// WithCapabilities sets the capabilities reported by the status resource. Commands that
// need a capability the service does not report are rejected.
func WithCapabilities(capabilities ...string) ServiceOption {
	return serviceOptionFunc(func(s *AutomationService) error {
		s.capabilities = capabilities
		return nil
	})
}

// WithApp sets the front-most application.
func WithApp(app App) ServiceOption {
	return serviceOptionFunc(func(s *AutomationService) error {
		s.app = app
		return nil
	})
}

// WithElementTree sets the text and JSON forms of the element tree.
func WithElementTree(text string, jsonTree ldvalue.Value) ServiceOption {
	return serviceOptionFunc(func(s *AutomationService) error {
		s.tree = text
		s.treeJSON = jsonTree
		return nil
	})
}

// WithFailingCommands makes the named commands return HTTP 500.
func WithFailingCommands(names ...string) ServiceOption {
	return serviceOptionFunc(func(s *AutomationService) error {
		for _, n := range names {
			s.failing[n] = true
		}
		return nil
	})
}

func NewAutomationService(logger framework.Logger, options ...ServiceOption) *AutomationService {
	if logger == nil {
		logger = framework.NullLogger()
	}
	s := &AutomationService{
		name:     "mock",
		app:      App{Name: "MockApp", BundleID: "com.example.mockapp"},
		tree:     "UIAApplication \"MockApp\"\n  UIAWindow",
		treeJSON: ldvalue.ObjectBuild().Set("type", ldvalue.String("UIAApplication")).Build(),
		failing:  make(map[string]bool),
		sessions: make(map[string]string),
		commands: make(chan Command, commandBufferSize),
		stopped:  make(chan struct{}),
		logger:   logger,
	}
	_ = helpers.ApplyOptions(s, options...)
	s.logger = framework.LoggerWithPrefix(logger, "[mockuia "+s.name+"] ")

	router := mux.NewRouter()
	router.HandleFunc("/", s.serveStatus).Methods("GET")
	router.HandleFunc("/", s.serveNewSession).Methods("POST")
	router.HandleFunc("/", s.serveStop).Methods("DELETE")
	router.HandleFunc("/sessions/{id}", s.serveCommand).Methods("POST")
	router.HandleFunc("/sessions/{id}", s.serveCloseSession).Methods("DELETE")
	s.handler = router
	return s
}

func (s *AutomationService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Commands receives every command as it arrives. If nobody reads it, commands beyond the
// buffer size are dropped.
func (s *AutomationService) Commands() <-chan Command {
	return s.commands
}

// Stopped is closed when a client asks the service to stop.
func (s *AutomationService) Stopped() <-chan struct{} {
	return s.stopped
}

// OpenSessions returns the tags of the sessions that have not been closed, by session ID.
func (s *AutomationService) OpenSessions() map[string]string {
	s.lock.Lock()
	defer s.lock.Unlock()
	ret := make(map[string]string, len(s.sessions))
	for k, v := range s.sessions {
		ret[k] = v
	}
	return ret
}

func (s *AutomationService) serveStatus(w http.ResponseWriter, r *http.Request) {
	caps := s.capabilities
	if caps == nil {
		caps = framework.Capabilities{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"name": s.name, "capabilities": caps})
}

func (s *AutomationService) serveNewSession(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Tag string `json:"tag"`
	}
	if err := readJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.lock.Lock()
	s.lastID++
	id := strconv.Itoa(s.lastID)
	s.sessions[id] = params.Tag
	s.lock.Unlock()

	s.logger.Printf("created session %s (%s)", id, params.Tag)
	w.Header().Set("Location", "/sessions/"+id)
	w.WriteHeader(http.StatusCreated)
}

func (s *AutomationService) serveStop(w http.ResponseWriter, r *http.Request) {
	s.logger.Printf("got DELETE - stopping")
	s.stopOnce.Do(func() { close(s.stopped) })
	w.WriteHeader(http.StatusNoContent)
}

func (s *AutomationService) serveCloseSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.closeSession(id) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.logger.Printf("closed session %s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *AutomationService) closeSession(id string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *AutomationService) serveCommand(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.lock.Lock()
	_, ok := s.sessions[id]
	s.lock.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var params ldvalue.Value
	if err := readJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := params.GetByKey("command").StringValue()
	s.logger.Printf("session %s got command %s", id, params.JSONString())
	helpers.NonBlockingSend(s.commands, Command{SessionID: id, Name: name, Params: params})

	if s.failing[name] {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("command %q failed", name))
		return
	}
	resp, err := s.respond(name, params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *AutomationService) respond(name string, params ldvalue.Value) (interface{}, error) {
	switch name {
	case "frontMostApp":
		return s.app, nil
	case "logElementTree":
		return map[string]string{"tree": s.tree}, nil
	case "logElementTreeJSON":
		if !s.capabilities.Has("element-tree-json") {
			return nil, errors.New("element-tree-json is not supported")
		}
		return map[string]ldvalue.Value{"tree": s.treeJSON}, nil
	case "captureScreen":
		if !s.capabilities.Has("screen-capture") {
			return nil, errors.New("screen-capture is not supported")
		}
		screenName := params.GetByKey("name").StringValue()
		if screenName == "" {
			return nil, errors.New("captureScreen requires a name")
		}
		return map[string]string{"path": "/captures/" + screenName + ".png"}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}

func readJSON(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	data, _ := json.Marshal(value)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
