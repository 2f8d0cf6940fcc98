package uialog

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

const streamChannel = "events"

// StreamLogger publishes every event as a Server-Sent Event so that a dashboard can follow
// a run while it happens. Viewers that connect late receive everything published so far.
//
// The SSE event name is the kind of event ("start", "pass", "fail", "error", "end") and
// the data is a JSON object.
type StreamLogger struct {
	server  *eventsource.Server
	history     []streamEvent
	lock        sync.Mutex
	publishLock sync.Mutex
}

type streamEvent struct {
	id   string
	name string
	data string
}

func (e streamEvent) Id() string    { return e.id } //nolint:revive,stylecheck // required by eventsource.Event
func (e streamEvent) Event() string { return e.name }
func (e streamEvent) Data() string  { return e.data }

func NewStreamLogger(debugLogger framework.Logger) *StreamLogger {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	server := eventsource.NewServer()
	server.ReplayAll = true
	server.Logger = debugLogger
	s := &StreamLogger{server: server}
	server.Register(streamChannel, s)
	return s
}

// ServeHTTP serves the event stream.
func (s *StreamLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler(streamChannel)(w, r)
}

// Replay is called by the eventsource server when a viewer connects. A viewer that
// reconnects with a Last-Event-ID only receives the events published after that one.
func (s *StreamLogger) Replay(channel, id string) chan eventsource.Event {
	s.lock.Lock()
	history := append([]streamEvent(nil), s.history[eventsAfter(id, len(s.history)):]...)
	s.lock.Unlock()

	out := make(chan eventsource.Event, len(history))
	for _, e := range history {
		out <- e
	}
	close(out)
	return out
}

// eventsAfter returns the index in the history of the first event after the one with the
// given ID. Event IDs are 1-based positions in the history; an unknown ID replays everything.
func eventsAfter(id string, historyLen int) int {
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 || n > historyLen {
		return 0
	}
	return n
}

func (s *StreamLogger) LogStart(title string) { s.publish("start", "title", ldvalue.String(title)) }

func (s *StreamLogger) LogPass(title string) { s.publish("pass", "title", ldvalue.String(title)) }

func (s *StreamLogger) LogFail(title string) { s.publish("fail", "title", ldvalue.String(title)) }

func (s *StreamLogger) LogError(message string) {
	s.publish("error", "message", ldvalue.String(message))
}

// EndLog publishes a final "end" event with the totals for the run.
func (s *StreamLogger) EndLog(results tuneup.Results) error {
	data := ldvalue.ObjectBuild().
		Set("tests", ldvalue.Int(len(results.Tests))).
		Set("failures", ldvalue.Int(len(results.Failures))).
		Build()
	s.publishValue("end", data)
	return nil
}

// Close disconnects all viewers.
func (s *StreamLogger) Close() {
	s.server.Close()
}

func (s *StreamLogger) publish(name, key string, value ldvalue.Value) {
	s.publishValue(name, ldvalue.ObjectBuild().Set(key, value).Build())
}

// publishValue hands the event to the server before adding it to the history, so a viewer
// that connects meanwhile never receives it twice.
func (s *StreamLogger) publishValue(name string, data ldvalue.Value) {
	s.publishLock.Lock()
	defer s.publishLock.Unlock()

	e := streamEvent{id: strconv.Itoa(s.replayableCount() + 1), name: name, data: data.JSONString()}
	s.server.Publish([]string{streamChannel}, e)

	s.lock.Lock()
	s.history = append(s.history, e)
	s.lock.Unlock()
}

func (s *StreamLogger) replayableCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.history)
}
