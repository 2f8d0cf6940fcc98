package uialog

import (
	"io"
	"sync"
	"time"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

// JSONLinesLogger writes each event as a single-line JSON object, for consumption by
// other tools. A test event looks like {"time":"...","event":"start","title":"Sign-In"};
// an error looks like {"time":"...","event":"error","message":"..."}.
type JSONLinesLogger struct {
	output io.Writer
	now    func() time.Time
	err    error
	lock   sync.Mutex
}

func NewJSONLinesLogger(output io.Writer) *JSONLinesLogger {
	return &JSONLinesLogger{output: output, now: time.Now}
}

func (j *JSONLinesLogger) LogStart(title string) { j.write("start", "title", title) }

func (j *JSONLinesLogger) LogPass(title string) { j.write("pass", "title", title) }

func (j *JSONLinesLogger) LogFail(title string) { j.write("fail", "title", title) }

func (j *JSONLinesLogger) LogError(message string) { j.write("error", "message", message) }

func (j *JSONLinesLogger) write(event, key, value string) {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("time").String(j.now().UTC().Format(time.RFC3339Nano))
	obj.Name("event").String(event)
	obj.Name(key).String(value)
	obj.End()
	j.writeLine(&w)
}

// EndLog writes a final summary line and returns the first write error, if any.
func (j *JSONLinesLogger) EndLog(results tuneup.Results) error {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("time").String(j.now().UTC().Format(time.RFC3339Nano))
	obj.Name("event").String("end")
	obj.Name("tests").Int(len(results.Tests))
	obj.Name("failures").Int(len(results.Failures))
	obj.Name("cleanupFailures").Int(len(results.CleanupFailures))
	obj.End()
	j.writeLine(&w)

	j.lock.Lock()
	defer j.lock.Unlock()
	return j.err
}

func (j *JSONLinesLogger) writeLine(w *jwriter.Writer) {
	data := append(w.Bytes(), '\n')
	j.lock.Lock()
	defer j.lock.Unlock()
	if j.err != nil {
		return
	}
	if err := w.Error(); err != nil {
		j.err = err
		return
	}
	if _, err := j.output.Write(data); err != nil {
		j.err = err
	}
}
