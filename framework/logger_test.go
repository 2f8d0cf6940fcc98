package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapturingLogger(t *testing.T) {
	var l CapturingLogger
	l.Printf("a %s", "b")
	l.Println("c", "d")

	out := l.Output()
	assert.Equal(t, []string{"a b", "c d"}, out.Messages())
	assert.False(t, out[0].Time.IsZero())
}

func TestLoggerWithPrefix(t *testing.T) {
	var l CapturingLogger
	p := LoggerWithPrefix(&l, "[x] ")
	p.Printf("hello %d", 1)
	assert.Equal(t, []string{"[x] hello 1"}, l.Output().Messages())
}

func TestCapabilities(t *testing.T) {
	cs := Capabilities{"a", "b"}
	assert.True(t, cs.Has("a"))
	assert.False(t, cs.Has("c"))
}
