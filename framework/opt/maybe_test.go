package opt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flags struct {
	Tree Maybe[bool] `json:"tree"`
}

func TestNone(t *testing.T) {
	assert.False(t, None[bool]().IsDefined())
	assert.False(t, None[bool]().Value())
	assert.Equal(t, "", None[string]().Value())
	assert.Equal(t, "[none]", None[int]().String())
}

func TestSome(t *testing.T) {
	assert.True(t, Some(false).IsDefined())
	assert.False(t, Some(false).Value())
	assert.Equal(t, "x", Some("x").Value())
	assert.Equal(t, "true", Some(true).String())
}

func TestOrElse(t *testing.T) {
	assert.True(t, None[bool]().OrElse(true))
	assert.False(t, Some(false).OrElse(true))
}

func TestOr(t *testing.T) {
	assert.Equal(t, Some(1), Some(1).Or(Some(2)))
	assert.Equal(t, Some(2), None[int]().Or(Some(2)))
	assert.Equal(t, None[int](), None[int]().Or(None[int]()))
}

func TestFromPtr(t *testing.T) {
	assert.Equal(t, None[bool](), FromPtr((*bool)(nil)))

	b := true
	assert.Equal(t, Some(true), FromPtr(&b))
}

func TestMarshalUnmarshal(t *testing.T) {
	testMarshalUnmarshal(t, None[bool](), "null")
	testMarshalUnmarshal(t, Some(false), "false")
	testMarshalUnmarshal(t, Some("x"), `"x"`)

	var m Maybe[bool]
	assert.Error(t, m.UnmarshalJSON([]byte(`malformed json`)))
	assert.Error(t, m.UnmarshalJSON([]byte(`"not a bool"`)))
}

func TestAbsentPropertyStaysUndefined(t *testing.T) {
	var f flags
	require.NoError(t, json.Unmarshal([]byte(`{}`), &f))
	assert.False(t, f.Tree.IsDefined())

	require.NoError(t, json.Unmarshal([]byte(`{"tree": false}`), &f))
	assert.Equal(t, Some(false), f.Tree)
}

func testMarshalUnmarshal[V any](t *testing.T, expected Maybe[V], expectedJSON string) {
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	assert.JSONEq(t, expectedJSON, string(data))

	var actual Maybe[V]
	require.NoError(t, json.Unmarshal([]byte(expectedJSON), &actual))
	assert.Equal(t, expected, actual)
}
