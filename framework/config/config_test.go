package config

import (
	"os"
	"path/filepath"
	"testing"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneup-harness/tuneup/framework/opt"
	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	for _, params := range []struct {
		desc  string
		input string
	}{
		{"JSON", `{"onlyRun":["Sign-.*"],"skip":["Sign-Out"],"defaults":{"logStackTrace":true,"screenCapture":false}}`},
		{"YAML", `---
onlyRun:
  - "Sign-.*"
skip:
  - Sign-Out
defaults:
  logStackTrace: true
  screenCapture: false
`},
	} {
		t.Run(params.desc, func(t *testing.T) {
			fc, err := Load(writeFile(t, "config", params.input))
			require.NoError(t, err)
			assert.Equal(t, []string{"Sign-.*"}, fc.OnlyRun)
			assert.Equal(t, []string{"Sign-Out"}, fc.Skip)
			assert.Equal(t, tuneup.OptionOverrides{
				LogStackTrace: opt.Some(true),
				ScreenCapture: opt.Some(false),
			}, fc.Defaults)

			filters, err := fc.Filters()
			require.NoError(t, err)
			assert.True(t, filters.Match("Sign-In"))
			assert.False(t, filters.Match("Sign-Out"))
			assert.False(t, filters.Match("Other"))
		})
	}
}

func TestLoadEmptyObject(t *testing.T) {
	fc, err := Load(writeFile(t, "config.json", `{}`))
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, fc)

	filters, err := fc.Filters()
	require.NoError(t, err)
	assert.False(t, filters.IsDefined())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read config file")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, "config.yml", "onlyRun: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse config file "+path)
}

func TestFiltersRejectsInvalidPattern(t *testing.T) {
	_, err := FileConfig{Skip: []string{"("}}.Filters()
	assert.Error(t, err)
}

func TestParseJSONOrYAMLWithAnchors(t *testing.T) {
	input := `---
shared: &shared
  logTree: false
  logTreeJSON: true

values:
  debug:
    <<: *shared
    logStackTrace: true
`
	var out struct {
		Values map[string]interface{} `json:"values"`
	}
	require.NoError(t, ParseJSONOrYAML([]byte(input), &out))
	m.In(t).Assert(out.Values, m.JSONStrEqual(`{"debug":{"logTree":false,"logTreeJSON":true,"logStackTrace":true}}`))
}

func TestParseJSONOrYAMLRejectsNonStringKeys(t *testing.T) {
	var out interface{}
	err := ParseJSONOrYAML([]byte("1: value\n"), &out)
	assert.Error(t, err)
}
