package tuneup

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleFilterTestParams struct {
	onlyRun     []string
	skip        []string
	title       string
	shouldMatch bool
}

func TestTitleFilters(t *testing.T) {
	allParams := []titleFilterTestParams{
		// matches everything by default
		{nil, nil, "", true},
		{nil, nil, "Sign-In", true},

		// patterns must match the whole title
		{[]string{"Sign-.*"}, nil, "Sign-In", true},
		{[]string{"Sign-.*"}, nil, "Other", false},
		{[]string{"Sign"}, nil, "Sign-In", false},
		{[]string{"In"}, nil, "Sign-In", false},
		{[]string{"a|b"}, nil, "b", true},
		{[]string{"a|b"}, nil, "ab", false},

		// any pattern may match, including one that isn't the last
		{[]string{"Sign-In", "Other"}, nil, "Sign-In", true},
		{[]string{"Sign-In", "Other"}, nil, "Other", true},
		{[]string{"Sign-In", "Other"}, nil, "Third", false},

		// skip
		{nil, []string{"Sign-.*"}, "Sign-In", false},
		{nil, []string{"Sign-.*"}, "Other", true},
		{nil, []string{"Sign"}, "Sign-In", true},

		// skip overrides only-run
		{[]string{"Sign-.*"}, []string{"Sign-Out"}, "Sign-In", true},
		{[]string{"Sign-.*"}, []string{"Sign-Out"}, "Sign-Out", false},
	}
	for _, params := range allParams {
		var f TitleFilters
		for _, s := range params.onlyRun {
			require.NoError(t, f.OnlyRun.Set(s))
		}
		for _, s := range params.skip {
			require.NoError(t, f.Skip.Set(s))
		}
		t.Run(fmt.Sprintf("run=%s, skip=%s, title=%s", f.OnlyRun, f.Skip, params.title), func(t *testing.T) {
			assert.Equal(t, params.shouldMatch, f.Match(params.title))
		})
	}
}

func TestInvalidTitlePattern(t *testing.T) {
	var l TitlePatternList
	assert.Error(t, l.Set("("))
	assert.False(t, l.IsDefined())

	_, err := ParseTitlePatternList([]string{"ok", "[", "never reached"})
	assert.Error(t, err)
}

func TestZeroValuePatternMatchesNothing(t *testing.T) {
	assert.False(t, TitlePattern{}.Match(""))
}

func TestPrintFilterDescription(t *testing.T) {
	var buf bytes.Buffer
	PrintFilterDescription(&buf, TitleFilters{})
	assert.Equal(t, "", buf.String())

	onlyRun, err := ParseTitlePatternList([]string{"a", "b"})
	require.NoError(t, err)
	PrintFilterDescription(&buf, TitleFilters{OnlyRun: onlyRun})
	assert.Contains(t, buf.String(), `skip any not matching "a" or "b"`)
	assert.NotContains(t, buf.String(), "skip any matching")
}
