package tuneup

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// TitlePattern is a regular expression that must match an entire test title.
type TitlePattern struct {
	source string
	rx     *regexp.Regexp
}

// ParseTitlePattern compiles s as a regular expression anchored at both ends, so that
// "Sign-.*" matches "Sign-In" but not "Re-Sign-In".
func ParseTitlePattern(s string) (TitlePattern, error) {
	rx, err := regexp.Compile("^(?:" + s + ")$")
	if err != nil {
		return TitlePattern{}, fmt.Errorf("invalid title pattern %q: %w", s, err)
	}
	return TitlePattern{source: s, rx: rx}, nil
}

func (p TitlePattern) Match(title string) bool {
	return p.rx != nil && p.rx.MatchString(title)
}

func (p TitlePattern) String() string {
	return p.source
}

// TitlePatternList is an ordered list of title patterns. It implements flag.Value so that
// a command-line flag can be repeated to add patterns.
type TitlePatternList []TitlePattern

// ParseTitlePatternList compiles every pattern in order, stopping at the first invalid one.
func ParseTitlePatternList(patterns []string) (TitlePatternList, error) {
	var l TitlePatternList
	for _, s := range patterns {
		if err := l.Set(s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l TitlePatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (l *TitlePatternList) Set(value string) error {
	p, err := ParseTitlePattern(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

func (l TitlePatternList) IsDefined() bool {
	return len(l) != 0
}

// AnyMatch returns true if at least one pattern matches the whole title.
func (l TitlePatternList) AnyMatch(title string) bool {
	for _, p := range l {
		if p.Match(title) {
			return true
		}
	}
	return false
}

// TitleFilters decides which tests actually run.
//
// If OnlyRun is non-empty, a title must fully match one of its patterns. A title that
// fully matches any pattern in Skip never runs. With both lists empty, everything runs.
type TitleFilters struct {
	OnlyRun TitlePatternList
	Skip    TitlePatternList
}

func (f TitleFilters) Match(title string) bool {
	return (!f.OnlyRun.IsDefined() || f.OnlyRun.AnyMatch(title)) &&
		!f.Skip.AnyMatch(title)
}

func (f TitleFilters) IsDefined() bool {
	return f.OnlyRun.IsDefined() || f.Skip.IsDefined()
}

// PrintFilterDescription writes a human-readable summary of the filters, if any.
func PrintFilterDescription(w io.Writer, filters TitleFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.OnlyRun.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", filters.OnlyRun)
	}
	if filters.Skip.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", filters.Skip)
	}
	fmt.Fprintln(w)
}
