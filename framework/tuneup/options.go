package tuneup

import "github.com/tuneup-harness/tuneup/framework/opt"

// Options controls which diagnostics are collected when a test fails.
type Options struct {
	// LogStackTrace logs the failure's stack trace as a second error entry.
	LogStackTrace bool `json:"logStackTrace"`

	// LogTree asks the target to dump its element tree.
	LogTree bool `json:"logTree"`

	// LogTreeJSON asks the application's main window to dump its element tree as JSON.
	LogTreeJSON bool `json:"logTreeJSON"`

	// ScreenCapture asks the target for a screenshot named "<title>-fail".
	ScreenCapture bool `json:"screenCapture"`
}

// DefaultOptions returns the options used for any test that does not specify its own:
// element tree and screen capture on, stack trace and JSON tree off.
//
// Each call returns a new value, so callers can change the fields they care about while
// still picking up the defaults for any options added later.
func DefaultOptions() Options {
	return Options{
		LogStackTrace: false,
		LogTree:       true,
		LogTreeJSON:   false,
		ScreenCapture: true,
	}
}

// OptionOverrides is a partial Options value. Only the fields that are defined replace the
// corresponding fields of a base Options.
type OptionOverrides struct {
	LogStackTrace opt.Maybe[bool] `json:"logStackTrace"`
	LogTree       opt.Maybe[bool] `json:"logTree"`
	LogTreeJSON   opt.Maybe[bool] `json:"logTreeJSON"`
	ScreenCapture opt.Maybe[bool] `json:"screenCapture"`
}

// Apply returns base with every defined field of o replacing the corresponding field.
func (o OptionOverrides) Apply(base Options) Options {
	return Options{
		LogStackTrace: o.LogStackTrace.OrElse(base.LogStackTrace),
		LogTree:       o.LogTree.OrElse(base.LogTree),
		LogTreeJSON:   o.LogTreeJSON.OrElse(base.LogTreeJSON),
		ScreenCapture: o.ScreenCapture.OrElse(base.ScreenCapture),
	}
}

// Merge returns overrides in which fields defined in o take precedence over those in other.
func (o OptionOverrides) Merge(other OptionOverrides) OptionOverrides {
	return OptionOverrides{
		LogStackTrace: o.LogStackTrace.Or(other.LogStackTrace),
		LogTree:       o.LogTree.Or(other.LogTree),
		LogTreeJSON:   o.LogTreeJSON.Or(other.LogTreeJSON),
		ScreenCapture: o.ScreenCapture.Or(other.ScreenCapture),
	}
}

// IsEmpty returns true if no field is defined.
func (o OptionOverrides) IsEmpty() bool {
	return o == OptionOverrides{}
}
