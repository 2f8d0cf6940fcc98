// Package config reads the optional session configuration file, which can be written in
// either JSON or YAML.
//
//	onlyRun:
//	  - "Sign-.*"
//	skip:
//	  - "Sign-Out"
//	defaults:
//	  logStackTrace: true
//	  screenCapture: false
package config

import (
	"fmt"
	"os"

	"github.com/tuneup-harness/tuneup/framework/tuneup"
)

// FileConfig is the content of a configuration file. Every property is optional.
type FileConfig struct {
	// OnlyRun and Skip are title patterns, with the same meaning as the -run and -skip
	// command-line flags.
	OnlyRun []string `json:"onlyRun"`
	Skip    []string `json:"skip"`

	// Defaults overrides the default diagnostic options for the session.
	Defaults tuneup.OptionOverrides `json:"defaults"`
}

// Load reads and parses the file at path.
func Load(path string) (FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return FileConfig{}, fmt.Errorf("could not read config file: %w", err)
	}
	var fc FileConfig
	if err := ParseJSONOrYAML(data, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return fc, nil
}

// Filters compiles the title patterns.
func (fc FileConfig) Filters() (tuneup.TitleFilters, error) {
	onlyRun, err := tuneup.ParseTitlePatternList(fc.OnlyRun)
	if err != nil {
		return tuneup.TitleFilters{}, err
	}
	skip, err := tuneup.ParseTitlePatternList(fc.Skip)
	if err != nil {
		return tuneup.TitleFilters{}, err
	}
	return tuneup.TitleFilters{OnlyRun: onlyRun, Skip: skip}, nil
}
