// Package uitests contains the smoke suite that the command-line runner executes against
// an automation service. It exercises every operation of the service protocol, so a
// failure here usually means the service or the device is misconfigured.
package uitests

import (
	"fmt"

	"github.com/tuneup-harness/tuneup/framework"
	"github.com/tuneup-harness/tuneup/framework/harness"
	"github.com/tuneup-harness/tuneup/framework/opt"
	"github.com/tuneup-harness/tuneup/framework/tuneup"
	"github.com/tuneup-harness/tuneup/framework/uia"
)

// Test titles.
const (
	TitleFrontMostApp    = "Front-most application"
	TitleElementTree     = "Element tree"
	TitleElementTreeJSON = "Element tree JSON"
	TitleScreenCapture   = "Screen capture"
)

// RunSmokeSuite resolves the application in Setup, registers the smoke tests and runs them.
// Tests that need a capability the service lacks are not registered at all.
func RunSmokeSuite(session *tuneup.Session, capabilities framework.Capabilities) tuneup.Results {
	session.Setup(requireApplication)

	session.Test(TitleFrontMostApp, func(target uia.Target, app uia.Application) error {
		info, err := applicationInfo(app)
		if err != nil {
			return err
		}
		if info.Name == "" {
			return tuneup.Failf("front-most application has no name")
		}
		return nil
	})

	session.Test(TitleElementTree, func(target uia.Target, app uia.Application) error {
		target.LogElementTree()
		return nil
	}, tuneup.WithOverrides(tuneup.OptionOverrides{LogTree: opt.Some(false)}))

	if capabilities.Has(harness.CapabilityElementTreeJSON) {
		session.Test(TitleElementTreeJSON, func(target uia.Target, app uia.Application) error {
			app.MainWindow().LogElementTreeJSON()
			return nil
		}, tuneup.WithOverrides(tuneup.OptionOverrides{LogTreeJSON: opt.Some(true)}))
	}

	if capabilities.Has(harness.CapabilityScreenCapture) {
		session.Test(TitleScreenCapture, func(target uia.Target, app uia.Application) error {
			target.CaptureScreenWithName("smoke")
			return nil
		}, tuneup.WithCleanup(requireApplication))
	}

	session.TearDown(requireApplication)
	return session.Results()
}

func requireApplication(target uia.Target, app uia.Application) error {
	_, err := applicationInfo(app)
	return err
}

// applicationInfo returns the application's details if it came from a remote service. Other
// implementations of uia.Application are accepted as they are.
func applicationInfo(app uia.Application) (harness.Application, error) {
	remote, ok := app.(*harness.Application)
	if !ok {
		return harness.Application{Name: fmt.Sprintf("%T", app)}, nil
	}
	if err := remote.Err(); err != nil {
		return harness.Application{}, tuneup.Failf("could not resolve the front-most application: %s", err)
	}
	return *remote, nil
}
