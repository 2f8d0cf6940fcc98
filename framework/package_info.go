// Package framework contains the low-level infrastructure of the tuneup harness. The base
// package contains shared types such as Logger; other components are in subpackages.
//
// The general model is:
//
// 1. A test script creates a tuneup.Session, registers test cases on it with Test, and
// finally calls TearDown, which runs every registered test in order.
//
// 2. Each test body receives a uia.Target and uia.Application. These are opaque handles on
// whatever automation backend is in use; the harness package provides one that talks to a
// remote automation service over HTTP.
//
// 3. Results are reported only through a uia.Logger sink. The uialog package provides
// console, JUnit, JSON-lines and streaming implementations.
package framework
