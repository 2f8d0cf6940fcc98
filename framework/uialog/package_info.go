// Package uialog contains implementations of uia.Logger that report test progress to the
// console, to files, and to live viewers.
package uialog
