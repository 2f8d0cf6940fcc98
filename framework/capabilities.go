package framework

import "golang.org/x/exp/slices"

// Capabilities is a list of strings reported by the automation service, naming optional
// features that it supports, such as "screen-capture".
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	return slices.Contains(cs, name)
}
