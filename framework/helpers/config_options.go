// Package helpers contains small generic utilities shared by the framework packages.
package helpers

// ConfigOption is an interface for use with the vararg options pattern and ApplyOptions.
type ConfigOption[T any] interface {
	// Configure makes whatever configuration change the option represents.
	Configure(*T) error
}

// ApplyOptions calls Configure for each option against the target value, in order. It
// stops at the first error and returns it.
func ApplyOptions[T any, U ConfigOption[T]](target *T, options ...U) error {
	// Taking U rather than ...ConfigOption[T] lets callers declare their own option
	// interface type and pass a slice of it directly.
	for _, o := range options {
		if err := o.Configure(target); err != nil {
			return err
		}
	}
	return nil
}
