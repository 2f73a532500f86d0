package model

import "fmt"

// ValidationError is a schema-level rejection of a client-supplied document.
// It is the only store-layer failure whose message is shown to the caller;
// everything else surfaces as a generic internal error.
type ValidationError struct {
	Resource string
	Field    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s is required", e.Resource, e.Field)
}
