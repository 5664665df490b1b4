package binder

import "fmt"

// ConflictError reports a pool key that names a parameter already satisfied
// by a positionally-supplied argument.
type ConflictError struct {
	Param string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("parameter %q is bound positionally and is reserved in the keyword pool", e.Param)
}
