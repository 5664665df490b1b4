package execctx

import "fmt"

// KeyTypeError reports a supplemental variable whose key is not a string.
type KeyTypeError struct {
	Key any
}

// Error implements the error interface.
func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("key <%v> must be string", e.Key)
}

// ValueTypeError reports a supplemental variable whose value is not a string.
type ValueTypeError struct {
	Key   string
	Value any
}

// Error implements the error interface.
func (e *ValueTypeError) Error() string {
	return fmt.Sprintf("value of key <%s> must be string, not <%T>", e.Key, e.Value)
}
