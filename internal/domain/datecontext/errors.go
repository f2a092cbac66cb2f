package datecontext

import "fmt"

// PanicError wraps a value recovered from a panicking extractor so the cascade
// can treat it like any other failure.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("extractor panicked: %v", e.Value)
}
