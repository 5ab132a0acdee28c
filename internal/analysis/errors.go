package analysis

import "fmt"

// MalformedSampleError reports a raw sample that cannot be normalized.
// Index is the sample's position in the dataset as received.
type MalformedSampleError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *MalformedSampleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed sample at index %d: %s %q: %v", e.Index, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed sample at index %d: %s %q", e.Index, e.Field, e.Value)
}

func (e *MalformedSampleError) Unwrap() error {
	return e.Err
}
