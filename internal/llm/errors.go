package llm

import "fmt"

// ErrGeneration is the single failure outcome of a generation call. Status
// and Payload are filled in when the backend returned an HTTP error, so the
// caller can log what the backend said.
type ErrGeneration struct {
	Backend string
	Status  int
	Payload string
	Err     error
}

func (e *ErrGeneration) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s generation failed (status %d): %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Backend, e.Err)
}

func (e *ErrGeneration) Unwrap() error { return e.Err }
