package schoology

import "fmt"

// UpstreamError is a non-success response or transport failure from the
// Schoology API. It is propagated, not retried, at the fetch layer; the
// caller decides whether a failed collection can degrade to empty.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schoology: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("schoology: %s: status %d", e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
