package schedule

import "fmt"

// StatusError reports a non-200 answer to a slot-availability lookup.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("schedule API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("schedule API returned %d: %s", e.StatusCode, e.Body)
}

// RejectionError reports a declined appointment creation, e.g. a slot taken
// between fetch and submit or backend-side validation.
type RejectionError struct {
	StatusCode int
	Detail     string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("appointment rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("appointment rejected with status %d: %s", e.StatusCode, e.Detail)
}
