package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("booking: session not found")

	// ErrPastDate rejects date selections earlier than today.
	ErrPastDate = errors.New("booking: date is earlier than today")

	// ErrNoSlotsReady rejects slot selection before a slot list is loaded.
	ErrNoSlotsReady = errors.New("booking: no slot list loaded for the session")

	// ErrSlotUnavailable rejects a slot that is not in the available list.
	ErrSlotUnavailable = errors.New("booking: slot is not available")

	// ErrSubmitInProgress rejects events that would interleave with an
	// in-flight submission.
	ErrSubmitInProgress = errors.New("booking: submission already in progress")

	// ErrUnknownContactField rejects contact updates to fields that do not exist.
	ErrUnknownContactField = errors.New("booking: unknown contact field")
)

// ValidationError reports an incomplete session at submit time. It is raised
// locally, before any request is issued.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: missing required fields: %s", strings.Join(e.Missing, ", "))
}
