// Package booking owns the appointment booking workflow: one session per
// user interaction, advanced only through the event operations on Service
// (select date, select slot, update contact, submit).
package booking

import "time"

// Status is the workflow state of a booking session.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusFetchingSlots Status = "fetching_slots"
	StatusSlotsReady    Status = "slots_ready"
	StatusSubmitting    Status = "submitting"
	StatusSucceeded     Status = "succeeded"
	StatusFailed        Status = "failed"
)

// ContactField names a mutable contact detail.
type ContactField string

const (
	FieldGivenName  ContactField = "given_name"
	FieldFamilyName ContactField = "family_name"
	FieldPhone      ContactField = "phone"
)

// Contact holds the booking contact details. All three fields must be
// non-empty (after trimming) at submit time; no shape validation beyond that.
type Contact struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Phone      string `json:"phone"`
}

// Session is the live state of one booking interaction. Dates are canonical
// YYYY-MM-DD strings and slots canonical HH:MM strings, matching the wire
// format of the scheduling backend.
type Session struct {
	ID             string    `json:"id"`
	SelectedDate   string    `json:"selected_date,omitempty"`
	AvailableSlots []string  `json:"available_slots"`
	SelectedSlot   string    `json:"selected_slot,omitempty"`
	Contact        Contact   `json:"contact"`
	Status         Status    `json:"status"`
	StatusMessage  string    `json:"status_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// FetchGen increments on every date selection. A slot-fetch result is
	// applied only while the generation it was issued under is still current,
	// so a response for a superseded date has no observable effect.
	FetchGen uint64 `json:"fetch_gen"`
}

// NewSession returns an empty idle session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:             id,
		AvailableSlots: []string{},
		Status:         StatusIdle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Reset clears every user-entered value, returning the session to its initial
// empty state. The session identity and fetch generation survive so the same
// session can be reused for the next booking.
func (s *Session) Reset() {
	s.SelectedDate = ""
	s.AvailableSlots = []string{}
	s.SelectedSlot = ""
	s.Contact = Contact{}
	s.Status = StatusIdle
	s.StatusMessage = ""
}

// HasSlot reports whether slot is in the currently available list.
func (s *Session) HasSlot(slot string) bool {
	for _, candidate := range s.AvailableSlots {
		if candidate == slot {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so stored sessions never alias caller-held ones.
func (s *Session) Clone() *Session {
	out := *s
	out.AvailableSlots = make([]string, len(s.AvailableSlots))
	copy(out.AvailableSlots, s.AvailableSlots)
	return &out
}
