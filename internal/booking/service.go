package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"randevu/internal/observability/metrics"
	"randevu/internal/schedule"
	"randevu/pkg/logging"
)

// SlotSource fetches the open slots for a date.
type SlotSource interface {
	AvailableSlots(ctx context.Context, date time.Time, psychologistID string) ([]string, error)
}

// Booker submits a validated appointment to the scheduling backend.
type Booker interface {
	CreateAppointment(ctx context.Context, appt schedule.AppointmentRequest) error
}

// User-facing notices. The workflow never surfaces raw errors to the session.
const (
	msgNoAvailability     = "No available times on the selected date. Please pick another day."
	msgFetchFailed        = "Could not load available times. Please try selecting the date again."
	msgBookingAccepted    = "Your appointment has been booked."
	msgSubmissionRejected = "The appointment could not be created. Please check your details or pick another time."
)

// Service drives booking sessions through the workflow:
// date selection -> slot fetch -> slot selection -> contact -> submission.
// Sessions are advanced load -> validate -> mutate -> save against the store;
// every transition happens in one of the event methods below.
type Service struct {
	store          SessionStore
	slots          SlotSource
	booker         Booker
	psychologistID string
	logger         *logging.Logger
	metrics        *metrics.BookingMetrics

	// now is the clock used for the not-before-today check.
	now func() time.Time
}

// NewService constructs the booking workflow service.
func NewService(store SessionStore, slots SlotSource, booker Booker, psychologistID string, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if store == nil {
		panic("booking: session store required")
	}
	if slots == nil || booker == nil {
		panic("booking: scheduling collaborators required")
	}
	if strings.TrimSpace(psychologistID) == "" {
		psychologistID = "1"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:          store,
		slots:          slots,
		booker:         booker,
		psychologistID: psychologistID,
		logger:         logger,
		metrics:        m,
		now:            time.Now,
	}
}

// StartSession creates and stores a fresh idle session.
func (s *Service) StartSession(ctx context.Context) (*Session, error) {
	sess := NewSession(uuid.NewString(), s.now())
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("booking session started", "session_id", sess.ID)
	return sess, nil
}

// GetSession returns the current snapshot of a session.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// CancelSession forgets a session entirely.
func (s *Service) CancelSession(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("booking session cancelled", "session_id", id)
	return nil
}

// SelectDate picks a calendar date, clears all downstream choices and fetches
// that date's open slots. Dates earlier than today are rejected without
// touching the session. A later date selection supersedes an in-flight fetch:
// the superseded result is discarded when it arrives.
func (s *Service) SelectDate(ctx context.Context, id string, date time.Time) (*Session, error) {
	if beforeToday(date, s.now()) {
		return nil, ErrPastDate
	}
	dateStr := schedule.FormatDate(date)

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusSubmitting {
		return nil, ErrSubmitInProgress
	}

	sess.SelectedDate = dateStr
	sess.AvailableSlots = []string{}
	sess.SelectedSlot = ""
	sess.StatusMessage = ""
	sess.Status = StatusFetchingSlots
	sess.FetchGen++
	sess.UpdatedAt = s.now()
	gen := sess.FetchGen
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	start := time.Now()
	slots, fetchErr := s.slots.AvailableSlots(ctx, date, s.psychologistID)
	s.metrics.ObserveFetchLatency(time.Since(start).Seconds())

	return s.applySlots(ctx, id, dateStr, gen, slots, fetchErr)
}

// applySlots folds a slot-fetch result into the session, unless the session
// has moved on to a newer date selection in the meantime.
func (s *Service) applySlots(ctx context.Context, id, dateStr string, gen uint64, slots []string, fetchErr error) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.FetchGen != gen || sess.SelectedDate != dateStr {
		s.metrics.ObserveSlotFetch(metrics.FetchStale)
		s.logger.Info("dropping stale slot fetch result",
			"session_id", id,
			"fetched_date", dateStr,
			"selected_date", sess.SelectedDate,
		)
		return sess, nil
	}

	if fetchErr != nil {
		var statusErr *schedule.StatusError
		switch {
		case errors.As(fetchErr, &statusErr):
			s.logger.Error("slot fetch rejected by backend", "session_id", id, "date", dateStr, "status", statusErr.StatusCode)
		default:
			s.logger.Error("slot fetch failed", "session_id", id, "date", dateStr, "error", fetchErr)
		}
		s.metrics.ObserveSlotFetch(metrics.FetchError)
		sess.Status = StatusFailed
		sess.StatusMessage = msgFetchFailed
		sess.UpdatedAt = s.now()
		if err := s.store.Save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}

	if slots == nil {
		slots = []string{}
	}
	sess.AvailableSlots = slots
	sess.Status = StatusSlotsReady
	if len(slots) == 0 {
		sess.StatusMessage = msgNoAvailability
		s.metrics.ObserveSlotFetch(metrics.FetchEmpty)
	} else {
		s.metrics.ObserveSlotFetch(metrics.FetchOK)
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("slots fetched", "session_id", id, "date", dateStr, "count", len(slots))
	return sess, nil
}

// SelectSlot picks one of the fetched slots. The slot must be in the current
// available list and the session must have a loaded list; otherwise the
// session is left unchanged.
func (s *Service) SelectSlot(ctx context.Context, id, slot string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusSlotsReady {
		return nil, ErrNoSlotsReady
	}
	if !sess.HasSlot(slot) {
		return nil, ErrSlotUnavailable
	}

	sess.SelectedSlot = slot
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateContact assigns one contact field. No validation happens here; the
// fields are checked together at submit time.
func (s *Service) UpdateContact(ctx context.Context, id string, field ContactField, value string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch field {
	case FieldGivenName:
		sess.Contact.GivenName = value
	case FieldFamilyName:
		sess.Contact.FamilyName = value
	case FieldPhone:
		sess.Contact.Phone = value
	default:
		return nil, ErrUnknownContactField
	}

	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SubmitResult is the outcome of a submission attempt. Status is
// StatusSucceeded or StatusFailed; Session is the snapshot after the outcome
// was applied (reset on success, inputs retained on failure).
type SubmitResult struct {
	Status  Status
	Message string
	Session *Session
}

// Submit validates the session and books the selected slot. An incomplete
// session fails locally with *ValidationError and no request is issued. On
// acceptance the session resets to its initial empty state; on rejection or
// transport failure every user-entered value is retained so the user can
// adjust and resubmit.
func (s *Service) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusSubmitting {
		return nil, ErrSubmitInProgress
	}

	appt, missing := buildAppointment(sess)
	if len(missing) > 0 {
		s.metrics.ObserveSubmission(metrics.SubmissionValidationError)
		return nil, &ValidationError{Missing: missing}
	}

	sess.Status = StatusSubmitting
	sess.StatusMessage = ""
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	submitErr := s.booker.CreateAppointment(ctx, appt)

	// Reload before applying the outcome; contact edits made while the
	// request was in flight must not be lost.
	sess, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if submitErr == nil {
		sess.Reset()
		sess.StatusMessage = msgBookingAccepted
		sess.UpdatedAt = s.now()
		if err := s.store.Save(ctx, sess); err != nil {
			return nil, err
		}
		s.metrics.ObserveSubmission(metrics.SubmissionAccepted)
		s.logger.Info("booking accepted", "session_id", id, "date", appt.Date, "time", appt.Time)
		return &SubmitResult{Status: StatusSucceeded, Message: msgBookingAccepted, Session: sess}, nil
	}

	message := msgSubmissionRejected
	var rejection *schedule.RejectionError
	if errors.As(submitErr, &rejection) {
		if rejection.Detail != "" {
			message = msgSubmissionRejected + " (" + rejection.Detail + ")"
		}
		s.metrics.ObserveSubmission(metrics.SubmissionRejected)
		s.logger.Warn("booking rejected", "session_id", id, "status", rejection.StatusCode, "detail", rejection.Detail)
	} else {
		s.metrics.ObserveSubmission(metrics.SubmissionTransportError)
		s.logger.Error("booking submission failed", "session_id", id, "error", submitErr)
	}

	sess.Status = StatusFailed
	sess.StatusMessage = message
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &SubmitResult{Status: StatusFailed, Message: message, Session: sess}, nil
}

// buildAppointment assembles the creation request from the session, returning
// the names of any missing required values instead.
func buildAppointment(sess *Session) (schedule.AppointmentRequest, []string) {
	var missing []string
	if sess.SelectedDate == "" {
		missing = append(missing, "date")
	}
	if sess.SelectedSlot == "" {
		missing = append(missing, "time")
	}
	givenName := strings.TrimSpace(sess.Contact.GivenName)
	if givenName == "" {
		missing = append(missing, string(FieldGivenName))
	}
	familyName := strings.TrimSpace(sess.Contact.FamilyName)
	if familyName == "" {
		missing = append(missing, string(FieldFamilyName))
	}
	phone := strings.TrimSpace(sess.Contact.Phone)
	if phone == "" {
		missing = append(missing, string(FieldPhone))
	}
	if len(missing) > 0 {
		return schedule.AppointmentRequest{}, missing
	}
	return schedule.AppointmentRequest{
		UserName:    givenName,
		UserSurname: familyName,
		Phone:       phone,
		Date:        sess.SelectedDate,
		Time:        sess.SelectedSlot,
	}, nil
}

// beforeToday compares calendar days only; selecting today is allowed.
func beforeToday(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
