// Package handlers exposes the booking workflow as a JSON API. Handlers only
// translate HTTP requests into booking events and session snapshots back into
// responses; all workflow rules live in the booking service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"randevu/internal/booking"
	"randevu/internal/schedule"
	"randevu/pkg/logging"
)

// BookingHandler serves the session lifecycle endpoints.
type BookingHandler struct {
	service *booking.Service
	logger  *logging.Logger
}

// NewBookingHandler creates a booking API handler.
func NewBookingHandler(service *booking.Service, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{service: service, logger: logger}
}

// SessionResponse is the rendered snapshot of a booking session.
type SessionResponse struct {
	ID             string          `json:"id"`
	Status         booking.Status  `json:"status"`
	SelectedDate   string          `json:"selected_date,omitempty"`
	AvailableSlots []string        `json:"available_slots"`
	SelectedSlot   string          `json:"selected_slot,omitempty"`
	Contact        booking.Contact `json:"contact"`
	StatusMessage  string          `json:"status_message,omitempty"`
}

func toSessionResponse(s *booking.Session) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		Status:         s.Status,
		SelectedDate:   s.SelectedDate,
		AvailableSlots: s.AvailableSlots,
		SelectedSlot:   s.SelectedSlot,
		Contact:        s.Contact,
		StatusMessage:  s.StatusMessage,
	}
}

// SubmitResponse carries the submission outcome next to the session snapshot.
type SubmitResponse struct {
	Outcome struct {
		Status  booking.Status `json:"status"`
		Message string         `json:"message"`
	} `json:"outcome"`
	Session SessionResponse `json:"session"`
}

// HealthCheck reports liveness.
func (h *BookingHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession starts a fresh booking session.
func (h *BookingHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.StartSession(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// GetSession returns the current session snapshot.
func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// SelectDate handles the date-selection event and returns the session after
// the slot fetch has settled.
func (h *BookingHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	sess, err := h.service.SelectDate(r.Context(), chi.URLParam(r, "sessionID"), date)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// SelectSlot handles the slot-selection event.
func (h *BookingHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time == "" {
		writeError(w, http.StatusBadRequest, "time is required")
		return
	}

	sess, err := h.service.SelectSlot(r.Context(), chi.URLParam(r, "sessionID"), req.Time)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// UpdateContact assigns one contact field.
func (h *BookingHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		writeError(w, http.StatusBadRequest, "field is required")
		return
	}

	sess, err := h.service.UpdateContact(r.Context(), chi.URLParam(r, "sessionID"), booking.ContactField(req.Field), req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Submit attempts the booking and reports the outcome.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var resp SubmitResponse
	resp.Outcome.Status = result.Status
	resp.Outcome.Message = result.Message
	resp.Session = toSessionResponse(result.Session)
	writeJSON(w, http.StatusOK, resp)
}

// CancelSession deletes the session.
func (h *BookingHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *booking.ValidationError
	switch {
	case errors.Is(err, booking.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "session is incomplete",
			"missing": validationErr.Missing,
		})
	case errors.Is(err, booking.ErrPastDate):
		writeError(w, http.StatusUnprocessableEntity, "date must be today or later")
	case errors.Is(err, booking.ErrNoSlotsReady):
		writeError(w, http.StatusUnprocessableEntity, "no slot list loaded; select a date first")
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusUnprocessableEntity, "slot is not in the available list")
	case errors.Is(err, booking.ErrUnknownContactField):
		writeError(w, http.StatusUnprocessableEntity, "unknown contact field")
	case errors.Is(err, booking.ErrSubmitInProgress):
		writeError(w, http.StatusConflict, "submission already in progress")
	default:
		h.logger.Error("booking handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
