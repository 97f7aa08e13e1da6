package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"randevu/pkg/logging"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000/api"
	defaultTimeout = 15 * time.Second
)

// Client wraps the public REST endpoints of the scheduling backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient constructs a scheduling backend client.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// AvailableSlots returns the open "HH:MM" slots for a psychologist on a date.
// The backend responds with a bare JSON array ordered ascending; anything else
// is a fetch failure.
func (c *Client) AvailableSlots(ctx context.Context, date time.Time, psychologistID string) ([]string, error) {
	q := url.Values{}
	q.Set("date", FormatDate(date))
	q.Set("psychologist_id", psychologistID)

	endpoint := c.baseURL + "/public/available-slots/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("schedule API non-200 slot response", "status", resp.StatusCode, "date", q.Get("date"))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(respBody)}
	}

	var slots []string
	if err := json.Unmarshal(respBody, &slots); err != nil {
		return nil, fmt.Errorf("decode slot list: %w", err)
	}
	// json.Unmarshal accepts a literal null without error; only an actual
	// array counts as a valid slot list.
	if slots == nil {
		return nil, fmt.Errorf("decode slot list: body is not a JSON array")
	}
	return slots, nil
}

// AppointmentRequest is the creation payload for the backend.
type AppointmentRequest struct {
	UserName    string `json:"user_name"`
	UserSurname string `json:"user_surname"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// CreateAppointment books a slot. Any 2xx status is acceptance; a non-2xx
// status is returned as a *RejectionError carrying whatever detail the body
// offers. Transport failures come back as plain wrapped errors so callers can
// tell the two apart with errors.As.
func (c *Client) CreateAppointment(ctx context.Context, appt AppointmentRequest) error {
	payload, err := json.Marshal(appt)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/public/appointments/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("schedule API rejected appointment",
			"status", resp.StatusCode,
			"date", appt.Date,
			"time", appt.Time,
		)
		return &RejectionError{StatusCode: resp.StatusCode, Detail: rejectionDetail(respBody)}
	}
	return nil
}

// rejectionDetail pulls a human-readable reason out of a rejection body.
// Django-style backends answer either {"detail": "..."} or a map of
// field -> list of messages.
func rejectionDetail(body []byte) string {
	var withDetail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &withDetail); err == nil && withDetail.Detail != "" {
		return withDetail.Detail
	}

	var fieldErrors map[string][]string
	if err := json.Unmarshal(body, &fieldErrors); err == nil && len(fieldErrors) > 0 {
		keys := make([]string, 0, len(fieldErrors))
		for k := range fieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if len(fieldErrors[k]) > 0 {
				parts = append(parts, k+": "+fieldErrors[k][0])
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	return truncate(body)
}

func truncate(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
