package schedule

import (
	"fmt"
	"time"
)

// FormatDate renders a calendar date as YYYY-MM-DD using the local calendar
// fields of t. Converting through UTC here shifts the date by a day near
// midnight in zones behind UTC, so the fields are formatted directly.
func FormatDate(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ParseDate reads a YYYY-MM-DD string into a local-midnight time.Time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
