package task

import (
	"encoding/json"
	"strings"
	"time"
)

// DisplayLayout is the short date shown on task cards, e.g. "15 Jan 2023".
const DisplayLayout = "02 Jan 2006"

var deadlineLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Deadline is the raw deadline value as received. The zero value means no deadline.
type Deadline string

// IsZero reports whether no deadline is set.
func (d Deadline) IsZero() bool { return strings.TrimSpace(string(d)) == "" }

// Time parses the deadline. Date-only values are midnight UTC.
func (d Deadline) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Display formats the deadline for humans, or returns "" when it is missing
// or unparsable.
func (d Deadline) Display() string {
	t, ok := d.Time()
	if !ok {
		return ""
	}
	return t.Format(DisplayLayout)
}

func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(strings.TrimSpace(string(d)))
}

func (d *Deadline) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = Deadline(s)
	return nil
}

// DateDeadline renders t as a date-only deadline.
func DateDeadline(t time.Time) Deadline {
	return Deadline(t.Format(time.DateOnly))
}
