// Package attendance implements the per-entity attendance ledger: a map from
// day-key to a single status mark, embedded in the student or teacher document.
package attendance

import (
	"errors"
	"fmt"
	"strings"

	"schooladmin/internal/calendar"
)

// Status is a single day's mark.
type Status string

const (
	Present Status = "P"
	Absent  Status = "A"
)

// ErrInvalidStatus is returned for a mark other than "P" or "A".
var ErrInvalidStatus = errors.New("invalid attendance status")

// ParseStatus validates a raw mark.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Present, Absent:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Marks maps day-keys to status marks. Unmarked days are absent from the map.
type Marks map[string]string

// Tally is the per-month count of present and absent marks.
type Tally struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// Marked returns the number of days carrying either mark.
func (t Tally) Marked() int { return t.Present + t.Absent }

// Mark sets exactly one status for dayKey.
func (m Marks) Mark(dayKey string, status Status) error {
	if _, _, err := calendar.ParseDayKey(dayKey); err != nil {
		return err
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	m[dayKey] = string(status)
	return nil
}

// Status returns the mark for dayKey and whether one is set.
func (m Marks) Status(dayKey string) (Status, bool) {
	v, ok := m[dayKey]
	return Status(v), ok
}

// Count tallies the marks whose key belongs to month. Keys of other months and
// values other than "P" and "A" are ignored.
func Count(m Marks, month string) Tally {
	prefix := calendar.MonthPrefix(month)
	var t Tally
	for key, v := range m {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		switch Status(v) {
		case Present:
			t.Present++
		case Absent:
			t.Absent++
		}
	}
	return t
}

// FieldPath is the dotted document path of a day's mark.
func FieldPath(dayKey string) string {
	return "attendance." + dayKey
}
