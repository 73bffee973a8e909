// Package calendar holds the academic month cycle and the attendance day-key format.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AcademicMonths is the fee and attendance bucketing order, April through March.
var AcademicMonths = [12]string{
	"April", "May", "June", "July", "August", "September",
	"October", "November", "December", "January", "February", "March",
}

// calendarOffset maps an academic index to the zero-indexed calendar month
// passed to the day-0 normalisation in DaysInMonth.
const calendarOffset = 4

const daySep = "_day_"

// ErrUnknownMonth is returned for a month name outside the academic cycle.
var ErrUnknownMonth = errors.New("unknown month")

// ErrBadDayKey is returned when a day-key does not have the "{Month}_day_{N}" shape.
var ErrBadDayKey = errors.New("invalid day key")

// MonthIndex returns the academic index of month (April = 0).
func MonthIndex(month string) (int, error) {
	for i, m := range AcademicMonths {
		if m == month {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, month)
}

// ValidMonth reports whether month is one of the twelve academic month names.
func ValidMonth(month string) bool {
	_, err := MonthIndex(month)
	return err == nil
}

// DayKey builds the attendance key for the given month and 1-indexed day.
func DayKey(month string, day int) string {
	return month + daySep + strconv.Itoa(day)
}

// ParseDayKey splits a day-key into month and day. Calendar validity of the day
// (e.g. 31 in a 30-day month) is not checked.
func ParseDayKey(key string) (string, int, error) {
	month, dayStr, ok := strings.Cut(key, daySep)
	if !ok || !ValidMonth(month) {
		return "", 0, fmt.Errorf("%w: %q", ErrBadDayKey, key)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadDayKey, key)
	}
	return month, day, nil
}

// MonthPrefix is the key prefix shared by every day-key of month.
func MonthPrefix(month string) string {
	return month + daySep
}

// DaysInMonth returns the day count used for payroll of an academic month in
// the academic year starting in startYear. The month index is shifted by a
// fixed offset and resolved with day 0 of the following calendar month, so
// January to March fall into startYear+1.
func DaysInMonth(startYear int, month string) (int, error) {
	idx, err := MonthIndex(month)
	if err != nil {
		return 0, err
	}
	zeroIndexed := idx + calendarOffset
	return time.Date(startYear, time.Month(zeroIndexed+1), 0, 0, 0, 0, 0, time.UTC).Day(), nil
}

// AcademicYear returns the start year of the academic year containing t.
func AcademicYear(t time.Time) int {
	if t.Month() < time.April {
		return t.Year() - 1
	}
	return t.Year()
}

// TodayKey returns the day-key for t.
func TodayKey(t time.Time) string {
	return DayKey(t.Month().String(), t.Day())
}
