// Package ledger implements the month-keyed fee and salary ledgers embedded in
// student and teacher documents.
package ledger

import (
	"errors"
	"math"
	"time"

	"schooladmin/internal/calendar"
)

// ErrAlreadyPaid is returned when paying a settled month.
var ErrAlreadyPaid = errors.New("already paid")

// Entry is one month of a ledger.
type Entry struct {
	Total  float64    `json:"total"`
	Paid   float64    `json:"paid"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
}

// Settled reports whether the month is fully paid. A zero total is never settled.
func (e Entry) Settled() bool {
	return e.Total > 0 && e.Paid >= e.Total
}

// Due is the unpaid remainder of the month, never negative.
func (e Entry) Due() float64 {
	return math.Max(e.Total-e.Paid, 0)
}

// Ledger maps academic month names to entries.
type Ledger map[string]Entry

// Seed builds a student's fee ledger at a flat monthly rate. When paidAmount
// covers whole months they are marked paid in academic order starting from
// April; any remainder smaller than one month is dropped.
func Seed(monthlyFee, paidAmount float64, at time.Time) Ledger {
	fullMonths := 0
	if monthlyFee > 0 && paidAmount > 0 {
		fullMonths = int(math.Floor(paidAmount / monthlyFee))
	}
	l := make(Ledger, len(calendar.AcademicMonths))
	for i, month := range calendar.AcademicMonths {
		e := Entry{Total: monthlyFee}
		if i < fullMonths {
			paidAt := at
			e.Paid = monthlyFee
			e.PaidAt = &paidAt
		}
		l[month] = e
	}
	return l
}

// Pay settles a fee month. The month's total is rewritten with currentTotal
// when it is positive, otherwise the recorded total is kept. Paying a settled
// month returns ErrAlreadyPaid and leaves the ledger untouched.
func (l Ledger) Pay(month string, currentTotal float64, at time.Time) (Entry, error) {
	if _, err := calendar.MonthIndex(month); err != nil {
		return Entry{}, err
	}
	e := l[month]
	if e.Settled() {
		return e, ErrAlreadyPaid
	}
	if currentTotal > 0 {
		e.Total = currentTotal
	}
	paidAt := at
	e.Paid = e.Total
	e.PaidAt = &paidAt
	l[month] = e
	return e, nil
}

// Credit records a salary payment, creating the month entry on first use.
func (l Ledger) Credit(month string, amount float64, at time.Time) (Entry, error) {
	if _, err := calendar.MonthIndex(month); err != nil {
		return Entry{}, err
	}
	if e, ok := l[month]; ok && e.Settled() {
		return e, ErrAlreadyPaid
	}
	paidAt := at
	e := Entry{Total: amount, Paid: amount, PaidAt: &paidAt}
	l[month] = e
	return e, nil
}

// Line is one row of a statement.
type Line struct {
	Month   string  `json:"month"`
	Entry   Entry   `json:"entry"`
	Settled bool    `json:"settled"`
	Due     float64 `json:"due"`
	Present bool    `json:"present"`
}

// Statement lists the ledger in academic order.
type Statement struct {
	Lines     []Line  `json:"lines"`
	Collected float64 `json:"collected"`
	Due       float64 `json:"due"`
}

// NewStatement summarises l over all twelve academic months. Months missing from
// the ledger appear with Present=false and a zero entry.
func NewStatement(l Ledger) Statement {
	s := Statement{Lines: make([]Line, 0, len(calendar.AcademicMonths))}
	for _, month := range calendar.AcademicMonths {
		e, ok := l[month]
		line := Line{Month: month, Entry: e, Settled: e.Settled(), Due: e.Due(), Present: ok}
		s.Lines = append(s.Lines, line)
		s.Collected += e.Paid
		s.Due += line.Due
	}
	return s
}

// Paths returns the dotted document paths of a month entry under root
// ("fees" or "salaryDetails").
func Paths(root, month string) (total, paid, paidAt string) {
	base := root + "." + month + "."
	return base + "total", base + "paid", base + "paidAt"
}
