// Package payroll derives a teacher's owed salary for a month from attendance.
package payroll

import (
	"github.com/shopspring/decimal"

	"schooladmin/internal/attendance"
	"schooladmin/internal/calendar"
)

// CalculateSalary returns round(monthlySalary / daysInMonth * presentDays).
// Absence and unmarked days carry no separate deduction; they simply do not
// count as present. A non-positive daysInMonth yields 0.
func CalculateSalary(monthlySalary float64, presentDays, daysInMonth int) int64 {
	if daysInMonth <= 0 || presentDays <= 0 {
		return 0
	}
	perDay := decimal.NewFromFloat(monthlySalary).Div(decimal.NewFromInt(int64(daysInMonth)))
	return perDay.Mul(decimal.NewFromInt(int64(presentDays))).Round(0).IntPart()
}

// Quote is the salary computation for one teacher month.
type Quote struct {
	Month         string  `json:"month"`
	Year          int     `json:"year"`
	MonthlySalary float64 `json:"monthlySalary"`
	DaysInMonth   int     `json:"daysInMonth"`
	Present       int     `json:"present"`
	Absent        int     `json:"absent"`
	Amount        int64   `json:"amount"`
}

// Compute builds a quote from the teacher's marks for month of the academic
// year starting in startYear.
func Compute(monthlySalary float64, marks attendance.Marks, month string, startYear int) (Quote, error) {
	days, err := calendar.DaysInMonth(startYear, month)
	if err != nil {
		return Quote{}, err
	}
	tally := attendance.Count(marks, month)
	return Quote{
		Month:         month,
		Year:          startYear,
		MonthlySalary: monthlySalary,
		DaysInMonth:   days,
		Present:       tally.Present,
		Absent:        tally.Absent,
		Amount:        CalculateSalary(monthlySalary, tally.Present, days),
	}, nil
}
