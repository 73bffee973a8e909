// Package dashboard computes the console's landing summary.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"schooladmin/internal/attendance"
	"schooladmin/internal/calendar"
	"schooladmin/internal/ledger"
	"schooladmin/internal/school"
)

// Summary is the landing page view.
type Summary struct {
	Date               string    `json:"date"`
	Month              string    `json:"month"`
	Students           int       `json:"students"`
	Teachers           int       `json:"teachers"`
	StudentsPresent    int       `json:"studentsPresent"`
	StudentsAbsent     int       `json:"studentsAbsent"`
	TeachersPresent    int       `json:"teachersPresent"`
	TeachersAbsent     int       `json:"teachersAbsent"`
	FeesCollectedMonth float64   `json:"feesCollectedMonth"`
	FeesDueMonth       float64   `json:"feesDueMonth"`
	FeesCollectedYear  float64   `json:"feesCollectedYear"`
	SalaryPaidMonth    float64   `json:"salaryPaidMonth"`
	ComputedAt         time.Time `json:"computedAt"`
}

// Compute derives the summary for the day containing now. students must
// already exclude soft-deleted records.
func Compute(students []school.Student, teachers []school.Teacher, now time.Time) Summary {
	today := calendar.TodayKey(now)
	month := now.Month().String()
	s := Summary{
		Date:       now.Format("2006-01-02"),
		Month:      month,
		Students:   len(students),
		Teachers:   len(teachers),
		ComputedAt: now.UTC(),
	}
	var collected, due, year, salary decimal.Decimal
	for _, st := range students {
		switch mark(st.Attendance, today) {
		case attendance.Present:
			s.StudentsPresent++
		case attendance.Absent:
			s.StudentsAbsent++
		}
		e := st.Fees[month]
		collected = collected.Add(decimal.NewFromFloat(e.Paid))
		due = due.Add(decimal.NewFromFloat(e.Due()))
		year = year.Add(sumPaid(st.Fees))
	}
	for _, t := range teachers {
		switch mark(t.Attendance, today) {
		case attendance.Present:
			s.TeachersPresent++
		case attendance.Absent:
			s.TeachersAbsent++
		}
		salary = salary.Add(decimal.NewFromFloat(t.SalaryDetails[month].Paid))
	}
	s.FeesCollectedMonth = collected.InexactFloat64()
	s.FeesDueMonth = due.InexactFloat64()
	s.FeesCollectedYear = year.InexactFloat64()
	s.SalaryPaidMonth = salary.InexactFloat64()
	return s
}

func mark(m attendance.Marks, dayKey string) attendance.Status {
	st, _ := m.Status(dayKey)
	return st
}

func sumPaid(l ledger.Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, e := range l {
		total = total.Add(decimal.NewFromFloat(e.Paid))
	}
	return total
}

// Service serves summaries from a cache, computing them on a miss.
type Service struct {
	school *school.Service
	cache  Cache
	log    *zap.Logger
}

func NewService(svc *school.Service, cache Cache, log *zap.Logger) *Service {
	return &Service{school: svc, cache: cache, log: log}
}

// Summary returns the cached summary or computes and caches a fresh one.
// Cache failures are logged and fall back to computing inline.
func (d *Service) Summary(ctx context.Context) (Summary, error) {
	s, ok, err := d.cache.Get(ctx)
	if err != nil {
		d.log.Warn("dashboard cache read failed", zap.Error(err))
	}
	if ok {
		return s, nil
	}
	return d.Refresh(ctx)
}

// Refresh recomputes the summary and stores it.
func (d *Service) Refresh(ctx context.Context) (Summary, error) {
	students, err := d.school.ListStudents(ctx, "")
	if err != nil {
		return Summary{}, err
	}
	teachers, err := d.school.ListTeachers(ctx)
	if err != nil {
		return Summary{}, err
	}
	s := Compute(students, teachers, d.school.Now())
	if err := d.cache.Set(ctx, s); err != nil {
		d.log.Warn("dashboard cache write failed", zap.Error(err))
	}
	return s, nil
}
