package school

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"schooladmin/internal/calendar"
	"schooladmin/internal/docstore"
	"schooladmin/internal/ledger"
	"schooladmin/internal/metrics"
	"schooladmin/internal/payroll"
)

// FeeStatement is a student's fee ledger in academic order.
type FeeStatement struct {
	StudentID  string  `json:"studentId"`
	Name       string  `json:"name"`
	ClassName  string  `json:"className"`
	RollNumber string  `json:"rollNumber"`
	MonthlyFee float64 `json:"monthlyFee"`
	ledger.Statement
}

func (s *Service) FeeStatement(ctx context.Context, studentID string) (FeeStatement, error) {
	st, err := s.repo.Student(ctx, studentID)
	if err != nil {
		return FeeStatement{}, err
	}
	return FeeStatement{
		StudentID:  st.ID,
		Name:       st.Name,
		ClassName:  st.ClassName,
		RollNumber: st.RollNumber,
		MonthlyFee: st.MonthlyFee,
		Statement:  ledger.NewStatement(st.Fees),
	}, nil
}

// PayFee settles one fee month at the student's current monthly fee.
// Settled months are rejected with ledger.ErrAlreadyPaid.
func (s *Service) PayFee(ctx context.Context, studentID, month string) (ledger.Entry, error) {
	if !calendar.ValidMonth(month) {
		return ledger.Entry{}, invalid("month", calendar.ErrUnknownMonth)
	}
	st, err := s.repo.Student(ctx, studentID)
	if err != nil {
		return ledger.Entry{}, err
	}
	fees := st.Fees
	if fees == nil {
		fees = ledger.Ledger{}
	}
	e, err := fees.Pay(month, st.MonthlyFee, s.now().UTC())
	if err != nil {
		return e, err
	}
	if err := s.writeEntry(ctx, Students, studentID, feesRoot, month, e); err != nil {
		s.log.Error("pay fee", zap.String("student", studentID), zap.String("month", month), zap.Error(err))
		return ledger.Entry{}, err
	}
	metrics.FeePayments.Inc()
	return e, nil
}

func (s *Service) writeEntry(ctx context.Context, collection, id, root, month string, e ledger.Entry) error {
	total, paid, paidAt := ledger.Paths(root, month)
	return s.repo.update(ctx, collection, id,
		docstore.Set(total, e.Total),
		docstore.Set(paid, e.Paid),
		docstore.Set(paidAt, e.PaidAt),
	)
}

// SalaryQuote is the payroll computation for a teacher month plus any
// payment already recorded.
type SalaryQuote struct {
	TeacherID string `json:"teacherId"`
	Name      string `json:"name"`
	payroll.Quote
	Entry   *ledger.Entry `json:"entry,omitempty"`
	Settled bool          `json:"settled"`
}

// SalaryQuote computes what teacherID is owed for month of the academic year
// starting in year; zero means the current academic year.
func (s *Service) SalaryQuote(ctx context.Context, teacherID, month string, year int) (SalaryQuote, error) {
	t, err := s.repo.Teacher(ctx, teacherID)
	if err != nil {
		return SalaryQuote{}, err
	}
	return s.quote(t, month, year)
}

func (s *Service) quote(t Teacher, month string, year int) (SalaryQuote, error) {
	if year == 0 {
		year = calendar.AcademicYear(s.now())
	}
	q, err := payroll.Compute(t.Salary, t.Attendance, month, year)
	if err != nil {
		return SalaryQuote{}, invalid("month", err)
	}
	out := SalaryQuote{TeacherID: t.ID, Name: t.Name, Quote: q}
	if e, ok := t.SalaryDetails[month]; ok {
		out.Entry = &e
		out.Settled = e.Settled()
	}
	return out, nil
}

// PaySalary pays the quoted amount and records it under salaryDetails.
func (s *Service) PaySalary(ctx context.Context, teacherID, month string, year int) (ledger.Entry, error) {
	t, err := s.repo.Teacher(ctx, teacherID)
	if err != nil {
		return ledger.Entry{}, err
	}
	q, err := s.quote(t, month, year)
	if err != nil {
		return ledger.Entry{}, err
	}
	details := t.SalaryDetails
	if details == nil {
		details = ledger.Ledger{}
	}
	e, err := details.Credit(month, float64(q.Amount), s.now().UTC())
	if errors.Is(err, ledger.ErrAlreadyPaid) {
		return e, err
	}
	if err != nil {
		return ledger.Entry{}, invalid("month", err)
	}
	if err := s.writeEntry(ctx, Teachers, teacherID, salaryRoot, month, e); err != nil {
		s.log.Error("pay salary", zap.String("teacher", teacherID), zap.String("month", month), zap.Error(err))
		return ledger.Entry{}, err
	}
	metrics.SalaryPayments.Inc()
	return e, nil
}
