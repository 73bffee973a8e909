package school

import (
	"context"
	"errors"
	"sort"

	"schooladmin/internal/results"
)

// ResultReport is a saved result with its derived summary.
type ResultReport struct {
	ExamResult
	Summary results.Summary `json:"summary"`
}

// Marksheet combines a student's Half-Yearly and Annual results.
type Marksheet struct {
	StudentID   string                `json:"studentId"`
	StudentName string                `json:"studentName"`
	RollNumber  string                `json:"rollNumber"`
	ClassName   string                `json:"className"`
	FatherName  string                `json:"fatherName,omitempty"`
	PhotoURL    string                `json:"photoURL,omitempty"`
	Rows        []results.CombinedRow `json:"rows"`
	Summary     results.Summary       `json:"summary"`
}

type resultRows struct {
	Rows []results.Row `json:"rows" validate:"required,min=1,dive"`
}

func resultID(studentID, exam string) string {
	return studentID + "_" + exam
}

// SaveResult upserts the result of studentID for exam, refreshing the
// student snapshot stored with it.
func (s *Service) SaveResult(ctx context.Context, studentID, exam string, rows []results.Row) (ExamResult, error) {
	if !results.ValidExam(exam) {
		return ExamResult{}, invalid("exam", errUnknownExam)
	}
	if err := check(resultRows{Rows: rows}); err != nil {
		return ExamResult{}, err
	}
	st, err := s.repo.Student(ctx, studentID)
	if err != nil {
		return ExamResult{}, err
	}
	r := ExamResult{
		StudentID:   st.ID,
		Exam:        exam,
		ClassName:   st.ClassName,
		StudentName: st.Name,
		RollNumber:  st.RollNumber,
		FatherName:  st.FatherName,
		PhotoURL:    st.PhotoURL,
		Rows:        rows,
		UpdatedAt:   s.now().UTC(),
	}
	id := resultID(studentID, exam)
	if err := s.repo.set(ctx, ExamResults, id, r); err != nil {
		return ExamResult{}, err
	}
	r.ID = id
	return r, nil
}

func (s *Service) GetResult(ctx context.Context, studentID, exam string) (ExamResult, error) {
	if !results.ValidExam(exam) {
		return ExamResult{}, invalid("exam", errUnknownExam)
	}
	return get[ExamResult](ctx, s.repo, ExamResults, resultID(studentID, exam))
}

// ListResults filters saved results by class and exam; empty filters match
// everything. Results are ordered by roll number.
func (s *Service) ListResults(ctx context.Context, class, exam string) ([]ExamResult, error) {
	all, err := list[ExamResult](ctx, s.repo, ExamResults)
	if err != nil {
		return nil, err
	}
	out := make([]ExamResult, 0, len(all))
	for _, r := range all {
		if (class == "" || r.ClassName == class) && (exam == "" || r.Exam == exam) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rollLess(out[i].RollNumber, out[j].RollNumber) })
	return out, nil
}

func (s *Service) DeleteResult(ctx context.Context, studentID, exam string) error {
	return s.repo.delete(ctx, ExamResults, resultID(studentID, exam))
}

func (s *Service) ResultSummary(ctx context.Context, studentID, exam string) (ResultReport, error) {
	r, err := s.GetResult(ctx, studentID, exam)
	if err != nil {
		return ResultReport{}, err
	}
	return ResultReport{ExamResult: r, Summary: results.Summarize(r.Rows)}, nil
}

// ClassReport summarises every result of class for exam.
func (s *Service) ClassReport(ctx context.Context, class, exam string) ([]ResultReport, error) {
	rs, err := s.ListResults(ctx, class, exam)
	if err != nil {
		return nil, err
	}
	out := make([]ResultReport, 0, len(rs))
	for _, r := range rs {
		out = append(out, ResultReport{ExamResult: r, Summary: results.Summarize(r.Rows)})
	}
	return out, nil
}

// Marksheet joins the Half-Yearly and Annual rows by subject name. A missing
// exam contributes zero rows.
func (s *Service) Marksheet(ctx context.Context, studentID string) (Marksheet, error) {
	st, err := s.repo.Student(ctx, studentID)
	if err != nil {
		return Marksheet{}, err
	}
	half, err := s.optionalRows(ctx, studentID, results.HalfYearly)
	if err != nil {
		return Marksheet{}, err
	}
	annual, err := s.optionalRows(ctx, studentID, results.Annual)
	if err != nil {
		return Marksheet{}, err
	}
	rows := results.Combine(half, annual)
	return Marksheet{
		StudentID:   st.ID,
		StudentName: st.Name,
		RollNumber:  st.RollNumber,
		ClassName:   st.ClassName,
		FatherName:  st.FatherName,
		PhotoURL:    st.PhotoURL,
		Rows:        rows,
		Summary:     results.Summarize(results.CombinedRows(rows)),
	}, nil
}

func (s *Service) optionalRows(ctx context.Context, studentID, exam string) ([]results.Row, error) {
	r, err := s.GetResult(ctx, studentID, exam)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r.Rows, err
}
