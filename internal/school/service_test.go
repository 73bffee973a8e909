package school

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"schooladmin/internal/attendance"
	"schooladmin/internal/blob"
	"schooladmin/internal/calendar"
	"schooladmin/internal/docstore"
	"schooladmin/internal/ledger"
	"schooladmin/internal/results"
)

type tickingClock struct{ t time.Time }

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestService(t *testing.T) (*Service, docstore.Store) {
	t.Helper()
	store := docstore.NewMemory()
	clock := &tickingClock{t: time.Date(2026, time.May, 10, 9, 0, 0, 0, time.UTC)}
	blobs := blob.NewLocal(t.TempDir(), "http://files.test/files")
	svc := NewService(store, blobs, zap.NewNop(), WithClock(clock.Now), WithHashCost(bcrypt.MinCost))
	return svc, store
}

func admit(t *testing.T, svc *Service, name, roll, class string, fee, paid float64) Student {
	t.Helper()
	st, err := svc.CreateStudent(context.Background(), NewStudent{
		Name: name, RollNumber: roll, ClassName: class, MonthlyFee: fee, PaidAmount: paid,
	})
	require.NoError(t, err)
	return st
}

func TestCreateStudentSeedsFees(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	st, err := svc.CreateStudent(ctx, NewStudent{
		Name: "Asha", RollNumber: "1", ClassName: "5", MonthlyFee: 500, PaidAmount: 1700, Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, st.ID)

	stmt, err := svc.FeeStatement(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, stmt.Lines, 12)
	for i, line := range stmt.Lines {
		assert.Equal(t, calendar.AcademicMonths[i], line.Month)
		assert.Equal(t, 500.0, line.Entry.Total)
		assert.Equal(t, i < 3, line.Settled, line.Month)
	}
	assert.Equal(t, 1500.0, stmt.Collected)
	assert.Equal(t, 4500.0, stmt.Due)

	doc, err := store.Get(ctx, Students, st.ID)
	require.NoError(t, err)
	hash, _ := doc["passwordHash"].(string)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")))
}

func TestCreateStudentValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateStudent(context.Background(), NewStudent{ClassName: "5", MonthlyFee: -1})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "rollNumber", "monthlyFee"}, fields)
	assert.True(t, strings.HasPrefix(err.Error(), "fill required fields"))
}

func TestPayFee(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	st := admit(t, svc, "Asha", "1", "5", 500, 500)

	e, err := svc.PayFee(ctx, st.ID, "July")
	require.NoError(t, err)
	assert.Equal(t, 500.0, e.Paid)
	require.NotNil(t, e.PaidAt)

	_, err = svc.PayFee(ctx, st.ID, "July")
	assert.ErrorIs(t, err, ledger.ErrAlreadyPaid)
	_, err = svc.PayFee(ctx, st.ID, "April")
	assert.ErrorIs(t, err, ledger.ErrAlreadyPaid)

	_, err = svc.PayFee(ctx, st.ID, "Smarch")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, calendar.ErrUnknownMonth)

	fee := 650.0
	_, err = svc.UpdateStudent(ctx, st.ID, StudentProfile{MonthlyFee: &fee})
	require.NoError(t, err)
	e, err = svc.PayFee(ctx, st.ID, "August")
	require.NoError(t, err)
	assert.Equal(t, 650.0, e.Total)
	assert.Equal(t, 650.0, e.Paid)

	stmt, err := svc.FeeStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stmt.Lines[1].Entry.Total, "other months keep their total")
	assert.True(t, stmt.Lines[4].Settled)
	assert.Equal(t, 500.0+500.0+650.0, stmt.Collected)

	_, err = svc.PayFee(ctx, "missing", "May")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndSoftDeleteStudent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	st := admit(t, svc, "Asha", "2", "5", 500, 0)
	other := admit(t, svc, "Ravi", "10", "5", 500, 0)
	admit(t, svc, "Meena", "1", "6", 500, 0)
	require.NoError(t, svc.MarkStudentDay(ctx, st.ID, "May_day_3", "P"))

	phone := "98765"
	updated, err := svc.UpdateStudent(ctx, st.ID, StudentProfile{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "98765", updated.Phone)
	assert.Equal(t, "P", updated.Attendance["May_day_3"])

	fives, err := svc.ListStudents(ctx, "5")
	require.NoError(t, err)
	require.Len(t, fives, 2)
	assert.Equal(t, []string{"2", "10"}, []string{fives[0].RollNumber, fives[1].RollNumber})

	require.NoError(t, svc.DeleteStudent(ctx, other.ID))
	_, err = svc.GetStudent(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteStudent(ctx, other.ID), ErrNotFound)

	all, err := svc.ListStudents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	doc, err := store.Get(ctx, Students, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, doc["deletedAt"], "soft delete keeps the record")
}

func TestAttendance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := admit(t, svc, "Asha", "1", "5", 500, 0)
	b := admit(t, svc, "Ravi", "2", "5", 500, 0)
	c := admit(t, svc, "Meena", "1", "6", 500, 0)

	err := svc.MarkStudentDay(ctx, a.ID, "May_day_1", "X")
	assert.ErrorIs(t, err, attendance.ErrInvalidStatus)
	err = svc.MarkStudentDay(ctx, a.ID, "May-1", "P")
	assert.ErrorIs(t, err, calendar.ErrBadDayKey)

	n, err := svc.MarkClassDay(ctx, "5", "May_day_1", map[string]string{a.ID: "P", b.ID: "A"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.MarkClassDay(ctx, "5", "May_day_2", map[string]string{a.ID: "P", c.ID: "P"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	got, err := svc.GetStudent(ctx, a.ID)
	require.NoError(t, err)
	_, marked := got.Attendance["May_day_2"]
	assert.False(t, marked, "rejected register writes nothing")

	require.NoError(t, svc.MarkStudentDay(ctx, a.ID, "May_day_2", "A"))
	require.NoError(t, svc.MarkStudentDay(ctx, a.ID, "June_day_2", "P"))

	month, err := svc.StudentMonth(ctx, a.ID, "May", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, month.Present)
	assert.Equal(t, 1, month.Absent)
	assert.Equal(t, 31, month.DaysInMonth)
	assert.Equal(t, 2026, month.Year)
	assert.Len(t, month.Days, 2)

	absent, err := svc.AbsentStudents(ctx, "5", "May_day_1")
	require.NoError(t, err)
	require.Len(t, absent, 1)
	assert.Equal(t, b.ID, absent[0].ID)
}

func TestSalary(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	teacher, err := svc.CreateTeacher(ctx, NewTeacher{Name: "Mr. Rao", Subject: "Maths", Salary: 30000})
	require.NoError(t, err)

	for day := 1; day <= 15; day++ {
		require.NoError(t, svc.MarkTeacherDay(ctx, teacher.ID, calendar.DayKey("April", day), "P"))
	}
	require.NoError(t, svc.MarkTeacherDay(ctx, teacher.ID, calendar.DayKey("April", 16), "A"))

	q, err := svc.SalaryQuote(ctx, teacher.ID, "April", 2026)
	require.NoError(t, err)
	assert.Equal(t, 30, q.DaysInMonth)
	assert.Equal(t, 15, q.Present)
	assert.Equal(t, 1, q.Absent)
	assert.Equal(t, int64(15000), q.Amount)
	assert.Nil(t, q.Entry)

	e, err := svc.PaySalary(ctx, teacher.ID, "April", 2026)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, e.Total)
	assert.Equal(t, 15000.0, e.Paid)

	_, err = svc.PaySalary(ctx, teacher.ID, "April", 2026)
	assert.ErrorIs(t, err, ledger.ErrAlreadyPaid)

	q, err = svc.SalaryQuote(ctx, teacher.ID, "April", 2026)
	require.NoError(t, err)
	require.NotNil(t, q.Entry)
	assert.True(t, q.Settled)

	_, err = svc.SalaryQuote(ctx, "nobody", "April", 2026)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteTeacher(ctx, teacher.ID))
	assert.ErrorIs(t, svc.DeleteTeacher(ctx, teacher.ID), ErrNotFound)
}

func TestResultsAndMarksheet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	st := admit(t, svc, "Asha", "1", "5", 500, 0)

	_, err := svc.SaveResult(ctx, st.ID, "Midterm", []results.Row{{Subject: "Maths", Total: 100, Marks: 50}})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	_, err = svc.SaveResult(ctx, st.ID, results.Annual, nil)
	assert.ErrorAs(t, err, &verr)

	_, err = svc.SaveResult(ctx, st.ID, results.HalfYearly, []results.Row{
		{Subject: "G.K.", Total: 50, Marks: 40},
		{Subject: "Maths", Total: 100, Marks: 70},
	})
	require.NoError(t, err)
	saved, err := svc.SaveResult(ctx, st.ID, results.Annual, []results.Row{
		{Subject: "maths", Total: 100, Marks: 65},
		{Subject: "gk", Total: 50, Marks: 35},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", saved.StudentName)

	report, err := svc.ResultSummary(ctx, st.ID, results.Annual)
	require.NoError(t, err)
	assert.Equal(t, "66.67", report.Summary.Percentage)

	sheet, err := svc.Marksheet(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "G.K.", sheet.Rows[0].Subject)
	assert.Equal(t, 75.0, sheet.Rows[0].Marks)
	assert.Equal(t, 135.0, sheet.Rows[1].Marks)
	assert.Equal(t, 300.0, sheet.Summary.MaxTotal)

	listed, err := svc.ListResults(ctx, "5", results.Annual)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, svc.DeleteResult(ctx, st.ID, results.HalfYearly))
	sheet, err = svc.Marksheet(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sheet.Rows[0].HalfYearly.Total)
}

func TestHomeworkNoticesAndSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateHomework(ctx, Homework{ClassName: "5"}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	first, err := svc.CreateHomework(ctx, Homework{ClassName: "5", Title: "Fractions"}, nil)
	require.NoError(t, err)
	second, err := svc.CreateHomework(ctx, Homework{ClassName: "5", Title: "Decimals"},
		&Upload{Filename: "sheet 1.pdf", Body: strings.NewReader("pdf")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(second.AttachmentURL, "http://files.test/files/homework/"))
	assert.True(t, strings.HasSuffix(second.AttachmentURL, "_sheet_1.pdf"))

	hw, err := svc.ListHomework(ctx, "5")
	require.NoError(t, err)
	require.Len(t, hw, 2)
	assert.Equal(t, second.ID, hw[0].ID, "newest first")
	require.NoError(t, svc.DeleteHomework(ctx, first.ID))

	_, err = svc.CreateNotice(ctx, Notice{Title: "Holiday"}, nil)
	require.NoError(t, err)
	_, err = svc.CreateNotice(ctx, Notice{Title: "Trip", ClassName: "6"}, nil)
	require.NoError(t, err)
	notices, err := svc.ListNotices(ctx, "5")
	require.NoError(t, err)
	assert.Len(t, notices, 1)

	tt, err := svc.GetTimetable(ctx, "5")
	require.NoError(t, err)
	assert.Empty(t, tt.Exams)
	_, err = svc.SaveTimetable(ctx, "5", []TimetableEntry{{Date: "2026-09-01", Day: "Tuesday", Time: "9:00", Subject: "Maths"}})
	require.NoError(t, err)
	tt, err = svc.GetTimetable(ctx, "5")
	require.NoError(t, err)
	require.Len(t, tt.Exams, 1)
	assert.Equal(t, "Maths", tt.Exams[0].Subject)

	details, err := svc.SchoolDetails(ctx)
	require.NoError(t, err)
	assert.Empty(t, details.Name)
	_, err = svc.SaveSchoolDetails(ctx, SchoolDetails{Name: "Sunrise Public School", Email: "office@sunrise.test"})
	require.NoError(t, err)
	details, err = svc.SchoolDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Public School", details.Name)

	app, err := svc.CreateApplication(ctx, Application{StudentName: "Kiran", ClassName: "1", Phone: "123"})
	require.NoError(t, err)
	apps, err := svc.ListApplications(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	require.NoError(t, svc.DeleteApplication(ctx, app.ID))
}

func TestPhotoUpload(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	st := admit(t, svc, "Asha", "1", "5", 500, 0)

	url, err := svc.SetStudentPhoto(ctx, st.ID, Upload{Filename: "asha.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	got, err := svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.PhotoURL)

	_, err = svc.UploadPhoto(ctx, "secrets", Upload{Filename: "x.png", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, blob.ErrUnknownFolder)
	_, err = svc.SetTeacherPhoto(ctx, "missing", Upload{Filename: "x.png", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}
