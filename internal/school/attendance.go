package school

import (
	"context"
	"sort"
	"strings"

	"schooladmin/internal/attendance"
	"schooladmin/internal/calendar"
	"schooladmin/internal/docstore"
	"schooladmin/internal/metrics"
)

// Attendance entity labels.
const (
	entityStudent = "student"
	entityTeacher = "teacher"
)

// MonthAttendance is one entity's attendance for a month.
type MonthAttendance struct {
	Month       string            `json:"month"`
	Year        int               `json:"year"`
	DaysInMonth int               `json:"daysInMonth"`
	Present     int               `json:"present"`
	Absent      int               `json:"absent"`
	Days        map[string]string `json:"days"`
}

func parseMark(dayKey, status string) (attendance.Status, error) {
	if _, _, err := calendar.ParseDayKey(dayKey); err != nil {
		return "", invalid("dayKey", err)
	}
	st, err := attendance.ParseStatus(status)
	if err != nil {
		return "", invalid("status", err)
	}
	return st, nil
}

// MarkStudentDay sets one attendance mark on an active student.
func (s *Service) MarkStudentDay(ctx context.Context, id, dayKey, status string) error {
	st, err := parseMark(dayKey, status)
	if err != nil {
		return err
	}
	if _, err := s.repo.Student(ctx, id); err != nil {
		return err
	}
	if err := s.repo.update(ctx, Students, id, docstore.Set(attendance.FieldPath(dayKey), string(st))); err != nil {
		return err
	}
	metrics.AttendanceMarks.WithLabelValues(entityStudent, string(st)).Inc()
	return nil
}

func (s *Service) MarkTeacherDay(ctx context.Context, id, dayKey, status string) error {
	st, err := parseMark(dayKey, status)
	if err != nil {
		return err
	}
	if err := s.repo.update(ctx, Teachers, id, docstore.Set(attendance.FieldPath(dayKey), string(st))); err != nil {
		return err
	}
	metrics.AttendanceMarks.WithLabelValues(entityTeacher, string(st)).Inc()
	return nil
}

// MarkClassDay records a register for one class and day. Every mark is
// checked before the first write; students outside the class are rejected.
// Writes are per student and not transactional together.
func (s *Service) MarkClassDay(ctx context.Context, class, dayKey string, marks map[string]string) (int, error) {
	if class == "" {
		return 0, invalid("className", errEmpty)
	}
	roster, err := s.ListStudents(ctx, class)
	if err != nil {
		return 0, err
	}
	inClass := make(map[string]bool, len(roster))
	for _, st := range roster {
		inClass[st.ID] = true
	}
	ids := make([]string, 0, len(marks))
	parsed := make(map[string]attendance.Status, len(marks))
	for id, status := range marks {
		st, err := parseMark(dayKey, status)
		if err != nil {
			return 0, err
		}
		if !inClass[id] {
			return 0, invalid("marks."+id, errNotInClass)
		}
		parsed[id] = st
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		if err := s.repo.update(ctx, Students, id, docstore.Set(attendance.FieldPath(dayKey), string(parsed[id]))); err != nil {
			return i, err
		}
		metrics.AttendanceMarks.WithLabelValues(entityStudent, string(parsed[id])).Inc()
	}
	return len(ids), nil
}

func (s *Service) monthAttendance(marks attendance.Marks, month string, year int) (MonthAttendance, error) {
	if year == 0 {
		year = calendar.AcademicYear(s.now())
	}
	days, err := calendar.DaysInMonth(year, month)
	if err != nil {
		return MonthAttendance{}, invalid("month", err)
	}
	tally := attendance.Count(marks, month)
	out := MonthAttendance{
		Month:       month,
		Year:        year,
		DaysInMonth: days,
		Present:     tally.Present,
		Absent:      tally.Absent,
		Days:        map[string]string{},
	}
	prefix := calendar.MonthPrefix(month)
	for k, v := range marks {
		if strings.HasPrefix(k, prefix) {
			out.Days[k] = v
		}
	}
	return out, nil
}

// StudentMonth tallies a student's marks for month. year is the academic
// start year; zero means the current one.
func (s *Service) StudentMonth(ctx context.Context, id, month string, year int) (MonthAttendance, error) {
	st, err := s.repo.Student(ctx, id)
	if err != nil {
		return MonthAttendance{}, err
	}
	return s.monthAttendance(st.Attendance, month, year)
}

func (s *Service) TeacherMonth(ctx context.Context, id, month string, year int) (MonthAttendance, error) {
	t, err := s.repo.Teacher(ctx, id)
	if err != nil {
		return MonthAttendance{}, err
	}
	return s.monthAttendance(t.Attendance, month, year)
}

// AbsentStudents lists the students of class marked absent on dayKey. An
// empty class searches every class.
func (s *Service) AbsentStudents(ctx context.Context, class, dayKey string) ([]Student, error) {
	if _, _, err := calendar.ParseDayKey(dayKey); err != nil {
		return nil, invalid("dayKey", err)
	}
	roster, err := s.ListStudents(ctx, class)
	if err != nil {
		return nil, err
	}
	out := []Student{}
	for _, st := range roster {
		if status, ok := st.Attendance.Status(dayKey); ok && status == attendance.Absent {
			out = append(out, st)
		}
	}
	return out, nil
}
