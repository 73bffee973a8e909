// Package school implements the admin console's record keeping: students,
// teachers, attendance, fees, salaries, results and class content.
package school

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"schooladmin/internal/blob"
	"schooladmin/internal/docstore"
	"schooladmin/internal/ledger"
)

// Service wires the console actions to the record and blob stores.
type Service struct {
	repo     *Repository
	blobs    blob.Store
	log      *zap.Logger
	now      func() time.Time
	hashCost int
}

// Option adjusts a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHashCost sets the bcrypt cost for student and teacher logins.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(store docstore.Store, blobs blob.Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     NewRepository(store),
		blobs:    blobs,
		log:      log,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Repository returns the typed repository backing the service.
func (s *Service) Repository() *Repository { return s.repo }

func (s *Service) credentials(password string) (docstore.Document, error) {
	if password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return docstore.Document{"passwordHash": string(hash)}, nil
}

// CreateStudent admits a student and seeds the twelve-month fee ledger.
func (s *Service) CreateStudent(ctx context.Context, in NewStudent) (Student, error) {
	if err := check(in); err != nil {
		return Student{}, err
	}
	now := s.now().UTC()
	st := Student{
		Name:        in.Name,
		RollNumber:  in.RollNumber,
		ClassName:   in.ClassName,
		FatherName:  in.FatherName,
		MotherName:  in.MotherName,
		DateOfBirth: in.DateOfBirth,
		Phone:       in.Phone,
		Address:     in.Address,
		PhotoURL:    in.PhotoURL,
		LoginID:     in.LoginID,
		MonthlyFee:  in.MonthlyFee,
		Fees:        ledger.Seed(in.MonthlyFee, in.PaidAmount, now),
		CreatedAt:   now,
	}
	extra, err := s.credentials(in.Password)
	if err != nil {
		return Student{}, err
	}
	id, err := s.repo.create(ctx, Students, st, extra)
	if err != nil {
		s.log.Error("create student", zap.String("class", in.ClassName), zap.Error(err))
		return Student{}, err
	}
	st.ID = id
	return st, nil
}

func (s *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return s.repo.Student(ctx, id)
}

// ListStudents returns active students, optionally of one class, ordered by
// class then roll number.
func (s *Service) ListStudents(ctx context.Context, class string) ([]Student, error) {
	all, err := s.repo.ActiveStudents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Student, 0, len(all))
	for _, st := range all {
		if class == "" || st.ClassName == class {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClassName != out[j].ClassName {
			return out[i].ClassName < out[j].ClassName
		}
		return rollLess(out[i].RollNumber, out[j].RollNumber)
	})
	return out, nil
}

// rollLess orders numeric roll numbers numerically and the rest lexically.
func rollLess(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return x < y
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// UpdateStudent writes only the profile fields that are set.
func (s *Service) UpdateStudent(ctx context.Context, id string, p StudentProfile) (Student, error) {
	if err := check(p); err != nil {
		return Student{}, err
	}
	if _, err := s.repo.Student(ctx, id); err != nil {
		return Student{}, err
	}
	fields := profileFields(map[string]any{
		"name":       p.Name,
		"rollNumber": p.RollNumber,
		"className":  p.ClassName,
		"fatherName": p.FatherName,
		"motherName": p.MotherName,
		"dob":        p.DateOfBirth,
		"phone":      p.Phone,
		"address":    p.Address,
		"photoURL":   p.PhotoURL,
		"loginId":    p.LoginID,
		"monthlyFee": p.MonthlyFee,
	})
	if len(fields) > 0 {
		if err := s.repo.update(ctx, Students, id, fields...); err != nil {
			return Student{}, err
		}
	}
	return s.repo.Student(ctx, id)
}

// DeleteStudent stamps deletedAt; the record stays for results and receipts.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if _, err := s.repo.Student(ctx, id); err != nil {
		return err
	}
	return s.repo.update(ctx, Students, id, docstore.Set("deletedAt", s.now().UTC()))
}

func (s *Service) CreateTeacher(ctx context.Context, in NewTeacher) (Teacher, error) {
	if err := check(in); err != nil {
		return Teacher{}, err
	}
	t := Teacher{
		Name:          in.Name,
		Subject:       in.Subject,
		Phone:         in.Phone,
		Address:       in.Address,
		Qualification: in.Qualification,
		Salary:        in.Salary,
		PhotoURL:      in.PhotoURL,
		LoginID:       in.LoginID,
		CreatedAt:     s.now().UTC(),
	}
	extra, err := s.credentials(in.Password)
	if err != nil {
		return Teacher{}, err
	}
	id, err := s.repo.create(ctx, Teachers, t, extra)
	if err != nil {
		s.log.Error("create teacher", zap.Error(err))
		return Teacher{}, err
	}
	t.ID = id
	return t, nil
}

func (s *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return s.repo.Teacher(ctx, id)
}

// ListTeachers returns every teacher ordered by name.
func (s *Service) ListTeachers(ctx context.Context) ([]Teacher, error) {
	out, err := s.repo.Teachers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) UpdateTeacher(ctx context.Context, id string, p TeacherProfile) (Teacher, error) {
	if err := check(p); err != nil {
		return Teacher{}, err
	}
	fields := profileFields(map[string]any{
		"name":          p.Name,
		"subject":       p.Subject,
		"phone":         p.Phone,
		"address":       p.Address,
		"qualification": p.Qualification,
		"salary":        p.Salary,
		"photoURL":      p.PhotoURL,
		"loginId":       p.LoginID,
	})
	if len(fields) > 0 {
		if err := s.repo.update(ctx, Teachers, id, fields...); err != nil {
			return Teacher{}, err
		}
	}
	return s.repo.Teacher(ctx, id)
}

// DeleteTeacher removes the teacher document.
func (s *Service) DeleteTeacher(ctx context.Context, id string) error {
	return s.repo.delete(ctx, Teachers, id)
}

// profileFields turns the non-nil pointers of a profile edit into field
// commands, in key order.
func profileFields(values map[string]any) []docstore.Field {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var fields []docstore.Field
	for _, k := range keys {
		switch v := values[k].(type) {
		case *string:
			if v != nil {
				fields = append(fields, docstore.Set(k, *v))
			}
		case *float64:
			if v != nil {
				fields = append(fields, docstore.Set(k, *v))
			}
		}
	}
	return fields
}
