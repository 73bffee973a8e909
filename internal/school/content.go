package school

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"schooladmin/internal/blob"
	"schooladmin/internal/docstore"
	"schooladmin/internal/metrics"
)

// CreateHomework stores a homework entry, uploading the attachment first when
// one is given. A failed write after a successful upload leaves the blob orphaned.
func (s *Service) CreateHomework(ctx context.Context, hw Homework, attachment *Upload) (Homework, error) {
	hw.ID = ""
	if err := check(hw); err != nil {
		return Homework{}, err
	}
	if attachment != nil {
		url, err := s.upload(ctx, blob.FolderHomework, *attachment)
		if err != nil {
			return Homework{}, err
		}
		hw.AttachmentURL = url
	}
	hw.CreatedAt = s.now().UTC()
	id, err := s.repo.create(ctx, Homeworks, hw, nil)
	if err != nil {
		s.log.Error("create homework", zap.String("class", hw.ClassName), zap.Error(err))
		return Homework{}, err
	}
	hw.ID = id
	return hw, nil
}

// ListHomework returns homework of class, newest first.
func (s *Service) ListHomework(ctx context.Context, class string) ([]Homework, error) {
	all, err := list[Homework](ctx, s.repo, Homeworks)
	if err != nil {
		return nil, err
	}
	out := make([]Homework, 0, len(all))
	for _, hw := range all {
		if class == "" || hw.ClassName == class {
			out = append(out, hw)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) DeleteHomework(ctx context.Context, id string) error {
	return s.repo.delete(ctx, Homeworks, id)
}

func (s *Service) CreateNotice(ctx context.Context, n Notice, attachment *Upload) (Notice, error) {
	n.ID = ""
	if err := check(n); err != nil {
		return Notice{}, err
	}
	if attachment != nil {
		url, err := s.upload(ctx, blob.FolderHomework, *attachment)
		if err != nil {
			return Notice{}, err
		}
		n.AttachmentURL = url
	}
	n.CreatedAt = s.now().UTC()
	id, err := s.repo.create(ctx, Notices, n, nil)
	if err != nil {
		s.log.Error("create notice", zap.Error(err))
		return Notice{}, err
	}
	n.ID = id
	return n, nil
}

// ListNotices returns notices for class plus school-wide ones, newest first.
// An empty class returns every notice.
func (s *Service) ListNotices(ctx context.Context, class string) ([]Notice, error) {
	all, err := list[Notice](ctx, s.repo, Notices)
	if err != nil {
		return nil, err
	}
	out := make([]Notice, 0, len(all))
	for _, n := range all {
		if class == "" || n.ClassName == "" || n.ClassName == class {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) DeleteNotice(ctx context.Context, id string) error {
	return s.repo.delete(ctx, Notices, id)
}

// GetTimetable returns the exam timetable of class, empty when none is saved.
func (s *Service) GetTimetable(ctx context.Context, class string) (Timetable, error) {
	if class == "" {
		return Timetable{}, invalid("className", errEmpty)
	}
	t, err := get[Timetable](ctx, s.repo, Timetables, class)
	if errors.Is(err, ErrNotFound) {
		return Timetable{ClassName: class, Exams: []TimetableEntry{}}, nil
	}
	if err != nil {
		return Timetable{}, err
	}
	t.ClassName = class
	return t, nil
}

// SaveTimetable replaces the timetable of class.
func (s *Service) SaveTimetable(ctx context.Context, class string, exams []TimetableEntry) (Timetable, error) {
	if class == "" {
		return Timetable{}, invalid("className", errEmpty)
	}
	if exams == nil {
		exams = []TimetableEntry{}
	}
	now := s.now().UTC()
	t := Timetable{ClassName: class, Exams: exams, UpdatedAt: &now}
	if err := check(t); err != nil {
		return Timetable{}, err
	}
	if err := s.repo.set(ctx, Timetables, class, t); err != nil {
		return Timetable{}, err
	}
	return t, nil
}

// SchoolDetails returns the letterhead; a zero value when never saved.
func (s *Service) SchoolDetails(ctx context.Context) (SchoolDetails, error) {
	d, err := get[SchoolDetails](ctx, s.repo, Settings, schoolDetailsID)
	if errors.Is(err, ErrNotFound) {
		return SchoolDetails{}, nil
	}
	return d, err
}

func (s *Service) SaveSchoolDetails(ctx context.Context, d SchoolDetails) (SchoolDetails, error) {
	if err := check(d); err != nil {
		return SchoolDetails{}, err
	}
	if err := s.repo.set(ctx, Settings, schoolDetailsID, d); err != nil {
		return SchoolDetails{}, err
	}
	return d, nil
}

func (s *Service) CreateApplication(ctx context.Context, a Application) (Application, error) {
	a.ID = ""
	if err := check(a); err != nil {
		return Application{}, err
	}
	a.CreatedAt = s.now().UTC()
	id, err := s.repo.create(ctx, Applications, a, nil)
	if err != nil {
		return Application{}, err
	}
	a.ID = id
	return a, nil
}

// ListApplications returns admission applications, newest first.
func (s *Service) ListApplications(ctx context.Context) ([]Application, error) {
	out, err := list[Application](ctx, s.repo, Applications)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) DeleteApplication(ctx context.Context, id string) error {
	return s.repo.delete(ctx, Applications, id)
}

// UploadPhoto stores a file under folder and returns its URL.
func (s *Service) UploadPhoto(ctx context.Context, folder string, up Upload) (string, error) {
	if !blob.ValidFolder(folder) {
		return "", invalid("folder", blob.ErrUnknownFolder)
	}
	return s.upload(ctx, folder, up)
}

// SetStudentPhoto uploads a photo and points the student at it.
func (s *Service) SetStudentPhoto(ctx context.Context, id string, up Upload) (string, error) {
	if _, err := s.repo.Student(ctx, id); err != nil {
		return "", err
	}
	return s.uploadThenSet(ctx, Students, blob.FolderStudents, id, up)
}

func (s *Service) SetTeacherPhoto(ctx context.Context, id string, up Upload) (string, error) {
	if _, err := s.repo.Teacher(ctx, id); err != nil {
		return "", err
	}
	return s.uploadThenSet(ctx, Teachers, blob.FolderTeachers, id, up)
}

func (s *Service) uploadThenSet(ctx context.Context, collection, folder, id string, up Upload) (string, error) {
	url, err := s.upload(ctx, folder, up)
	if err != nil {
		return "", err
	}
	if err := s.repo.update(ctx, collection, id, docstore.Set("photoURL", url)); err != nil {
		s.log.Warn("photo uploaded but record not updated",
			zap.String("collection", collection), zap.String("id", id), zap.String("url", url), zap.Error(err))
		return "", err
	}
	return url, nil
}

func (s *Service) upload(ctx context.Context, folder string, up Upload) (string, error) {
	if up.Body == nil || up.Filename == "" {
		return "", invalid("file", errEmpty)
	}
	url, err := s.blobs.Put(ctx, folder, up.Filename, up.Body)
	if err != nil {
		metrics.BlobUploads.WithLabelValues(folder, "error").Inc()
		s.log.Error("upload failed", zap.String("folder", folder), zap.String("file", up.Filename), zap.Error(err))
		return "", err
	}
	metrics.BlobUploads.WithLabelValues(folder, "ok").Inc()
	return url, nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }
