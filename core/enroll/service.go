package enroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound      = errors.New("enrollment not found")
	ErrAlreadyMarked = errors.New("attendance already marked for this class")
)

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
		CountEnrollmentsByCourse(ctx context.Context, courseID string) (int, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, studentID, courseID string) error
		DeleteEnrollmentsByCourse(ctx context.Context, courseID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Enroll enrolls a student in a course. Enrolling twice returns the existing enrollment.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	if enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID); err == nil {
		return enr, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Enrollment{}, err
	}

	enr := Enrollment{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
		Progress:   make(map[string]bool),
		Attendance: []string{},
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *Service) Get(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, studentID, courseID)
}

func (svc *Service) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	if _, err := svc.repo.GetEnrollment(ctx, studentID, courseID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByCourse(ctx, courseID)
}

func (svc *Service) CountByCourse(ctx context.Context, courseID string) (int, error) {
	return svc.repo.CountEnrollmentsByCourse(ctx, courseID)
}

// UpdateProgress records whether a recording has been watched.
func (svc *Service) UpdateProgress(ctx context.Context, studentID, courseID, recordingID string, watched bool) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.Progress == nil {
		enr.Progress = make(map[string]bool)
	}
	enr.Progress[recordingID] = watched
	return svc.repo.UpdateEnrollment(ctx, enr)
}

// MarkAttendance marks attendance for a class session; marking twice is a no-op
// reported via ErrAlreadyMarked.
func (svc *Service) MarkAttendance(ctx context.Context, studentID, courseID, classID string) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.Attended(classID) {
		return enr, ErrAlreadyMarked
	}
	enr.Attendance = append(enr.Attendance, classID)
	enr.AttendanceCount++
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *Service) Withdraw(ctx context.Context, studentID, courseID string) error {
	return svc.repo.DeleteEnrollment(ctx, studentID, courseID)
}

func (svc *Service) DeleteByCourse(ctx context.Context, courseID string) error {
	return svc.repo.DeleteEnrollmentsByCourse(ctx, courseID)
}
