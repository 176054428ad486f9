package dummydb

import (
	"context"
	"sort"

	"github.com/gurujilabs/guruji/core/enroll"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enroll.Repository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr.AttendanceCount = len(enr.Attendance)
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.table {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var enrs []enroll.Enrollment
	for _, enr := range repo.db.table {
		if enr.StudentID == studentID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })
	return enrs, nil
}

func (repo *enrollmentRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var enrs []enroll.Enrollment
	for _, enr := range repo.db.table {
		if enr.CourseID == courseID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.Before(enrs[j].EnrolledAt) })
	return enrs, nil
}

func (repo *enrollmentRepository) CountEnrollmentsByCourse(ctx context.Context, courseID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, enr := range repo.db.table {
		if enr.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.ID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	enr.AttendanceCount = len(enr.Attendance)
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, courseID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, enr := range repo.db.table {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			delete(repo.db.table, id)
		}
	}
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollmentsByCourse(ctx context.Context, courseID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, enr := range repo.db.table {
		if enr.CourseID == courseID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
