package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core/enroll"
)

type enrollmentRow struct {
	ID         string         `db:"id"`
	StudentID  string         `db:"student_id"`
	CourseID   string         `db:"course_id"`
	EnrolledAt time.Time      `db:"enrolled_at"`
	Progress   types.JSONText `db:"progress"`
	Attendance pq.StringArray `db:"attendance"`
}

func (r enrollmentRow) toEnrollment() (enroll.Enrollment, error) {
	enr := enroll.Enrollment{
		ID:              r.ID,
		StudentID:       r.StudentID,
		CourseID:        r.CourseID,
		EnrolledAt:      r.EnrolledAt,
		Attendance:      r.Attendance,
		AttendanceCount: len(r.Attendance),
	}
	if err := json.Unmarshal(r.Progress, &enr.Progress); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "decoding progress")
	}
	return enr, nil
}

func newEnrollmentRow(enr enroll.Enrollment) (enrollmentRow, error) {
	progress := enr.Progress
	if progress == nil {
		progress = map[string]bool{}
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return enrollmentRow{}, errors.Wrap(err, "encoding progress")
	}
	attendance := enr.Attendance
	if attendance == nil {
		attendance = []string{}
	}
	return enrollmentRow{
		ID:         enr.ID,
		StudentID:  enr.StudentID,
		CourseID:   enr.CourseID,
		EnrolledAt: enr.EnrolledAt,
		Progress:   data,
		Attendance: pq.StringArray(attendance),
	}, nil
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enroll.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	row, err := newEnrollmentRow(enr)
	if err != nil {
		return enroll.Enrollment{}, err
	}
	q := `
INSERT INTO enrollment (id, student_id, course_id, enrolled_at, progress, attendance)
VALUES (:id, :student_id, :course_id, :enrolled_at, :progress, :attendance)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (enroll.Enrollment, error) {
	var row enrollmentRow
	q := `SELECT * FROM enrollment WHERE student_id = $1 AND course_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return enroll.Enrollment{}, enroll.ErrNotFound
		}
		return enroll.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return row.toEnrollment()
}

func (repo *enrollmentRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]enroll.Enrollment, error) {
	return repo.queryEnrollments(ctx, `SELECT * FROM enrollment WHERE student_id = $1 ORDER BY enrolled_at DESC`, studentID)
}

func (repo *enrollmentRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]enroll.Enrollment, error) {
	return repo.queryEnrollments(ctx, `SELECT * FROM enrollment WHERE course_id = $1 ORDER BY enrolled_at`, courseID)
}

func (repo *enrollmentRepository) queryEnrollments(ctx context.Context, q string, args ...interface{}) ([]enroll.Enrollment, error) {
	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enroll.Enrollment, 0, len(rows))
	for _, row := range rows {
		enr, err := row.toEnrollment()
		if err != nil {
			return nil, err
		}
		enrs = append(enrs, enr)
	}
	return enrs, nil
}

func (repo *enrollmentRepository) CountEnrollmentsByCourse(ctx context.Context, courseID string) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM enrollment WHERE course_id = $1`
	if err := repo.db.GetContext(ctx, &count, q, courseID); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	row, err := newEnrollmentRow(enr)
	if err != nil {
		return enroll.Enrollment{}, err
	}
	q := `UPDATE enrollment SET progress = :progress, attendance = :attendance WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	enr.AttendanceCount = len(enr.Attendance)
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, courseID string) error {
	q := `DELETE FROM enrollment WHERE student_id = $1 AND course_id = $2`
	if _, err := repo.db.ExecContext(ctx, q, studentID, courseID); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollmentsByCourse(ctx context.Context, courseID string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM enrollment WHERE course_id = $1`, courseID); err != nil {
		return errors.Wrap(err, "deleting enrollments")
	}
	return nil
}
