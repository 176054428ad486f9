package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core/certificate"
)

type certificateRow struct {
	ID                   string    `db:"id"`
	StudentID            string    `db:"student_id"`
	CourseID             string    `db:"course_id"`
	Code                 string    `db:"code"`
	StudentName          string    `db:"student_name"`
	CourseTitle          string    `db:"course_title"`
	InstructorName       string    `db:"instructor_name"`
	AttendanceCount      int       `db:"attendance_count"`
	TotalClasses         int       `db:"total_classes"`
	AttendancePercentage float64   `db:"attendance_percentage"`
	IssuedAt             time.Time `db:"issued_at"`
	IsValid              bool      `db:"is_valid"`
}

func (r certificateRow) toCertificate() certificate.Certificate { return certificate.Certificate(r) }

func newCertificateRow(cert certificate.Certificate) certificateRow { return certificateRow(cert) }

type certificateRepository struct {
	db *sqlx.DB
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *sqlx.DB) certificate.Repository {
	return &certificateRepository{db: db}
}

func (repo *certificateRepository) CreateCertificate(ctx context.Context, cert certificate.Certificate) (certificate.Certificate, error) {
	q := `
INSERT INTO certificate (id, student_id, course_id, code, student_name, course_title, instructor_name,
                         attendance_count, total_classes, attendance_percentage, issued_at, is_valid)
VALUES (:id, :student_id, :course_id, :code, :student_name, :course_title, :instructor_name,
        :attendance_count, :total_classes, :attendance_percentage, :issued_at, :is_valid)`
	if _, err := repo.db.NamedExecContext(ctx, q, newCertificateRow(cert)); err != nil {
		return certificate.Certificate{}, errors.Wrap(err, "creating certificate")
	}
	return cert, nil
}

func (repo *certificateRepository) getCertificate(ctx context.Context, q string, args ...interface{}) (certificate.Certificate, error) {
	var row certificateRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return certificate.Certificate{}, certificate.ErrNotFound
		}
		return certificate.Certificate{}, errors.Wrap(err, "getting certificate")
	}
	return row.toCertificate(), nil
}

func (repo *certificateRepository) GetCertificateByCode(ctx context.Context, code string) (certificate.Certificate, error) {
	return repo.getCertificate(ctx, `SELECT * FROM certificate WHERE code = $1`, code)
}

func (repo *certificateRepository) GetCertificateForStudentAndCourse(ctx context.Context, studentID, courseID string) (certificate.Certificate, error) {
	q := `SELECT * FROM certificate WHERE student_id = $1 AND course_id = $2`
	return repo.getCertificate(ctx, q, studentID, courseID)
}

func (repo *certificateRepository) QueryCertificatesByStudent(ctx context.Context, studentID string) ([]certificate.Certificate, error) {
	var rows []certificateRow
	q := `SELECT * FROM certificate WHERE student_id = $1 ORDER BY issued_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying certificates")
	}
	certs := make([]certificate.Certificate, 0, len(rows))
	for _, row := range rows {
		certs = append(certs, row.toCertificate())
	}
	return certs, nil
}

func (repo *certificateRepository) InvalidateCertificate(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE certificate SET is_valid = FALSE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "invalidating certificate")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return certificate.ErrNotFound
	}
	return nil
}
