package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core/course"
)

type courseRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	InstructorID   string         `db:"instructor_id"`
	Thumbnail      string         `db:"thumbnail"`
	Price          float64        `db:"price"`
	IsPublished    bool           `db:"is_published"`
	IsCompleted    bool           `db:"is_completed"`
	AttendanceOpen bool           `db:"attendance_open"`
	CurrentClassID string         `db:"current_class_id"`
	Classes        types.JSONText `db:"classes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r courseRow) toCourse() (course.Course, error) {
	crs := course.Course{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		InstructorID:   r.InstructorID,
		Thumbnail:      r.Thumbnail,
		Price:          r.Price,
		IsPublished:    r.IsPublished,
		IsCompleted:    r.IsCompleted,
		AttendanceOpen: r.AttendanceOpen,
		CurrentClassID: r.CurrentClassID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if err := json.Unmarshal(r.Classes, &crs.Classes); err != nil {
		return course.Course{}, errors.Wrap(err, "decoding scheduled classes")
	}
	return crs, nil
}

func newCourseRow(crs course.Course) (courseRow, error) {
	classes := crs.Classes
	if classes == nil {
		classes = []course.ScheduledClass{}
	}
	data, err := json.Marshal(classes)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "encoding scheduled classes")
	}
	return courseRow{
		ID:             crs.ID,
		Title:          crs.Title,
		Description:    crs.Description,
		InstructorID:   crs.InstructorID,
		Thumbnail:      crs.Thumbnail,
		Price:          crs.Price,
		IsPublished:    crs.IsPublished,
		IsCompleted:    crs.IsCompleted,
		AttendanceOpen: crs.AttendanceOpen,
		CurrentClassID: crs.CurrentClassID,
		Classes:        data,
		CreatedAt:      crs.CreatedAt,
		UpdatedAt:      crs.UpdatedAt,
	}, nil
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row, err := newCourseRow(crs)
	if err != nil {
		return course.Course{}, err
	}
	q := `
INSERT INTO course (id, title, description, instructor_id, thumbnail, price, is_published,
                    is_completed, attendance_open, current_class_id, classes, created_at, updated_at)
VALUES (:id, :title, :description, :instructor_id, :thumbnail, :price, :is_published,
        :is_completed, :attendance_open, :current_class_id, :classes, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse()
}

func (repo *courseRepository) QueryPublishedCourses(ctx context.Context) ([]course.Course, error) {
	return repo.queryCourses(ctx, `SELECT * FROM course WHERE is_published ORDER BY created_at DESC`)
}

func (repo *courseRepository) QueryCoursesByInstructor(ctx context.Context, instructorID string) ([]course.Course, error) {
	return repo.queryCourses(ctx, `SELECT * FROM course WHERE instructor_id = $1 ORDER BY created_at DESC`, instructorID)
}

func (repo *courseRepository) queryCourses(ctx context.Context, q string, args ...interface{}) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		crs, err := row.toCourse()
		if err != nil {
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row, err := newCourseRow(crs)
	if err != nil {
		return course.Course{}, err
	}
	q := `
UPDATE course
SET title = :title, description = :description, thumbnail = :thumbnail, price = :price,
    is_published = :is_published, is_completed = :is_completed, attendance_open = :attendance_open,
    current_class_id = :current_class_id, classes = :classes, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo *courseRepository) CreateRecording(ctx context.Context, rec course.Recording) (course.Recording, error) {
	q := `
INSERT INTO recording (id, course_id, title, drive_file_id, drive_link, duration, recorded_at, created_at)
VALUES (:id, :course_id, :title, :drive_file_id, :drive_link, :duration, :recorded_at, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newRecordingRow(rec)); err != nil {
		return course.Recording{}, errors.Wrap(err, "creating recording")
	}
	return rec, nil
}

func (repo *courseRepository) GetRecordingByID(ctx context.Context, id string) (course.Recording, error) {
	var row recordingRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM recording WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Recording{}, course.ErrRecordingNotFound
		}
		return course.Recording{}, errors.Wrap(err, "getting recording")
	}
	return row.toRecording(), nil
}

func (repo *courseRepository) QueryRecordingsByCourse(ctx context.Context, courseID string) ([]course.Recording, error) {
	var rows []recordingRow
	q := `SELECT * FROM recording WHERE course_id = $1 ORDER BY recorded_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying recordings")
	}
	recs := make([]course.Recording, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toRecording())
	}
	return recs, nil
}

func (repo *courseRepository) DeleteRecording(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM recording WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting recording")
	}
	return nil
}

func (repo *courseRepository) CreateNote(ctx context.Context, note course.Note) (course.Note, error) {
	q := `
INSERT INTO note (id, course_id, title, drive_link, description, created_at)
VALUES (:id, :course_id, :title, :drive_link, :description, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newNoteRow(note)); err != nil {
		return course.Note{}, errors.Wrap(err, "creating note")
	}
	return note, nil
}

func (repo *courseRepository) GetNoteByID(ctx context.Context, id string) (course.Note, error) {
	var row noteRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM note WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Note{}, course.ErrNoteNotFound
		}
		return course.Note{}, errors.Wrap(err, "getting note")
	}
	return row.toNote(), nil
}

func (repo *courseRepository) QueryNotesByCourse(ctx context.Context, courseID string) ([]course.Note, error) {
	var rows []noteRow
	q := `SELECT * FROM note WHERE course_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	notes := make([]course.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, row.toNote())
	}
	return notes, nil
}

func (repo *courseRepository) DeleteNote(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM note WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return nil
}

type recordingRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	DriveFileID string    `db:"drive_file_id"`
	DriveLink   string    `db:"drive_link"`
	Duration    int       `db:"duration"`
	RecordedAt  time.Time `db:"recorded_at"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r recordingRow) toRecording() course.Recording { return course.Recording(r) }

func newRecordingRow(rec course.Recording) recordingRow { return recordingRow(rec) }

type noteRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	DriveLink   string    `db:"drive_link"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r noteRow) toNote() course.Note { return course.Note(r) }

func newNoteRow(note course.Note) noteRow { return noteRow(note) }
