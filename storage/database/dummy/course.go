package dummydb

import (
	"context"
	"sort"

	"github.com/gurujilabs/guruji/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryPublishedCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, crs := range repo.db.table {
		if crs.IsPublished {
			courses = append(courses, *crs)
		}
	}
	sortCourses(courses)
	return courses, nil
}

func (repo *courseRepository) QueryCoursesByInstructor(ctx context.Context, instructorID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var courses []course.Course
	for _, crs := range repo.db.table {
		if crs.InstructorID == instructorID {
			courses = append(courses, *crs)
		}
	}
	sortCourses(courses)
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, id)
	for recID, rec := range repo.db.recordings {
		if rec.CourseID == id {
			delete(repo.db.recordings, recID)
		}
	}
	for noteID, note := range repo.db.notes {
		if note.CourseID == id {
			delete(repo.db.notes, noteID)
		}
	}
	return nil
}

func (repo *courseRepository) CreateRecording(ctx context.Context, rec course.Recording) (course.Recording, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.recordings[rec.ID] = &rec
	return rec, nil
}

func (repo *courseRepository) GetRecordingByID(ctx context.Context, id string) (course.Recording, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.recordings[id]; ok {
		return *rec, nil
	}
	return course.Recording{}, course.ErrRecordingNotFound
}

func (repo *courseRepository) QueryRecordingsByCourse(ctx context.Context, courseID string) ([]course.Recording, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []course.Recording
	for _, rec := range repo.db.recordings {
		if rec.CourseID == courseID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].RecordedAt.After(recs[j].RecordedAt) })
	return recs, nil
}

func (repo *courseRepository) DeleteRecording(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.recordings, id)
	return nil
}

func (repo *courseRepository) CreateNote(ctx context.Context, note course.Note) (course.Note, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.notes[note.ID] = &note
	return note, nil
}

func (repo *courseRepository) GetNoteByID(ctx context.Context, id string) (course.Note, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if note, ok := repo.db.notes[id]; ok {
		return *note, nil
	}
	return course.Note{}, course.ErrNoteNotFound
}

func (repo *courseRepository) QueryNotesByCourse(ctx context.Context, courseID string) ([]course.Note, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var notes []course.Note
	for _, note := range repo.db.notes {
		if note.CourseID == courseID {
			notes = append(notes, *note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes, nil
}

func (repo *courseRepository) DeleteNote(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.notes, id)
	return nil
}

func sortCourses(courses []course.Course) {
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
}
