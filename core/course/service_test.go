package course_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core/course"
	meetsvc "github.com/gurujilabs/guruji/services/meet"
	dummydb "github.com/gurujilabs/guruji/storage/database/dummy"
)

func setup(t *testing.T) (*course.Service, *meetsvc.DummyMeetService) {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)
	meetSvc := meetsvc.NewDummyMeetService()
	return course.NewService(dummydb.NewCourseRepository(db), meetSvc), meetSvc
}

func createCourse(t *testing.T, svc *course.Service, instructorID string) course.Course {
	t.Helper()

	crs, err := svc.Create(context.Background(), instructorID, course.NewCourse{
		Title:       "Intro to Numerical Linear Algebra",
		Description: "Matrix factorizations from scratch.",
		Price:       50,
	})
	require.NoError(t, err)
	return crs
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)

	crs := createCourse(t, svc, "inst1")
	assert.NotEmpty(t, crs.ID)
	assert.Equal(t, "inst1", crs.InstructorID)
	assert.False(t, crs.IsPublished)
	assert.Empty(t, crs.Classes)

	got, err := svc.GetByID(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs.Title, got.Title)

	_, err = svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, course.ErrNotFound)
}

func TestService_QueryPublished(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	crs1 := createCourse(t, svc, "inst1")
	createCourse(t, svc, "inst2")

	published, err := svc.QueryPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	_, err = svc.SetPublished(ctx, crs1, true)
	require.NoError(t, err)

	published, err = svc.QueryPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, crs1.ID, published[0].ID)
}

func TestService_ScheduleClass(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	crs := createCourse(t, svc, "inst1")
	startsAt := time.Now().Add(24 * time.Hour).UTC()

	crs, err := svc.ScheduleClass(ctx, crs, course.NewScheduledClass{
		Title:        "Week 1: LU decomposition",
		StartsAt:     startsAt,
		DurationMins: 90,
	}, []string{"asha@test.test"})
	require.NoError(t, err)

	require.Len(t, crs.Classes, 1)
	sc := crs.Classes[0]
	assert.NotEmpty(t, sc.EventID)
	assert.NotEmpty(t, sc.MeetLink)
	assert.NotEmpty(t, sc.CalendarLink)
	assert.Equal(t, 90, sc.DurationMins)
	assert.True(t, sc.StartsAt.Equal(startsAt))
	assert.False(t, sc.IsCompleted)
}

func TestService_CancelClass(t *testing.T) {
	svc, meetSvc := setup(t)
	ctx := context.Background()

	crs := createCourse(t, svc, "inst1")
	crs, err := svc.ScheduleClass(ctx, crs, course.NewScheduledClass{
		Title:    "Week 1",
		StartsAt: time.Now().Add(24 * time.Hour),
	}, nil)
	require.NoError(t, err)
	eventID := crs.Classes[0].EventID

	_, err = svc.CancelClass(ctx, crs, "nope")
	assert.ErrorIs(t, err, course.ErrClassNotFound)

	crs, err = svc.CancelClass(ctx, crs, eventID)
	require.NoError(t, err)
	assert.Empty(t, crs.Classes)
	assert.Equal(t, []string{eventID}, meetSvc.Cancelled)
}

func TestService_MarkClassDone(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	crs := createCourse(t, svc, "inst1")
	crs, err := svc.ScheduleClass(ctx, crs, course.NewScheduledClass{
		Title:    "Week 1",
		StartsAt: time.Now().Add(24 * time.Hour),
	}, nil)
	require.NoError(t, err)

	crs, err = svc.MarkClassDone(ctx, crs, crs.Classes[0].EventID)
	require.NoError(t, err)
	assert.True(t, crs.Classes[0].IsCompleted)

	_, err = svc.MarkClassDone(ctx, crs, "nope")
	assert.ErrorIs(t, err, course.ErrClassNotFound)
}

func TestService_Attendance(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	crs := createCourse(t, svc, "inst1")

	crs, err := svc.OpenAttendance(ctx, crs)
	require.NoError(t, err)
	assert.True(t, crs.AttendanceOpen)
	assert.NotEmpty(t, crs.CurrentClassID)

	crs, err = svc.CloseAttendance(ctx, crs)
	require.NoError(t, err)
	assert.False(t, crs.AttendanceOpen)
	assert.Empty(t, crs.CurrentClassID)
}

func TestCompletedClassCount(t *testing.T) {
	now := time.Now().UTC()
	crs := course.Course{
		Classes: []course.ScheduledClass{
			{EventID: "past", StartsAt: now.Add(-24 * time.Hour)},
			{EventID: "flagged", StartsAt: now.Add(24 * time.Hour), IsCompleted: true},
			{EventID: "future", StartsAt: now.Add(48 * time.Hour)},
		},
	}
	assert.Equal(t, 2, crs.CompletedClassCount(now))
	assert.Equal(t, 3, crs.CompletedClassCount(now.Add(72*time.Hour)))
}

func TestService_Recordings(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	crs := createCourse(t, svc, "inst1")

	rec, err := svc.AddRecording(ctx, crs.ID, course.NewRecording{
		Title:     "Week 1 recording",
		DriveLink: "https://drive.google.com/file/d/abc",
		Duration:  3600,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.RecordedAt.IsZero())

	recs, err := svc.QueryRecordings(ctx, crs.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	require.NoError(t, svc.DeleteRecording(ctx, rec.ID))
	recs, err = svc.QueryRecordings(ctx, crs.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestService_Notes(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	crs := createCourse(t, svc, "inst1")

	note, err := svc.AddNote(ctx, crs.ID, course.NewNote{
		Title:     "Week 1 notes",
		DriveLink: "https://drive.google.com/file/d/def",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)

	notes, err := svc.QueryNotes(ctx, crs.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	require.NoError(t, svc.DeleteNote(ctx, note.ID))
	notes, err = svc.QueryNotes(ctx, crs.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
