package enroll_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core/enroll"
	dummydb "github.com/gurujilabs/guruji/storage/database/dummy"
)

func setup(t *testing.T) *enroll.Service {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)
	return enroll.NewService(dummydb.NewEnrollmentRepository(db))
}

func TestService_Enroll(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	enr, err := svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)
	assert.NotEmpty(t, enr.ID)
	assert.Equal(t, "std1", enr.StudentID)
	assert.Equal(t, "crs1", enr.CourseID)
	assert.False(t, enr.EnrolledAt.IsZero())
	assert.Empty(t, enr.Attendance)
	assert.Zero(t, enr.AttendanceCount)

	// enrolling again returns the existing enrollment
	again, err := svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)
	assert.Equal(t, enr.ID, again.ID)

	count, err := svc.CountByCourse(ctx, "crs1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_IsEnrolled(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	ok, err := svc.IsEnrolled(ctx, "std1", "crs1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)

	ok, err = svc.IsEnrolled(ctx, "std1", "crs1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_UpdateProgress(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)

	enr, err := svc.UpdateProgress(ctx, "std1", "crs1", "rec1", true)
	require.NoError(t, err)
	assert.True(t, enr.Progress["rec1"])

	enr, err = svc.UpdateProgress(ctx, "std1", "crs1", "rec1", false)
	require.NoError(t, err)
	assert.False(t, enr.Progress["rec1"])

	_, err = svc.UpdateProgress(ctx, "std1", "nope", "rec1", true)
	assert.ErrorIs(t, err, enroll.ErrNotFound)
}

func TestService_MarkAttendance(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)

	enr, err := svc.MarkAttendance(ctx, "std1", "crs1", "evt1")
	require.NoError(t, err)
	assert.Equal(t, []string{"evt1"}, enr.Attendance)
	assert.Equal(t, 1, enr.AttendanceCount)
	assert.True(t, enr.Attended("evt1"))

	// marking twice reports ErrAlreadyMarked with the current enrollment
	enr, err = svc.MarkAttendance(ctx, "std1", "crs1", "evt1")
	assert.ErrorIs(t, err, enroll.ErrAlreadyMarked)
	assert.Equal(t, 1, enr.AttendanceCount)

	enr, err = svc.MarkAttendance(ctx, "std1", "crs1", "evt2")
	require.NoError(t, err)
	assert.Equal(t, 2, enr.AttendanceCount)
}

func TestService_Withdraw(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "std2", "crs1")
	require.NoError(t, err)

	require.NoError(t, svc.Withdraw(ctx, "std1", "crs1"))

	ok, err := svc.IsEnrolled(ctx, "std1", "crs1")
	require.NoError(t, err)
	assert.False(t, ok)

	enrs, err := svc.QueryByCourse(ctx, "crs1")
	require.NoError(t, err)
	assert.Len(t, enrs, 1)
}

func TestService_DeleteByCourse(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "std1", "crs1")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "std2", "crs1")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "std1", "crs2")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByCourse(ctx, "crs1"))

	count, err := svc.CountByCourse(ctx, "crs1")
	require.NoError(t, err)
	assert.Zero(t, count)

	enrs, err := svc.QueryByStudent(ctx, "std1")
	require.NoError(t, err)
	assert.Len(t, enrs, 1)
}
