package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/enroll"
	"github.com/gurujilabs/guruji/core/user"
)

func seedPublishedCourse(t *testing.T, app *testApp) (instructor user.User, crs course.Course) {
	t.Helper()
	ctx := context.Background()

	instructor = app.createUser(t, "inst1", "Dr. Rai", "rai", user.InstructorRoles)
	crs, err := app.courseSvc.Create(ctx, instructor.ID, course.NewCourse{
		Title:       "Intro to Numerical Linear Algebra",
		Description: "Matrix factorizations from scratch.",
	})
	require.NoError(t, err)
	crs, err = app.courseSvc.SetPublished(ctx, crs, true)
	require.NoError(t, err)
	return instructor, crs
}

func TestEnrollAPI_enroll(t *testing.T) {
	app := newTestApp(t)
	_, crs := seedPublishedCourse(t, app)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	token := app.getToken(t, student)

	rec := app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/enroll", token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var enr enroll.Enrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enr))
	assert.Equal(t, student.ID, enr.StudentID)
	assert.Equal(t, crs.ID, enr.CourseID)

	// unknown course
	rec = app.request(http.MethodPost, "/v1/courses/nope/enroll", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// unpublished courses cannot be enrolled in
	unpub, err := app.courseSvc.Create(context.Background(), "inst1", course.NewCourse{Title: "Draft", Description: "d"})
	require.NoError(t, err)
	rec = app.request(http.MethodPost, "/v1/courses/"+unpub.ID+"/enroll", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollAPI_attendanceFlow(t *testing.T) {
	app := newTestApp(t)
	instructor, crs := seedPublishedCourse(t, app)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	stdToken := app.getToken(t, student)
	instToken := app.getToken(t, instructor)

	rec := app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/enroll", stdToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	// attendance is closed; marking conflicts
	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/attendance", stdToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// only the course owner may toggle
	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/attendance/toggle", stdToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/attendance/toggle", instToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var status AttendanceStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Open)
	require.NotEmpty(t, status.ClassID)

	// student marks attendance
	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/attendance", stdToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var marked MarkAttendanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &marked))
	assert.True(t, marked.Marked)
	assert.Equal(t, 1, marked.AttendanceCount)

	// marking twice is a no-op
	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/attendance", stdToken)
	require.Equal(t, http.StatusOK, rec.Code)
	marked = MarkAttendanceResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &marked))
	assert.False(t, marked.Marked)
	assert.Equal(t, 1, marked.AttendanceCount)

	// status now reports marked
	rec = app.request(http.MethodGet, "/v1/courses/"+crs.ID+"/attendance", stdToken)
	require.Equal(t, http.StatusOK, rec.Code)
	status = AttendanceStatusResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Marked)

	// close the session
	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/attendance/toggle", instToken)
	require.Equal(t, http.StatusOK, rec.Code)
	status = AttendanceStatusResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Open)
}

func TestEnrollAPI_roster(t *testing.T) {
	app := newTestApp(t)
	instructor, crs := seedPublishedCourse(t, app)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)

	_, err := app.enrollSvc.Enroll(context.Background(), student.ID, crs.ID)
	require.NoError(t, err)

	rec := app.request(http.MethodGet, "/v1/courses/"+crs.ID+"/roster", app.getToken(t, student))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.request(http.MethodGet, "/v1/courses/"+crs.ID+"/roster", app.getToken(t, instructor))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []RosterEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, student.ID, entries[0].StudentID)
	assert.Equal(t, "Asha Gurung", entries[0].StudentName)
	assert.Equal(t, "asha@test.test", entries[0].StudentEmail)
}

func TestEnrollAPI_progress(t *testing.T) {
	app := newTestApp(t)
	_, crs := seedPublishedCourse(t, app)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	token := app.getToken(t, student)

	_, err := app.enrollSvc.Enroll(context.Background(), student.ID, crs.ID)
	require.NoError(t, err)

	rec := app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/progress", token,
		[]byte(`{"recording_id": "rec1", "watched": true}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var enr enroll.Enrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enr))
	assert.True(t, enr.Progress["rec1"])

	// missing recording id
	rec = app.request(http.MethodPost, "/v1/courses/"+crs.ID+"/progress", token, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrollAPI_queryMine(t *testing.T) {
	app := newTestApp(t)
	_, crs := seedPublishedCourse(t, app)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	token := app.getToken(t, student)

	rec := app.request(http.MethodGet, "/v1/enrollments/mine", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var enrs []enroll.Enrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrs))
	assert.Empty(t, enrs)

	_, err := app.enrollSvc.Enroll(context.Background(), student.ID, crs.ID)
	require.NoError(t, err)

	rec = app.request(http.MethodGet, "/v1/enrollments/mine", token)
	require.Equal(t, http.StatusOK, rec.Code)
	enrs = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrs))
	require.Len(t, enrs, 1)
	assert.Equal(t, crs.ID, enrs[0].CourseID)
}
