package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core/certificate"
	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/user"
)

// seedCompletedCourse sets up an instructor, a completed course with one held
// class and an enrolled student who attended it.
func seedCompletedCourse(t *testing.T, app *testApp) (student user.User, crs course.Course) {
	t.Helper()
	ctx := context.Background()

	student = app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	instructor := app.createUser(t, "inst1", "Dr. Rai", "rai", user.InstructorRoles)

	crs, err := app.courseSvc.Create(ctx, instructor.ID, course.NewCourse{
		Title:       "Intro to Numerical Linear Algebra",
		Description: "Matrix factorizations from scratch.",
	})
	require.NoError(t, err)
	crs, err = app.courseSvc.SetPublished(ctx, crs, true)
	require.NoError(t, err)
	crs, err = app.courseSvc.ScheduleClass(ctx, crs, course.NewScheduledClass{
		Title:        "Week 1",
		StartsAt:     time.Now().Add(-24 * time.Hour),
		DurationMins: 60,
	}, nil)
	require.NoError(t, err)
	crs, err = app.courseSvc.SetCompleted(ctx, crs, true)
	require.NoError(t, err)

	_, err = app.enrollSvc.Enroll(ctx, student.ID, crs.ID)
	require.NoError(t, err)
	_, err = app.enrollSvc.MarkAttendance(ctx, student.ID, crs.ID, crs.Classes[0].EventID)
	require.NoError(t, err)
	return student, crs
}

func issueCert(t *testing.T, app *testApp, student user.User, crs course.Course) certificate.Certificate {
	t.Helper()

	cert, err := app.certSvc.Issue(context.Background(), certificate.NewCertificate{
		StudentID:       student.ID,
		CourseID:        crs.ID,
		StudentName:     student.Name,
		CourseTitle:     crs.Title,
		InstructorName:  "Dr. Rai",
		AttendanceCount: 1,
		TotalClasses:    1,
	})
	require.NoError(t, err)
	return cert
}

func TestCertificateAPI_generate(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	token := app.getToken(t, student)
	body := []byte(`{"course_id": "` + crs.ID + `"}`)

	// no token
	rec := app.request(http.MethodPost, "/v1/certificates/generate", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(http.MethodPost, "/v1/certificates/generate", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var cert certificate.Certificate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cert))
	assert.Equal(t, student.ID, cert.StudentID)
	assert.Equal(t, "Asha Gurung", cert.StudentName)
	assert.Equal(t, "Dr. Rai", cert.InstructorName)
	assert.Equal(t, 1, cert.AttendanceCount)
	assert.Equal(t, 1, cert.TotalClasses)
	assert.Equal(t, 100.0, cert.AttendancePercentage)
	assert.True(t, cert.IsValid)

	// generating again returns the same certificate
	rec = app.request(http.MethodPost, "/v1/certificates/generate", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var again certificate.Certificate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, cert.ID, again.ID)
	assert.Equal(t, cert.Code, again.Code)
}

func TestCertificateAPI_generate_notEligible(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	ctx := context.Background()

	// not enrolled
	other := app.createUser(t, "std2", "Bibek Karki", "bibek", user.StudentRoles)
	rec := app.request(http.MethodPost, "/v1/certificates/generate", app.getToken(t, other),
		[]byte(`{"course_id": "`+crs.ID+`"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown course
	rec = app.request(http.MethodPost, "/v1/certificates/generate", app.getToken(t, student),
		[]byte(`{"course_id": "nope"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// course not completed
	crs2, err := app.courseSvc.Create(ctx, "inst1", course.NewCourse{Title: "Ongoing", Description: "d"})
	require.NoError(t, err)
	_, err = app.enrollSvc.Enroll(ctx, student.ID, crs2.ID)
	require.NoError(t, err)
	rec = app.request(http.MethodPost, "/v1/certificates/generate", app.getToken(t, student),
		[]byte(`{"course_id": "`+crs2.ID+`"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCertificateAPI_verify(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	cert := issueCert(t, app, student, crs)

	rec := app.request(http.MethodGet, "/v1/certificates/verify/"+cert.Code, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res certificate.Verification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Valid)
	assert.Equal(t, cert.Code, res.Code)
	assert.Equal(t, "Asha Gurung", res.StudentName)

	// lookup is case-insensitive
	rec = app.request(http.MethodGet, "/v1/certificates/verify/"+strings.ToLower(cert.Code), "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = certificate.Verification{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Valid)

	// unknown code reports invalid rather than erroring
	rec = app.request(http.MethodGet, "/v1/certificates/verify/ZZZZ-ZZZZ-ZZZZ", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = certificate.Verification{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Valid)

	// malformed code is rejected before lookup
	rec = app.request(http.MethodGet, "/v1/certificates/verify/ab", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// invalidated certificate reports invalid
	require.NoError(t, app.certSvc.Invalidate(context.Background(), cert.ID))
	rec = app.request(http.MethodGet, "/v1/certificates/verify/"+cert.Code, "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = certificate.Verification{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Valid)
}

func TestCertificateAPI_image(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	cert := issueCert(t, app, student, crs)

	rec := app.request(http.MethodGet, "/v1/certificates/"+cert.Code+"/image", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = app.request(http.MethodGet, "/v1/certificates/ZZZZ-ZZZZ-ZZZZ/image", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// invalidated certificates do not render
	require.NoError(t, app.certSvc.Invalidate(context.Background(), cert.ID))
	rec = app.request(http.MethodGet, "/v1/certificates/"+cert.Code+"/image", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCertificateAPI_download(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	cert := issueCert(t, app, student, crs)

	rec := app.request(http.MethodGet, "/v1/certificates/"+cert.Code+"/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+cert.AttachmentFilename()+`"`,
		rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = app.request(http.MethodGet, "/v1/certificates/ZZZZ-ZZZZ-ZZZZ/download", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCertificateAPI_queryMine(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	token := app.getToken(t, student)

	rec := app.request(http.MethodGet, "/v1/certificates/mine", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var certs []certificate.Certificate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &certs))
	assert.Empty(t, certs)

	cert := issueCert(t, app, student, crs)

	rec = app.request(http.MethodGet, "/v1/certificates/mine", token)
	require.Equal(t, http.StatusOK, rec.Code)
	certs = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, cert.ID, certs[0].ID)

	rec = app.request(http.MethodGet, "/v1/certificates/mine", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCertificateAPI_getByCourse(t *testing.T) {
	app := newTestApp(t)
	student, crs := seedCompletedCourse(t, app)
	token := app.getToken(t, student)

	rec := app.request(http.MethodGet, "/v1/certificates/course/"+crs.ID, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	cert := issueCert(t, app, student, crs)

	rec = app.request(http.MethodGet, "/v1/certificates/course/"+crs.ID, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var got certificate.Certificate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, cert.ID, got.ID)
}
