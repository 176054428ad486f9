package certificate_test

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/certificate"
	emailsvc "github.com/gurujilabs/guruji/services/email"
	dummydb "github.com/gurujilabs/guruji/storage/database/dummy"
)

var codeFormat = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func setup(t *testing.T) *certificate.Service {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{
		Debug:            true,
		AppName:          "Guruji",
		DefaultFromEmail: mail.Address{Name: "Guruji", Address: "noreply@localhost"},
	}
	renderer := certificate.NewRenderer(core.CertificateConfig{})
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	return certificate.NewService(dummydb.NewCertificateRepository(db), renderer, mailSvc, conf)
}

func newCert(studentID, courseID string) certificate.NewCertificate {
	return certificate.NewCertificate{
		StudentID:       studentID,
		CourseID:        courseID,
		StudentName:     "Asha Gurung",
		CourseTitle:     "Intro to Numerical Linear Algebra",
		InstructorName:  "Dr. Rai",
		AttendanceCount: 7,
		TotalClasses:    9,
	}
}

func TestService_Issue(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cert, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)

	assert.NotEmpty(t, cert.ID)
	assert.Regexp(t, codeFormat, cert.Code)
	assert.True(t, cert.IsValid)
	assert.False(t, cert.IssuedAt.IsZero())
	assert.Equal(t, 7, cert.AttendanceCount)
	assert.Equal(t, 9, cert.TotalClasses)
	assert.Equal(t, 77.8, cert.AttendancePercentage) // 7/9 rounded to 1 decimal
}

func TestService_Issue_idempotent(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)

	again, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.Code, again.Code)

	other, err := svc.Issue(ctx, newCert("std1", "crs2"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	assert.NotEqual(t, first.Code, other.Code)
}

func TestService_GetByCode_caseInsensitive(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cert, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)

	got, err := svc.GetByCode(ctx, " "+strings.ToLower(cert.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, cert.ID, got.ID)

	_, err = svc.GetByCode(ctx, "ZZZZ-ZZZZ-ZZZZ")
	assert.ErrorIs(t, err, certificate.ErrNotFound)
}

func TestService_Verify(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cert, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)

	res, err := svc.Verify(ctx, cert.Code)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, cert.ID, res.ID)

	require.NoError(t, svc.Invalidate(ctx, cert.ID))

	res, err = svc.Verify(ctx, cert.Code)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestService_QueryByStudent(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)
	_, err = svc.Issue(ctx, newCert("std1", "crs2"))
	require.NoError(t, err)
	_, err = svc.Issue(ctx, newCert("std2", "crs1"))
	require.NoError(t, err)

	certs, err := svc.QueryByStudent(ctx, "std1")
	require.NoError(t, err)
	assert.Len(t, certs, 2)
}

func TestService_Email(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	emailsvc.ClearSentMessages()

	cert, err := svc.Issue(ctx, newCert("std1", "crs1"))
	require.NoError(t, err)

	to := mail.Address{Name: cert.StudentName, Address: "asha@test.test"}
	require.NoError(t, svc.Email(cert, to))

	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, []mail.Address{to}, msg.To)
	assert.Contains(t, msg.Subject, cert.CourseTitle)
	assert.Contains(t, msg.TextContent, cert.Code)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, cert.AttachmentFilename(), msg.Attachments[0].Filename)
}
