package echoapi

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/certificate"
	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/enroll"
	"github.com/gurujilabs/guruji/core/user"
	emailsvc "github.com/gurujilabs/guruji/services/email"
	logsvc "github.com/gurujilabs/guruji/services/logger"
	meetsvc "github.com/gurujilabs/guruji/services/meet"
	dummydb "github.com/gurujilabs/guruji/storage/database/dummy"
)

type testApp struct {
	server Server
	conf   *core.Config

	usrSvc    *user.Service
	courseSvc *course.Service
	enrollSvc *enroll.Service
	certSvc   *certificate.Service

	usrRepo user.Repository
}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		AppName:          "Guruji",
		SecretKey:        "secret",
		DefaultFromEmail: mail.Address{Name: "Guruji", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := newTestConfig()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrRepo := dummydb.NewUserRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	courseSvc := course.NewService(dummydb.NewCourseRepository(db), meetsvc.NewDummyMeetService())
	enrollSvc := enroll.NewService(dummydb.NewEnrollmentRepository(db))
	certSvc := certificate.NewService(
		dummydb.NewCertificateRepository(db),
		certificate.NewRenderer(core.CertificateConfig{}),
		mailSvc,
		conf,
	)

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	logger.Enable(false)

	server := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		EnrollSvc:      enrollSvc,
		CertSvc:        certSvc,
	})

	return &testApp{
		server:    server,
		conf:      conf,
		usrSvc:    usrSvc,
		courseSvc: courseSvc,
		enrollSvc: enrollSvc,
		certSvc:   certSvc,
		usrRepo:   usrRepo,
	}
}

func (app *testApp) createUser(t *testing.T, id, name, uname string, roles []string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        id,
		Name:      name,
		Username:  uname,
		Email:     uname + "@test.test",
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	require.NoError(t, usr.SetPassword("LeT@Pa55"))

	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf)
	require.NoError(t, err)
	return token
}

func (app *testApp) request(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}
