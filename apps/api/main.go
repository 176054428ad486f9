package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/gurujilabs/guruji/apps/api/echo"
	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/certificate"
	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/enroll"
	"github.com/gurujilabs/guruji/core/user"
	emailsvc "github.com/gurujilabs/guruji/services/email"
	logsvc "github.com/gurujilabs/guruji/services/logger"
	meetsvc "github.com/gurujilabs/guruji/services/meet"
	"github.com/gurujilabs/guruji/storage/database"
	sqlxrepos "github.com/gurujilabs/guruji/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	// set up loggers
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var meetService course.MeetService
	if conf.Debug {
		meetService = meetsvc.NewDummyMeetService()
	} else {
		meetService = meetsvc.NewGoogleMeetService(conf, googleTokenFromEnv)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db), meetService)
	enrollSvc := enroll.NewService(sqlxrepos.NewEnrollmentRepository(db))
	certSvc := certificate.NewService(
		sqlxrepos.NewCertificateRepository(db),
		certificate.NewRenderer(conf.Certificate),
		mailSvc,
		conf,
	)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	server := echoapi.NewServer(&echoapi.Options{
		Address:   conf.Server.Address(),
		Conf:      conf,
		Logger:    logger,
		UserSvc:   usrSvc,
		CourseSvc: courseSvc,
		EnrollSvc: enrollSvc,
		CertSvc:   certSvc,
	})

	go server.Start()

	// graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// googleTokenFromEnv supplies the calendar access token. Token refresh is
// handled outside this process.
func googleTokenFromEnv(context.Context) (string, error) {
	tok := os.Getenv("GOOGLE_ACCESS_TOKEN")
	if tok == "" {
		return "", fmt.Errorf("GOOGLE_ACCESS_TOKEN is not set")
	}
	return tok, nil
}
