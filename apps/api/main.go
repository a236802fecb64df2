package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/educert/backend/apps/api/echo"
	"github.com/educert/backend/core"
	"github.com/educert/backend/core/assignment"
	"github.com/educert/backend/core/certification"
	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/enrollment"
	"github.com/educert/backend/core/exam"
	"github.com/educert/backend/core/notification"
	"github.com/educert/backend/core/payment"
	"github.com/educert/backend/core/report"
	"github.com/educert/backend/core/user"
	emailsvc "github.com/educert/backend/services/email"
	logsvc "github.com/educert/backend/services/logger"
	"github.com/educert/backend/storage/database"
	sqlxrepos "github.com/educert/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	if err := run(conf, logger); err != nil {
		logger.Fatal("running server", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		return err
	}
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer db.Close()
	if err = database.Migrate(db); err != nil {
		return err
	}
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up validation
	translator, _ := ut.New(en.New()).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc, conf)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(sdb))
	enrollSvc := enrollment.NewService(sqlxrepos.NewEnrollmentRepository(sdb), courseSvc)
	assignSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(sdb))
	examSvc := exam.NewService(sqlxrepos.NewExamRepository(sdb))
	certSvc := certification.NewService(sqlxrepos.NewCertificationRepository(sdb))
	paymentSvc := payment.NewService(sqlxrepos.NewPaymentRepository(sdb))
	reportSvc := report.NewService(sqlxrepos.NewReportRepository(sdb), enrollSvc, courseSvc)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(sdb), usrSvc, mailSvc)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		conf.Server.Address(),
		shutdown,
		&echoapi.Deps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			CourseSvc:  courseSvc,
			EnrollSvc:  enrollSvc,
			AssignSvc:  assignSvc,
			ExamSvc:    examSvc,
			CertSvc:    certSvc,
			PaymentSvc: paymentSvc,
			ReportSvc:  reportSvc,
			NotifSvc:   notifSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening on " + conf.Server.Address())
		serverErrors <- app.Start()
	}()

	// block while waiting for a server error or a shutdown signal
	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		logger.Info("shutdown started", sig.String())
		defer logger.Info("shutdown complete", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
