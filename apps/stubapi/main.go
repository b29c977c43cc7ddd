// Command stubapi serves the LMS REST API from memory, for local development of the player.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/masomo/apps/stubapi/echo"
	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/core/user"
	emailsvc "github.com/trezcool/masomo/services/email"
	logsvc "github.com/trezcool/masomo/services/logger"
	inmemdb "github.com/trezcool/masomo/storage/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := inmemdb.Open()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if conf.Server.Seed {
		seeded, err := inmemdb.Seed(db)
		if err != nil {
			logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
		}
		logger.Info(fmt.Sprintf("seeded %s and %s (password %q), course %q",
			seeded.Admin.Email, seeded.Learner.Email, inmemdb.SeedPassword, seeded.Course.ID))
	}

	var mailSvc core.EmailService
	if conf.Email.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, log.New(os.Stdout, "MAIL : ", log.LstdFlags), logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	courseRepo := inmemdb.NewCourseRepository(db)
	deps := &echoapi.Deps{
		UserSvc:     user.NewService(inmemdb.NewUserRepository(db), mailSvc, conf.AppName),
		CourseSvc:   course.NewService(courseRepo, inmemdb.NewEnrollmentRepository(db)),
		ProgressSvc: progress.NewService(inmemdb.NewProgressRepository(db), courseRepo),
		Logger:      logger,
	}

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:   conf.Server.Address,
			AppName:   conf.AppName,
			Debug:     conf.Debug,
			SecretKey: []byte(conf.Server.SecretKey),
			TokenTTL:  conf.Server.JWTExpirationDelta,
		},
		shutdown,
		deps,
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Address))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
