package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/praveengyadahalli143-byte/TechpG/apps/api/echo"
	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/registration"
	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
	emailsvc "github.com/praveengyadahalli143-byte/TechpG/services/email"
	filesvc "github.com/praveengyadahalli143-byte/TechpG/services/files"
	logsvc "github.com/praveengyadahalli143-byte/TechpG/services/logger"
	realtimesvc "github.com/praveengyadahalli143-byte/TechpG/services/realtime"
	"github.com/praveengyadahalli143-byte/TechpG/storage/database"
	sqlxrepos "github.com/praveengyadahalli143-byte/TechpG/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	hub := realtimesvc.NewHub()
	typing := chat.NewTypingTracker(conf.Server.TypingExpiry)

	// attachments are served back by the API itself under /uploads
	files, err := filesvc.NewLocalStore(conf.Server.UploadsDir, "/uploads")
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), conf)
	admSvc := admin.NewService(sqlxrepos.NewAdminRepository(db))
	chatSvc := chat.NewService(sqlxrepos.NewChatRepository(db), hub)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db))
	projSvc := project.NewService(sqlxrepos.NewProjectRepository(db), usrSvc, chatSvc, notifSvc, logger)
	statsSvc := stats.NewService(sqlxrepos.NewStatsRepository(db))

	pipeline := registration.NewPipeline(usrSvc, projSvc, validate, mailSvc, conf, logger)
	lookup := registration.EmailChecker{Users: usrSvc}
	sessions := registration.NewSessionStore(registration.NewInMemDraftStore(), conf.Server.RegistrationSessionTTL)

	go func() {
		for range time.Tick(conf.Server.RegistrationSessionTTL) {
			if n := sessions.Sweep(); n > 0 {
				logger.Info(fmt.Sprintf("swept %d expired registration sessions", n))
			}
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("hub_subscribers", expvar.Func(func() interface{} { return hub.SubscriberCount() }))

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			AdminSvc:   admSvc,
			ProjectSvc: projSvc,
			ChatSvc:    chatSvc,
			NotifSvc:   notifSvc,
			StatsSvc:   statsSvc,
			Sessions:   sessions,
			Lookup:     lookup,
			Pipeline:   pipeline,
			Hub:        hub,
			Typing:     typing,
			Files:      files,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
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

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
