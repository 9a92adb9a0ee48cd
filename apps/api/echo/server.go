package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/registration"
	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
	realtimesvc "github.com/praveengyadahalli143-byte/TechpG/services/realtime"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		AdminSvc   *admin.Service
		ProjectSvc *project.Service
		ChatSvc    *chat.Service
		NotifSvc   *notification.Service
		StatsSvc   *stats.Service
		Sessions   *registration.SessionStore
		Lookup     registration.IdentityLookup
		Pipeline   registration.Submitter
		Hub        *realtimesvc.Hub
		Typing     *chat.TypingTracker
		Files      chat.FileStore
		Validate   *validator.Validate
		Translator ut.Translator

		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps       ServerDeps
		app        *echo.Echo
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:       deps,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	initAuth(deps.Conf)
	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	if conf.Server.UploadsDir != "" {
		s.app.Static("/uploads", conf.Server.UploadsDir)
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerRegistrationAPI(v1, s.deps)
	registerUserAPI(v1, jwt, s.deps)
	registerChatAPI(v1, jwt, s.deps)
	registerAdminAPI(v1, jwt, s.deps)
	registerStatsAPI(v1, jwt, s.deps)
}

// signalShutdown lets the error handler ask main for a graceful stop.
func (s *server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) Start() {
	s.errCh <- s.app.Start(s.deps.Conf.Server.Address())
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownCh
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to TechpG API!")
}
