package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/core/user"
)

type (
	Deps struct {
		UserSvc     *user.Service
		CourseSvc   *course.Service
		ProgressSvc *progress.Service
		Logger      core.Logger
	}

	Options struct {
		Address        string
		AppName        string
		Debug          bool
		DisableReqLogs bool
		SecretKey      []byte
		TokenTTL       time.Duration
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		deps       *Deps
		app        *echo.Echo
		validate   *validator.Validate
		translator ut.Translator
		shutdown   chan os.Signal
	}
)

var _ Server = (*server)(nil)

// NewServer returns the LMS API server. shutdown receives SIGTERM when a handler hits a
// core shutdown error; it may be nil.
func NewServer(opts *Options, shutdown chan os.Signal, deps *Deps) Server {
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	s := &server{
		opts:       opts,
		deps:       deps,
		app:        echo.New(),
		validate:   validate,
		translator: translator,
		shutdown:   shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowCredentials: true}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.translator, s.signalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	auth := newAuthenticator(s.opts.SecretKey, s.opts.AppName, s.opts.TokenTTL)
	jwt := auth.middleware()

	registerAuthAPI(api, auth, s.deps.UserSvc, s.validate)
	registerCourseAPI(api, jwt, s.deps.CourseSvc, s.validate)
	registerProgressAPI(api, jwt, s.deps.ProgressSvc, s.validate)
	registerEnrollmentAPI(api, jwt, s.deps.CourseSvc, s.validate)
	registerUserAPI(api, jwt, s.deps.UserSvc, s.validate)
}

func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Masomo LMS API!")
}

// response is the envelope of every JSON response.
type response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}, msg string) error {
	return ctx.JSON(code, response{Data: data, Message: msg})
}
