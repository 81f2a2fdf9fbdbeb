package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/role"
	"github.com/jnanisc/backend/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		RoleSvc    *role.Service
		Validate   *validator.Validate
		Translator ut.Translator

		// HealthCheck reports whether the persistence collaborator is
		// reachable; nil means always healthy.
		HealthCheck func(context.Context) error
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.AllowedOrigins,
		AllowCredentials: true,
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/health", s.health)

	jwt := ConfigureAuth(
		conf.AppName,
		[]byte(conf.SecretKey),
		conf.Server.JWTAlgorithm,
		conf.Server.JWTExpirationDelta,
	)

	registerAuthAPI(s.app.Group("/auth"), jwt, s.opts.UserSvc, s.opts.Validate)

	// management surface; the gate is a valid token resolving to a live
	// account (role/permission data is display metadata, not an
	// enforcement input)
	admin := s.app.Group("/admin", jwt, currentUserMiddleware(s.opts.UserSvc))
	registerUserAPI(admin.Group("/users"), s.opts.UserSvc, s.opts.Validate)
	registerRoleAPI(admin.Group("/roles"), admin, s.opts.RoleSvc, s.opts.Validate)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Welcome to Jnani Study Centre API"})
}

func (s *server) health(ctx echo.Context) error {
	if s.opts.HealthCheck != nil {
		if err := s.opts.HealthCheck(ctx.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database connection failed")
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "healthy", "database": "connected"})
}
