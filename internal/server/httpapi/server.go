// Package httpapi is the JSON API of the Minutes backend: the /auth endpoints
// that issue access tokens and manage the refresh cookie, and the bearer
// protected /api endpoints serving meetings, tasks and account data.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/dmitrijs2005/minutes/internal/models"
	"github.com/dmitrijs2005/minutes/internal/server/config"
	"github.com/dmitrijs2005/minutes/internal/server/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

type Users interface {
	Signup(ctx context.Context, email string, password []byte, name string) error
	Verify(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AccessToken, error)
	Logout(ctx context.Context, refreshToken string) error
	Account(ctx context.Context, userID string) (*models.Account, error)
	UserIDFromAccessToken(token string) (string, error)
}

type Meetings interface {
	List(ctx context.Context, userID string) ([]models.Meeting, error)
	Get(ctx context.Context, userID, id string) (*models.Meeting, error)
	Summary(ctx context.Context, userID, meetingID string) (*models.Summary, error)
	Tasks(ctx context.Context, userID, meetingID string) ([]models.Task, error)
	SetTaskDone(ctx context.Context, userID, taskID string, done bool) (*models.Task, error)
	Integrations(ctx context.Context, userID string) ([]models.Integration, error)
	Automations(ctx context.Context, userID string) ([]models.Automation, error)
	TranscriptURL(ctx context.Context, userID, meetingID string) (*models.TranscriptLink, error)
}

type Server struct {
	address  string
	logger   logging.Logger
	users    Users
	meetings Meetings
	ping     func(context.Context) error

	cookieSecure    bool
	refreshTokenTTL time.Duration

	e       *echo.Echo
	handler http.Handler
}

// NewServer wires routes and middleware. ping is used by /healthz and may be nil.
func NewServer(cfg *config.Config, l logging.Logger, users Users, meetings Meetings, ping func(context.Context) error) *Server {
	s := &Server{
		address:         cfg.HTTPAddr,
		logger:          l.With("module", "http_server"),
		users:           users,
		meetings:        meetings,
		ping:            ping,
		cookieSecure:    cfg.CookieSecure,
		refreshTokenTTL: cfg.RefreshTokenTTL,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(metricsMiddleware)

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authGroup := e.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, 10*time.Minute).Middleware())
	}
	authGroup.POST("/signup", s.signup)
	authGroup.POST("/verify", s.verify)
	authGroup.POST("/resend-code", s.resendCode)
	authGroup.POST("/forgot-password", s.forgotPassword)
	authGroup.POST("/reset-password", s.resetPassword)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.POST("/logout", s.logout)

	api := e.Group("/api", s.requireUser)
	api.GET("/meetings", s.listMeetings)
	api.GET("/meetings/:id", s.getMeeting)
	api.GET("/meetings/:id/summary", s.getSummary)
	api.GET("/meetings/:id/transcript", s.getTranscript)
	api.GET("/tasks", s.listTasks)
	api.PATCH("/tasks/:id", s.updateTask)
	api.GET("/integrations", s.listIntegrations)
	api.GET("/automations", s.listAutomations)
	api.GET("/account", s.getAccount)

	s.e = e
	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(e)

	return s
}

// Handler returns the full handler chain, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(c echo.Context) error {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, response{Error: "database unavailable"})
		}
	}
	return c.JSON(http.StatusOK, response{OK: true})
}
