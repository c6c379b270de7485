package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/minutes/internal/client/api"
	"github.com/dmitrijs2005/minutes/internal/client/auth"
	"github.com/dmitrijs2005/minutes/internal/client/config"
	"github.com/dmitrijs2005/minutes/internal/client/health"
	"github.com/dmitrijs2005/minutes/internal/client/services"
	"github.com/dmitrijs2005/minutes/internal/client/storage"
	"github.com/dmitrijs2005/minutes/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// keepAliver is the part of auth.KeepAlive the App drives.
type keepAliver interface {
	Start(ctx context.Context)
	Stop()
	Running() bool
	Loading() bool
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	authService    services.AuthService
	meetingService services.MeetingService
	keepAlive      keepAliver
	closers        []func() error

	reader *bufio.Reader
	out    *printer

	mu       sync.Mutex
	ctx      context.Context
	email    string
	loggedIn bool
	expired  bool
	mode     Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	prober, err := health.NewProber(c.HealthAddr, "")
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	app := &App{
		config: c,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    newPrinter(os.Stdout),
	}

	apiClient, err := api.New(c.ServerURL,
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(logger),
		api.WithRedirector(app),
	)
	if err != nil {
		_ = prober.Close()
		_ = repos.Close()
		return nil, err
	}

	app.authService = services.NewAuthService(apiClient, prober, repos.Metadata, repos.Meetings, logger)
	app.meetingService = services.NewMeetingService(apiClient, repos.Meetings, repos.Metadata, logger)
	app.keepAlive = auth.NewKeepAlive(apiClient.Tokens(), c.TokenRefreshInterval, logger)
	app.closers = []func() error{prober.Close, repos.Close}

	return app, nil
}

// Run starts the connectivity watcher and the REPL and blocks until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	defer a.close()

	a.out.Print("Welcome to Minutes CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close() {
	a.keepAlive.Stop()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

// Redirect implements auth.Redirector. It runs on whatever goroutine noticed
// the rejected refresh, so it only flags the session; the REPL goroutine does
// the actual sign-out.
func (a *App) Redirect(ctx context.Context, location string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loggedIn || a.expired {
		return
	}
	a.expired = true
	a.logger.Info(ctx, "session expired", "location", location)
	a.out.Warn("Your session has expired. Type 'login' to sign in again.")
}

// isLoggedIn also completes a sign-out requested by Redirect.
func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	expired := a.expired
	if expired {
		a.expired = false
		a.loggedIn = false
	}
	loggedIn := a.loggedIn
	a.mu.Unlock()

	if expired {
		a.keepAlive.Stop()
	}
	return loggedIn
}

func (a *App) startSession(email string) {
	a.mu.Lock()
	a.email = email
	a.loggedIn = true
	a.expired = false
	ctx := a.ctx
	a.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	a.keepAlive.Start(ctx)
}

func (a *App) endSession() {
	a.keepAlive.Stop()

	a.mu.Lock()
	a.loggedIn = false
	a.expired = false
	a.mu.Unlock()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
		a.out.Print("Switched to %s mode", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.loggedIn && !a.expired {
		s = a.email + " "
	}
	s += string(a.mode)
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

// StartOnlineStatusWatcher probes the server every interval and switches
// between online and offline mode. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkOnline(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			a.setMode(ModeOffline)
		}
		return
	}
	a.setMode(ModeOnline)
}

// report prints err in terms the user can act on and ends the session when
// the server no longer accepts it.
func (a *App) report(err error) error {
	var apiErr *api.APIError
	hasMessage := errors.As(err, &apiErr) && apiErr.Message != ""

	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, auth.ErrUnauthenticated):
		a.endSession()
		if hasMessage {
			a.out.Error("%s", apiErr.Message)
		} else {
			a.out.Error("Not signed in or session expired. Type 'login' to sign in.")
		}
	case errors.Is(err, services.ErrOfflineMiss):
		a.out.Error("Server unavailable and nothing cached for this item.")
	case errors.Is(err, api.ErrUnavailable):
		a.out.Error("Server unavailable, try again later.")
	case errors.Is(err, api.ErrTooManyRequests):
		a.out.Error("Too many attempts, wait a minute and retry.")
	default:
		if hasMessage {
			a.out.Error("%s", apiErr.Message)
		} else {
			a.out.Error("%v", err)
		}
	}
	return err
}

// writer exposes the printer destination for prompts.
func (a *App) writer() io.Writer {
	return a.out.out
}
