// Package server wires the Minutes backend together: configuration, the
// Postgres repositories, the account and meeting services, the JSON API and
// the gRPC health endpoint. It handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/dmitrijs2005/minutes/internal/server/config"
	"github.com/dmitrijs2005/minutes/internal/server/httpapi"
	"github.com/dmitrijs2005/minutes/internal/server/mail"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minutes/internal/server/services"

	gs "github.com/dmitrijs2005/minutes/internal/server/grpc"
)

const healthCheckInterval = 15 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	meetingService *services.MeetingService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	mailer := mail.New(c.ResendAPIKey, c.MailFrom, logger)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		userService:    services.NewUserService(db, rm, mailer, logger, c),
		meetingService: services.NewMeetingService(db, rm, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.db.PingContext, healthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config, app.logger, app.userService, app.meetingService, app.db.PingContext)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
