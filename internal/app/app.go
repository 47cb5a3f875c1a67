package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/limbo/habitrack/internal/api"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/internal/service"
	"github.com/limbo/habitrack/pkg/cleanup"
	"github.com/limbo/habitrack/pkg/config"
	jwtservice "github.com/limbo/habitrack/pkg/jwt_service"
	"gopkg.in/natefinch/lumberjack.v2"
)

type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	cleanup cleanup.Stack
}

// NewLogger builds the process logger. With LogFile set, records go to
// stdout and to a rotated file; the returned closer releases the file.
func NewLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, nil, errors.New("parsing log level error: " + err.Error())
	}
	var out io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler).With(slog.String("service", "habitrack")), closer, nil
}

// New connects to postgres and wires every layer. On error nothing is left
// open.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, logCloser, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger}
	a.cleanup.Register(&cleanup.Job{
		Name: "log file",
		F: func(context.Context) error {
			return logCloser.Close()
		},
	})

	dbCfg := &repository.PGCfg{
		Address:  cfg.PostgresAddress,
		Username: cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DB:       cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	}
	pool, err := repository.NewPool(ctx, dbCfg)
	if err != nil {
		a.cleanup.CleanUp(ctx, logger)
		return nil, err
	}
	logger.Info("connected to postgres", slog.String("db", dbCfg.String()))
	a.cleanup.Register(&cleanup.Job{
		Name: "postgres pool",
		F: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	usersRepo := repository.NewUsersRepo(pool)
	habitsRepo := repository.NewHabitsRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	sharesRepo := repository.NewSharesRepo(pool)

	serv := api.New(&api.ServicesList{
		UserService:     service.NewUserService(usersRepo),
		HabitsService:   service.NewHabitsService(habitsRepo),
		ProgressService: service.NewProgressService(habitsRepo, progressRepo),
		ShareService: service.NewShareService(service.ShareRepos{
			Users:    usersRepo,
			Habits:   habitsRepo,
			Progress: progressRepo,
			Shares:   sharesRepo,
		}, cfg.ClientURL),
		JwtService: jwtservice.New(cfg.JWTSecret, cfg.JWTTTL),
	}, api.WithLogger(logger), api.WithCORSOrigins(cfg.CORSOrigins))

	a.server = &http.Server{
		Addr:         cfg.APIAddress,
		Handler:      serv.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	return a, nil
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run serves until ctx is done or the listener fails, then drains open
// requests within ShutdownTimeout and releases resources.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", slog.String("address", a.cfg.APIAddress))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			runErr = errors.New("server error: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	if failed := a.cleanup.CleanUp(shutdownCtx, a.logger); failed > 0 {
		a.logger.Warn("cleanup finished with errors", slog.Int("failed", failed))
	}
	return runErr
}
