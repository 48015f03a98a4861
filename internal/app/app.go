package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	pgpkg "github.com/vadimbarashkov/shortlink/pkg/postgres"
)

const docsFile = "docs/swagger.yml"

// NewLogger builds the application logger: JSON in production, concise text elsewhere.
func NewLogger(cfg *config.Config) *httplog.Logger {
	level := slog.LevelInfo
	if cfg.Env == config.EnvDev {
		level = slog.LevelDebug
	}

	return httplog.NewLogger(cfg.AppName, httplog.Options{
		JSON:           cfg.Env == config.EnvProd,
		Concise:        cfg.Env != config.EnvProd,
		LogLevel:       level,
		RequestHeaders: cfg.Env != config.EnvProd,
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})
}

// OpenDB connects to the configured database.
func OpenDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	const op = "app.OpenDB"

	db, err := pgpkg.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db, nil
}

// NewURLUseCase wires the short code allocator and accessor to the database.
func NewURLUseCase(cfg *config.Config, db *sqlx.DB, logger *slog.Logger) *usecase.URLUseCase {
	return usecase.New(
		postgres.NewURLRepository(db),
		usecase.WithShortCodeLength(cfg.ShortCode.Length),
		usecase.WithMaxAttempts(cfg.ShortCode.MaxAttempts),
		usecase.WithWidening(cfg.ShortCode.WidenAfter, cfg.ShortCode.MaxLength),
		usecase.WithReservedCodes(delivery.ReservedCodes...),
		usecase.WithLogger(logger),
	)
}

// Run migrates the database and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := pgpkg.RunMigrations(cfg.MigrationsPath, cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}
	logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))

	routerOpts := delivery.Options{
		AppName: cfg.AppName,
		BaseURL: cfg.BaseURL,
	}
	if _, err := os.Stat(docsFile); err == nil {
		routerOpts.DocsFile = docsFile
	}

	urlUseCase := NewURLUseCase(cfg, db, logger.Logger)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        delivery.NewRouter(logger, urlUseCase, routerOpts),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
