package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/starterkit/internal/db"
	"github.com/nkiryanov/starterkit/internal/handlers"
	"github.com/nkiryanov/starterkit/internal/handlers/middleware"
	"github.com/nkiryanov/starterkit/internal/logger"
	"github.com/nkiryanov/starterkit/internal/repository"
	"github.com/nkiryanov/starterkit/internal/repository/memory"
	"github.com/nkiryanov/starterkit/internal/repository/postgres"
	"github.com/nkiryanov/starterkit/internal/service/auth"
	"github.com/nkiryanov/starterkit/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/starterkit/internal/service/post"
	"github.com/nkiryanov/starterkit/internal/service/product"
	"github.com/nkiryanov/starterkit/internal/service/purger"
	"github.com/nkiryanov/starterkit/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	purger *purger.Purger

	// Release resources (db pool, sentry buffers)
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr, logger: l}

	if err := logger.InitSentry(c.SentryDSN, c.Environment); err != nil {
		return nil, fmt.Errorf("error while initializing sentry. Err: %w", err)
	}
	app.closers = append(app.closers, logger.FlushSentry)

	storage, err := app.openStorage(ctx, c.DatabaseDSN)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	userService, err := user.NewService(auth.BcryptHasher{Cost: c.BcryptCost}, storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating user service. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{AdminEmails: c.AdminEmails}, tokenManager, userService)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	postService, err := post.NewService(storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating post service. Err: %w", err)
	}
	productService, err := product.NewService(storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating product service. Err: %w", err)
	}

	proxies, err := middleware.ParseTrustedProxies(c.TrustedProxies)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.purger = purger.New(c.PurgeInterval, authService, l)
	app.Handler = handlers.NewRouter(
		authService,
		postService,
		productService,
		middleware.NewRateLimiter(c.LoginRateLimit, time.Minute).TrustProxies(proxies),
		l,
	)

	return app, nil
}

// Connect to the database and run migrations, or keep everything in memory if dsn is empty
func (s *ServerApp) openStorage(ctx context.Context, dsn string) (repository.Storage, error) {
	if dsn == "" {
		s.logger.Warn("Database is not configured, data is kept in memory")
		return memory.NewStorage(), nil
	}

	pool, err := db.ConnectAndMigrate(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	s.closers = append(s.closers, pool.Close)

	return postgres.NewStorage(pool), nil
}

// Close releases app resources in reverse order
func (s *ServerApp) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Run starts http server and closes gracefully on context cancellation
// Returns nil if server stopped by context
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	purgerStopped := s.purger.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-purgerStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
