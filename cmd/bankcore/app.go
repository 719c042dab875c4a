package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olusegun-dev/bankcore/internal/db"
	"github.com/olusegun-dev/bankcore/internal/gateway/paystack"
	"github.com/olusegun-dev/bankcore/internal/handlers"
	"github.com/olusegun-dev/bankcore/internal/logger"
	"github.com/olusegun-dev/bankcore/internal/repository/postgres"
	"github.com/olusegun-dev/bankcore/internal/service/account"
	"github.com/olusegun-dev/bankcore/internal/service/transfer"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if c.SecretKey == "" {
		return nil, fmt.Errorf("secret key must be set")
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize payment gateway client
	gateway, err := paystack.NewClient(paystack.Config{
		SecretKey:   c.PaystackSecretKey,
		CallbackURL: c.PaystackCallbackURL,
		BaseURL:     c.PaystackBaseURL,
		Timeout:     c.GatewayTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating gateway client. Err: %w", err)
	}

	// Initialize services
	accountService := account.NewService(storage)
	transferService := transfer.NewService(storage, gateway, logger)

	mux := handlers.NewRouter(
		accountService,
		transferService,
		c.SecretKey,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
