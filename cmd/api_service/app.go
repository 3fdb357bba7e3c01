package apiservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"lunchbox/internal/general/config"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/general/postgres"
	"lunchbox/internal/general/rabbitmq"
	"lunchbox/internal/general/ws"
	accounthandler "lunchbox/internal/software/account/handler"
	accountservice "lunchbox/internal/software/account/service"
	adminhandler "lunchbox/internal/software/adminboard/handler"
	adminservice "lunchbox/internal/software/adminboard/service"
	authhandler "lunchbox/internal/software/auth/handler"
	authservice "lunchbox/internal/software/auth/service"
	orderhandler "lunchbox/internal/software/order/handler"
	orderservice "lunchbox/internal/software/order/service"
)

// Run wires the api service and blocks until ctx is cancelled.
func Run(ctx context.Context, maxConcurrent int) error {
	// static request ID for startup logs
	logger := logger.New("lunchbox-api")
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	pub := rabbitmq.NewMQPublisher(rmq)

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	// repos share one pool through the unit of work
	uow := postgres.NewUnitOfWork(pool)
	userRepo := postgres.NewUserRepo()
	kidRepo := postgres.NewKidRepo()
	leaveRepo := postgres.NewLeaveRepo()
	orderRepo := postgres.NewOrderRepo()
	eventRepo := postgres.NewOrderEventRepo()
	locationRepo := postgres.NewRiderLocationRepo()

	// room registry and fan-out are owned here, not globals
	registry := ws.NewRegistry()
	rooms := ws.NewFanout(registry, logger)

	orderSvc := orderservice.NewOrderService(
		logger, uow, orderRepo, eventRepo, userRepo, kidRepo, leaveRepo, locationRepo, pub, rooms,
	)
	authSvc := authservice.NewAuthService(logger, uow, userRepo, jwtManager)
	accountSvc := accountservice.NewAccountService(logger, uow, userRepo, kidRepo, leaveRepo)
	adminSvc := adminservice.NewAdminService(logger, uow, userRepo, orderRepo, leaveRepo, locationRepo)

	gateway := ws.NewGateway(logger, jwtManager, orderSvc, registry)

	// background consumers: location archiver and status monitor
	consumers := orderservice.NewConsumers(logger, uow, locationRepo, rmq)
	go consumers.Run(ctx)

	mux := http.NewServeMux()
	authhandler.NewAuthHTTPHandler(authSvc, logger).RegisterRoutes(mux)
	accounthandler.NewAccountHTTPHandler(accountSvc, logger, jwtManager).RegisterRoutes(mux)
	adminhandler.NewAdminHTTPHandler(adminSvc, logger, jwtManager).RegisterRoutes(mux)
	orderhandler.NewOrderHTTPHandler(orderSvc, logger, jwtManager, gateway).RegisterRoutes(mux)

	limitedHandler := withConcurrencyLimit(maxConcurrent, mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("API service started on port %d", cfg.API.Port),
		map[string]any{"port": cfg.API.Port, "max_concurrent": maxConcurrent},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "API service shutting down", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.API.Port})
			return err
		}
		return nil
	}

	return nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
