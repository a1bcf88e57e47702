package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/config"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/db"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/httpserver"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/migrate"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
	adminsvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/admin"
	balancesvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/balance"
	cartsvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/cart"
	catalogsvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/catalog"
	enrollmentsvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/enrollment"
	ordersvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/order"
	sessionsvc "github.com/HuyGoodBoy/yogalanding-sub000/internal/service/session"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if cfg.BackendAnonKey == "" {
		logger.Printf("BACKEND_ANON_KEY is empty; backend requests will be rejected")
	}

	ctx := context.Background()
	store, ready, closeStore, err := openState(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open state store: %v", err)
	}
	defer closeStore()

	api := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		AnonKey: cfg.BackendAnonKey,
		Timeout: cfg.BackendTimeout,
	}, logger)

	sessionService := sessionsvc.New(api, store, logger)
	cartService := cartsvc.New(store, logger)
	balanceService := balancesvc.New(api, sessionService, logger)
	orderService := ordersvc.New(ordersvc.Deps{
		API:         api,
		Tokens:      sessionService,
		Cart:        cartService,
		Wallet:      balanceService,
		State:       store,
		DedupWindow: cfg.CheckoutDedupWindow,
		Logger:      logger,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		CookieSecure:   cfg.CookieSecure,
		Ready:          ready,
	}, httpserver.Deps{
		SessionSvc:    sessionService,
		CatalogSvc:    catalogsvc.New(api, sessionService),
		CartSvc:       cartService,
		OrderSvc:      orderService,
		BalanceSvc:    balanceService,
		EnrollmentSvc: enrollmentsvc.New(api, sessionService),
		AdminSvc:      adminsvc.New(api, sessionService, logger),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (state: %s, backend: %s)", cfg.HTTPAddr, cfg.StateBackend, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// openState connects the configured per-client state store and returns its
// readiness probe and a close function.
func openState(ctx context.Context, cfg config.Config, logger *log.Logger) (state.Repository, httpserver.ReadyFunc, func(), error) {
	switch cfg.StateBackend {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect db: %w", err)
		}
		if cfg.AutoMigrate {
			if err := migrate.Apply(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Printf("migrations applied")
		}
		return state.NewPostgres(pool), pool.Ping, pool.Close, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		ready := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return state.NewRedis(rdb, cfg.StateTTL), ready, func() { _ = rdb.Close() }, nil
	case "memory":
		logger.Printf("using in-memory state; sessions and carts are lost on restart")
		ready := func(context.Context) error { return nil }
		return state.NewMemory(), ready, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
}
