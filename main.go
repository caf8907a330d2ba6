package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studentbus/internal/auth"
	intconfig "studentbus/internal/config"
	router "studentbus/internal/http"
	"studentbus/internal/http/handlers"
	"studentbus/internal/notify"
	"studentbus/internal/repositories"
	"studentbus/internal/services"
	"studentbus/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.NewLogger(env.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ledger, err := openLedger(env, logger)
	if err != nil {
		logger.Fatal("open ledger", zap.Error(err))
	}
	defer ledger.Close()

	secret := env.JWTSecret
	if secret == "" {
		secret, err = auth.RandomSecret()
		if err != nil {
			logger.Fatal("generate jwt secret", zap.Error(err))
		}
		logger.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	hub := notify.NewHub(logger.Named("ws"), 10*time.Second)

	authSvc := services.AuthService{
		Ledger:            ledger,
		Hasher:            auth.NewBcryptHasher(0),
		Tokens:            auth.NewTokenService(secret, env.JWTTTL),
		DefaultUniversity: env.DefaultUniversity,
		Logger:            logger,
	}
	bookingSvc := services.BookingService{Ledger: ledger, Notifier: hub, Logger: logger}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := authSvc.EnsureAdmin(seedCtx, services.AdminSeed{
		Email:    env.AdminEmail,
		Password: env.AdminPassword,
		Name:     env.AdminName,
		Phone:    env.AdminPhone,
	}); err != nil {
		logger.Error("seed admin account", zap.Error(err))
	}
	cancelSeed()

	handler := handlers.Handler{
		Auth: authSvc,
		Trips: services.TripService{
			Ledger:   ledger,
			Defaults: services.TripDefaults{From: env.TripDefaultFrom, To: env.TripDefaultTo, Seats: env.TripDefaultSeats},
			Logger:   logger,
		},
		Bookings:       bookingSvc,
		Payments:       services.PaymentService{Ledger: ledger, Notifier: hub, Logger: logger},
		Dashboard:      services.DashboardService{Ledger: ledger},
		Docs:           services.DocsService{Bookings: bookingSvc, Logger: logger},
		Hub:            hub,
		UploadDir:      env.UploadDir,
		UploadMaxBytes: env.UploadMaxBytes,
	}

	r := router.NewRouter(env, handler, logger)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr), zap.String("store", env.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return
	}

	logger.Info("server stopped cleanly")
}

func openLedger(env intconfig.Env, logger *zap.Logger) (repositories.Ledger, error) {
	switch env.StoreDriver {
	case intconfig.StoreMySQL:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		db, err := intconfig.OpenDB(ctx, env.MySQLDSN)
		if err != nil {
			return nil, err
		}
		l := repositories.NewMySQLLedger(db)
		if err := l.EnsureSchema(ctx); err != nil {
			_ = l.Close()
			return nil, err
		}
		logger.Info("using mysql ledger")
		return l, nil
	default:
		if env.StoreDriver != intconfig.StoreMemory {
			logger.Warn("unknown STORE_DRIVER, falling back to memory", zap.String("driver", env.StoreDriver))
		}
		logger.Info("using in-memory ledger")
		return repositories.NewMemoryLedger(), nil
	}
}
