package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chuks-kitchen/internal/client"
	"chuks-kitchen/internal/config"
	"chuks-kitchen/internal/logger"
	"chuks-kitchen/internal/otp"
	"chuks-kitchen/internal/repository"
	"chuks-kitchen/internal/security"
	"chuks-kitchen/internal/server"
	"chuks-kitchen/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log, cfg.Environment.Name)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	rdb, err := client.InitRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	var otpStore otp.Store
	if rdb != nil {
		defer rdb.Close()
		otpStore = otp.NewRedisStore(rdb, cfg.Auth.OTPTTL)
		log.Info("otp codes stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		otpStore = otp.NewDBStore(db, userRepo, cfg.Auth.OTPTTL)
	}

	tokens := security.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	services := server.Services{
		Auth:     service.NewAuthService(db, log, userRepo, otpStore, security.NewPasswordHasher(0), tokens),
		Catalog:  service.NewCatalogService(db, log, foodRepo, inventoryRepo),
		Cart:     service.NewCartService(db, log, userRepo, foodRepo, cartRepo, inventoryRepo),
		Orders:   service.NewOrderService(db, log, userRepo, cartRepo, orderRepo, inventoryRepo),
		Payments: service.NewPaymentService(db, log, cfg.Ledger, userRepo, orderRepo, cartRepo, paymentRepo, inventoryRepo),
	}

	if cfg.Seed.Catalog {
		if err := services.Catalog.Seed(ctx); err != nil {
			return err
		}
		log.Info("catalog seeded")
	}

	srv := server.NewServer(services, tokens, cfg.Auth.CatalogAdmins, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", zap.String("addr", cfg.Address()))
		if err := srv.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
