package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar/internal/config"
	"bazaar/internal/db"
	"bazaar/internal/httpserver"
	cartrepo "bazaar/internal/repository/cart"
	customerrepo "bazaar/internal/repository/customer"
	itemrepo "bazaar/internal/repository/item"
	"bazaar/internal/repository/revocation"
	cartsvc "bazaar/internal/service/cart"
	sessionsvc "bazaar/internal/service/session"
	"bazaar/internal/token"
	"github.com/golang-jwt/jwt/v5"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	privateKey, publicKey, err := loadKeys(cfg)
	if err != nil {
		logger.Fatalf("load token keys: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	cartRepo := cartrepo.NewPostgres(dbpool)
	itemRepo := itemrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	registry := revocation.NewPostgres(dbpool)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go revocation.PurgeLoop(sweepCtx, registry, time.Hour, logger)

	issuer := token.NewIssuer(privateKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	verifier := token.NewVerifier(publicKey, registry)

	cartService := cartsvc.New(cartRepo, itemRepo)
	sessionService := sessionsvc.New(
		customerRepo,
		cartService,
		sessionsvc.NewBcryptVerifier(customerRepo),
		issuer,
		verifier,
		registry,
		cfg.DefaultCurrency,
	)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		SessionSvc:      sessionService,
		CartSvc:         cartService,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
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

// loadKeys parses the signing key pair from config. The public key is
// derived from the private key when not configured separately.
func loadKeys(cfg config.Config) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if cfg.TokenPrivateKeyPEM == "" {
		return nil, nil, errors.New("TOKEN_PRIVATE_KEY is required")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.TokenPrivateKeyPEM))
	if err != nil {
		return nil, nil, err
	}
	if cfg.TokenPublicKeyPEM == "" {
		return privateKey, &privateKey.PublicKey, nil
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.TokenPublicKeyPEM))
	if err != nil {
		return nil, nil, err
	}
	return privateKey, publicKey, nil
}
