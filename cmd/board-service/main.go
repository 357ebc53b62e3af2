package main

import (
	"context"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/saurav-22/task-management-app-backend/internal/auth"
	"github.com/saurav-22/task-management-app-backend/internal/boardapi"
	"github.com/saurav-22/task-management-app-backend/internal/config"
	"github.com/saurav-22/task-management-app-backend/internal/httpmetrics"
	"github.com/saurav-22/task-management-app-backend/internal/storage"
)

func main() {
	cfg := config.Load()
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.RequireDB(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireAuth(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DatabaseDSN, cfg.DBMaxOpenConns, cfg.DBConnLifetime)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if cfg.MigrateOnStart {
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	httpmetrics.New("board_service").Setup(e)

	logger := log.New()
	boardapi.Register(e, store, verifier, logger)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newVerifier(cfg config.Config) (*auth.Auth, error) {
	if cfg.JWKSURL == "" {
		return auth.New([]byte(cfg.JWTSecret)), nil
	}
	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{})
	if err != nil {
		return nil, err
	}
	return auth.NewJWKS(jwks, cfg.Audience, cfg.Issuer), nil
}
