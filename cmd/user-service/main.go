package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/saurav-22/task-management-app-backend/internal/auth"
	"github.com/saurav-22/task-management-app-backend/internal/config"
	"github.com/saurav-22/task-management-app-backend/internal/httpmetrics"
	"github.com/saurav-22/task-management-app-backend/internal/storage"
	"github.com/saurav-22/task-management-app-backend/internal/userapi"
)

func main() {
	cfg := config.Load()
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.RequireDB(); err != nil {
		log.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("missing JWT_SECRET")
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

	tokens := auth.New([]byte(cfg.JWTSecret))

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	httpmetrics.New("user_service").Setup(e)

	logger := log.New()
	userapi.Register(e, store, tokens, tokens, cfg.TokenTTL, logger)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
