package main

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/internal/repository"
	"github.com/noah-isme/school-units-api/internal/service"
	"github.com/noah-isme/school-units-api/pkg/config"
	"github.com/noah-isme/school-units-api/pkg/database"
	"github.com/noah-isme/school-units-api/pkg/logger"
)

// Seeds the administrator account from SEED_EMAIL, SEED_PASSWORD and SEED_NAME.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	auth := service.NewAuthService(repository.NewUserRepository(db), validator.New(), logr, service.AuthConfig{
		Secret:     cfg.Session.Secret,
		Expiration: cfg.Session.Expiration,
		Issuer:     cfg.Session.Issuer,
	})

	user, err := auth.SeedAdmin(context.Background(), cfg.Seed.Email, cfg.Seed.Password, cfg.Seed.Name)
	if err != nil {
		logr.Fatal("failed to seed admin", zap.Error(err))
	}
	logr.Info("admin ready", zap.String("email", user.Email), zap.String("id", user.ID))
}
