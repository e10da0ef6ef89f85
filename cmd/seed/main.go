package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/config"
	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/storage"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
)

// seed creates an active demo account in the configured credential store,
// skipping the email verification steps.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	email := flag.String("email", "demo@example.com", "account email")
	username := flag.String("username", "demoUser", "account username")
	phone := flag.String("phone", "+10000000000", "account phone")
	password := flag.String("password", "Demo123!", "account password")
	flag.Parse()

	if err := check(cfg.StoreDriver, account{Email: *email, Username: *username, Phone: *phone, Password: *password}); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open credential store: %v", err)
	}
	defer store.Close()

	hash, err := helpers.HashPassword(*password, cfg.PasswordCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Email: *email, Username: *username, Phone: *phone, PasswordHash: hash}
	if err := store.Users.Create(ctx, u); err != nil {
		var ce *repository.ConflictError
		if errors.As(err, &ce) {
			helpers.LogInfo(logger, "user already exists, nothing to seed", logrus.Fields{"field": ce.Field})
			return
		}
		log.Fatalf("failed to seed user: %v", err)
	}
	helpers.LogInfo(logger, "seeded user", logrus.Fields{"id": u.ID, "email": u.Email, "username": u.Username, "store": store.Driver})
}
