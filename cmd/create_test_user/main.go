package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/storage/sqlite"
)

func main() {
	email := flag.String("email", "tester@example.com", "account email")
	password := flag.String("password", "password123", "account password")
	name := flag.String("name", "Tester", "display name")
	flag.Parse()

	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret, cfg.SessionTTL)

	var store service.AccountStore
	if cfg.UsesSQLite() {
		s, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			logger.Fatal("open sqlite store", "error", err)
		}
		defer s.Close()
		store = s.Accounts()
	} else {
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		store = repository.NewAccountRepository(pool)
	}

	accounts := service.NewAccountService(store, nil)
	ctx := context.Background()

	account, err := accounts.Signup(ctx, *email, *password, *name)
	switch {
	case errors.Is(err, domain.ErrConflict):
		account, err = accounts.Login(ctx, *email, *password)
		if err != nil {
			logger.Fatal("account exists with a different password", "email", *email)
		}
		logger.Info("account already exists", "id", account.ID)
	case err != nil:
		logger.Fatal("create account failed", "error", err)
	default:
		logger.Info("account created", "id", account.ID)
	}

	token, err := service.GenerateJWT(account.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Printf("token=%s\n", token)
}
