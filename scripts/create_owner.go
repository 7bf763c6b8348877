package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"stolik/internal/database"
	"stolik/internal/models"
	"stolik/internal/service"

	"github.com/rs/zerolog"
)

// Bootstraps the platform owner account so the API can be administered before
// any restaurant admin exists.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		email    = flag.String("email", "", "owner email")
		password = flag.String("password", "", "owner password")
		dbPath   = flag.String("db", "./data/bookings.db", "path to sqlite db")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		return fmt.Errorf("both -email and -password are required")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hash, err := service.HashPassword(*password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &models.Admin{
		Email:        *email,
		PasswordHash: hash,
		IsOwner:      true,
	}
	err = db.CreateAdmin(ctx, admin)
	if errors.Is(err, database.ErrAdminExists) {
		fmt.Printf("owner %s already exists\n", *email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create owner: %w", err)
	}

	fmt.Printf("done: owner %s created (id=%s)\n", *email, admin.ID)
	return nil
}
