package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/database"
	"github.com/stemsi/paxcalc-backend/internal/logger"
	"github.com/stemsi/paxcalc-backend/internal/repository"
	"github.com/stemsi/paxcalc-backend/internal/service"
)

const minPasswordLength = 8

func main() {
	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(cfg, repository.NewAdminRepository(pool))

	fmt.Println("=== Create Index Administrator ===")

	reader := bufio.NewReader(os.Stdin)
	name, err := prompt(reader, "Name: ")
	if err != nil {
		fail(err)
	}
	email, err := prompt(reader, "Email: ")
	if err != nil {
		fail(err)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fail(fmt.Errorf("invalid email %q", email))
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		fail(err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		fail(err)
	}
	if password != confirm {
		fail(errors.New("passwords do not match"))
	}

	admin, err := authService.CreateAdmin(ctx, email, name, password)
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("Failed to create admin")
	}

	log.Info().Int("admin_id", admin.ID).Str("email", admin.Email).Msg("Admin created")
	fmt.Printf("Admin %q (%s) created with ID %d\n", admin.Name, admin.Email, admin.ID)
}

func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.TrimSuffix(label, ": "))
	}
	return line, nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return string(b), nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
