package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/kelaslive/kelaslive-backend/internal/config"
	"github.com/kelaslive/kelaslive-backend/internal/database"
	"github.com/kelaslive/kelaslive-backend/internal/logger"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	tokens := service.NewTokenAuthority(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(repository.NewUserRepository(pool), tokens, cfg.BcryptCost, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	fmt.Println("=== Create New User ===")

	req := model.RegisterRequest{
		Name:  prompt("Enter Name: "),
		Email: prompt("Enter Email: "),
		Role:  prompt("Enter Role (TEACHER/STUDENT, default TEACHER): "),
	}
	if req.Role == "" {
		req.Role = model.RoleTeacher.String()
	}
	if req.Name == "" || req.Email == "" {
		fmt.Println("Error: Name and Email are required")
		os.Exit(1)
	}
	if _, err := model.ParseRole(req.Role); err != nil {
		fmt.Println("Error: Role must be TEACHER or STUDENT")
		os.Exit(1)
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	req.Password = string(bytePassword)
	if len(req.Password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := authService.Register(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %s\n", user.Role, user.Name, user.Email, user.ID)
}
