package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/config"
	"github.com/kelaslive/kelaslive-backend/internal/database"
	"github.com/kelaslive/kelaslive-backend/internal/logger"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	seedPassword  = "password123"
	seedClassCode = "ABC123"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	classes := repository.NewClassRepository(pool)
	sessions := repository.NewLiveSessionRepository(pool)

	tokens := service.NewTokenAuthority(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(users, tokens, cfg.BcryptCost, log)
	classService := service.NewClassService(classes, sessions, log).
		WithCodeGenerator(func() string { return seedClassCode })
	sessionService := service.NewLiveSessionService(service.NewGuard(tokens, classes, sessions), sessions, log)

	fmt.Println("=== Seeding demo classroom ===")

	teacher := ensureUser(ctx, log, authService, users, "teacher@example.com", "Ibu Guru", model.RoleTeacher)

	class, err := classes.GetByCode(ctx, seedClassCode)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		class, err = classService.Create(ctx, teacher, "Informatika Dasar")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create class")
		}
		fmt.Printf("Created class %q with code %s\n", class.Title, class.Code)
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to look up class")
	default:
		fmt.Printf("Found existing class %q (%s)\n", class.Title, class.Code)
	}

	for i := 1; i <= 3; i++ {
		email := fmt.Sprintf("student%d@example.com", i)
		student := ensureUser(ctx, log, authService, users, email, fmt.Sprintf("Siswa %d", i), model.RoleStudent)
		if _, err := classService.Join(ctx, student, class.Code); err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to enrol student")
		}
	}

	session, err := sessionService.Create(ctx, teacher, class.ID, nil, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create live session")
	}

	fmt.Printf("\nSeed completed! Room: %s (password for all accounts: %s)\n", session.RoomName, seedPassword)
}

// ensureUser registers an account or returns the existing one with the same email.
func ensureUser(ctx context.Context, log zerolog.Logger, auth *service.AuthService, users *repository.UserRepository, email, name string, role model.Role) service.Identity {
	u, err := auth.Register(ctx, model.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: seedPassword,
		Role:     role.String(),
	})
	if errors.Is(err, service.ErrEmailTaken) {
		u, err = users.GetByEmail(ctx, email)
	}
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("Failed to ensure user")
	}
	if u.Role != role {
		log.Fatal().Str("email", email).Stringer("role", u.Role).Msg("Existing user has a different role")
	}
	return service.IdentityOf(u)
}
