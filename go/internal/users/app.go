package users

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/rs/zerolog/log"
)

const maxUsernameLength = 64

// UsersRepository defines what the app layer needs from the repository
type UsersRepository interface {
	FindOrCreate(ctx context.Context, username string, role models.Role) (*models.User, bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// App handles users business logic
type App struct {
	repo UsersRepository
}

// NewApp creates a new users App
func NewApp(repo UsersRepository) *App {
	return &App{
		repo: repo,
	}
}

// Login finds the user by name or registers them. The role is derived only
// when the user is created and never changes afterwards.
func (a *App) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	username, err := a.normalizeUsername(req.Username)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, created, err := a.repo.FindOrCreate(ctx, username, DeriveRole(username))
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if created {
		log.Info().
			Str("user_id", user.ID.String()).
			Str("username", user.Username).
			Str("role", string(user.Role)).
			Msg("Registered user")
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (a *App) normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrInvalidUsername
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return "", fmt.Errorf("username must be at most %d characters", maxUsernameLength)
	}
	return username, nil
}
