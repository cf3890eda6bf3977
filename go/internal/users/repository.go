package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/mcdev12/gooseclicker/go/internal/users/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateUserIfAbsent(ctx context.Context, arg db.CreateUserIfAbsentParams) (db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (db.User, error)
	GetUserByUsername(ctx context.Context, lower string) (db.User, error)
}

// Repository implements user data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new users repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// FindOrCreate returns the user with this username (case-insensitive),
// inserting it with role when absent. Concurrent first logins of the same
// name resolve to a single row.
func (r *Repository) FindOrCreate(ctx context.Context, username string, role models.Role) (*models.User, bool, error) {
	user, err := r.queries.CreateUserIfAbsent(ctx, db.CreateUserIfAbsentParams{
		Username: username,
		Role:     string(role),
	})
	if err == nil {
		return r.dbUserToModel(user), true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	// conflict: somebody already owns the name
	user, err = r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get user by username: %w", err)
	}
	return r.dbUserToModel(user), false, nil
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return r.dbUserToModel(user), nil
}

// dbUserToModel converts a database user to domain model
func (r *Repository) dbUserToModel(dbUser db.User) *models.User {
	return &models.User{
		ID:        dbUser.ID,
		Username:  dbUser.Username,
		Role:      models.Role(dbUser.Role),
		CreatedAt: dbUser.CreatedAt,
	}
}
