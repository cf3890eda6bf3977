package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

type FakeUsersRepository struct {
	FindOrCreateFunc func(ctx context.Context, username string, role models.Role) (*models.User, bool, error)
	GetUserFunc      func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (f *FakeUsersRepository) FindOrCreate(ctx context.Context, username string, role models.Role) (*models.User, bool, error) {
	return f.FindOrCreateFunc(ctx, username, role)
}

func (f *FakeUsersRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.GetUserFunc(ctx, id)
}
