package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Login(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantRole models.Role
		wantErr  error
	}{
		{name: "standard player", username: gofakeit.Username(), wantRole: models.RoleStandard},
		{name: "admin", username: "Admin", wantRole: models.RoleAdmin},
		{name: "special", username: "Никита", wantRole: models.RoleSpecial},
		{name: "trims whitespace", username: "  admin\t", wantRole: models.RoleAdmin},
		{name: "empty", username: "   ", wantErr: ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName string
			repo := &FakeUsersRepository{
				FindOrCreateFunc: func(ctx context.Context, username string, role models.Role) (*models.User, bool, error) {
					gotName = username
					return &models.User{ID: uuid.New(), Username: username, Role: role}, true, nil
				},
			}

			user, err := NewApp(repo).Login(context.Background(), LoginRequest{Username: tt.username})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.Equal(t, strings.TrimSpace(tt.username), gotName)
		})
	}
}

func TestApp_Login_KeepsExistingRole(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Username: "admin", Role: models.RoleAdmin}
	repo := &FakeUsersRepository{
		FindOrCreateFunc: func(ctx context.Context, username string, role models.Role) (*models.User, bool, error) {
			return existing, false, nil
		},
	}

	user, err := NewApp(repo).Login(context.Background(), LoginRequest{Username: "ADMIN"})
	require.NoError(t, err)
	assert.Same(t, existing, user)
}

func TestApp_Login_TooLong(t *testing.T) {
	repo := &FakeUsersRepository{}
	_, err := NewApp(repo).Login(context.Background(), LoginRequest{Username: strings.Repeat("г", maxUsernameLength+1)})
	assert.Error(t, err)
}

func TestApp_GetUser_WrapsNotFound(t *testing.T) {
	repo := &FakeUsersRepository{
		GetUserFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return nil, ErrUserNotFound
		},
	}

	_, err := NewApp(repo).GetUser(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrUserNotFound))
}
