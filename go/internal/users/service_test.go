package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/auth"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo UsersRepository, tokens auth.Provider) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/auth", NewService(NewApp(repo), tokens).RegisterRoutes)
	return r
}

func TestService_LoginThenMe(t *testing.T) {
	tokens := auth.NewProvider("secret", "", time.Hour)
	stored := map[uuid.UUID]*models.User{}
	repo := &FakeUsersRepository{
		FindOrCreateFunc: func(ctx context.Context, username string, role models.Role) (*models.User, bool, error) {
			u := &models.User{ID: uuid.New(), Username: username, Role: role}
			stored[u.ID] = u
			return u, true, nil
		},
		GetUserFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			if u, ok := stored[id]; ok {
				return u, nil
			}
			return nil, ErrUserNotFound
		},
	}
	h := newTestRouter(repo, tokens)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"admin"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, resp.User.ID, me.ID)
}

func TestService_Login_EmptyUsername(t *testing.T) {
	h := newTestRouter(&FakeUsersRepository{}, auth.NewProvider("secret", "", time.Hour))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"  "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username is required")
}

func TestService_Me_RequiresToken(t *testing.T) {
	h := newTestRouter(&FakeUsersRepository{}, auth.NewProvider("secret", "", time.Hour))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
