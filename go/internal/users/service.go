package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/auth"
	"github.com/mcdev12/gooseclicker/go/internal/httpx"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/rs/zerolog/log"
)

// UsersApp defines what the service layer needs from the users application
type UsersApp interface {
	Login(ctx context.Context, req LoginRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes the auth endpoints over HTTP
type Service struct {
	app    UsersApp
	tokens auth.Provider
}

// NewService creates a new users HTTP service
func NewService(app UsersApp, tokens auth.Provider) *Service {
	return &Service{
		app:    app,
		tokens: tokens,
	}
}

// RegisterRoutes mounts /register, /login and /me on r.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Post("/register", s.login)
	r.Post("/login", s.login)
	r.With(auth.Middleware(s.tokens)).Get("/me", s.me)
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.app.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidUsername) {
			httpx.Error(w, http.StatusBadRequest, "Username is required")
			return
		}
		httpx.Fail(w, r, err)
		return
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to issue token")
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	httpx.JSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

func (s *Service) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	user, err := s.app.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		httpx.Fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, user)
}
