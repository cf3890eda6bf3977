package round

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/auth"
	"github.com/mcdev12/gooseclicker/go/internal/httpx"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// RoundApp defines what the service layer needs from the round application
type RoundApp interface {
	CreateRound(ctx context.Context, req CreateRoundRequest) (*models.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (*models.RoundDetails, error)
	ListRounds(ctx context.Context, req ListRoundsRequest) ([]models.Round, error)
	GetPlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*models.PlayerStats, error)
	GetAllPlayerStats(ctx context.Context, roundID uuid.UUID) (*models.RoundLeaderboard, error)
}

// Service exposes rounds over HTTP
type Service struct {
	app RoundApp
}

// NewService creates a new round HTTP service
func NewService(app RoundApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes mounts the round routes. r must already authenticate
// callers; creating a round additionally requires the admin role.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Route("/rounds", func(r chi.Router) {
		r.With(auth.RequireRole(models.RoleAdmin, "Only admins can create rounds")).Post("/", s.createRound)
		r.Get("/", s.listRounds)
		r.Get("/{roundID}", s.getRound)
		r.Get("/{roundID}/stats", s.getPlayerStats)
		r.Get("/{roundID}/all-stats", s.getAllPlayerStats)
	})
}

func (s *Service) createRound(w http.ResponseWriter, r *http.Request) {
	var req CreateRoundRequest
	// the body is optional
	if err := httpx.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	round, err := s.app.CreateRound(r.Context(), req)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, round)
}

func (s *Service) listRounds(w http.ResponseWriter, r *http.Request) {
	var req ListRoundsRequest

	if v := r.URL.Query().Get("status"); v != "" {
		status := models.RoundStatus(v)
		if !status.Valid() {
			httpx.Error(w, http.StatusBadRequest, "Status must be one of COOLDOWN, ACTIVE, FINISHED")
			return
		}
		req.Status = &status
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			httpx.Error(w, http.StatusBadRequest, "Limit must be a positive integer")
			return
		}
		req.Limit = limit
	}

	rounds, err := s.app.ListRounds(r.Context(), req)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, rounds)
}

func (s *Service) getRound(w http.ResponseWriter, r *http.Request) {
	id, ok := roundIDParam(w, r)
	if !ok {
		return
	}

	details, err := s.app.GetRound(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, details)
}

func (s *Service) getPlayerStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}
	id, ok := roundIDParam(w, r)
	if !ok {
		return
	}

	stats, err := s.app.GetPlayerStats(r.Context(), claims.UserID, id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}
	if stats == nil {
		httpx.Error(w, http.StatusNotFound, "Stats not found")
		return
	}

	httpx.JSON(w, http.StatusOK, stats)
}

func (s *Service) getAllPlayerStats(w http.ResponseWriter, r *http.Request) {
	id, ok := roundIDParam(w, r)
	if !ok {
		return
	}

	board, err := s.app.GetAllPlayerStats(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, board)
}

// roundIDParam writes a 404 for ids that cannot name a round.
func roundIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "roundID"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "round not found")
		return uuid.Nil, false
	}
	return id, true
}
