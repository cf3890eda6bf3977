package tap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/auth"
	"github.com/mcdev12/gooseclicker/go/internal/httpx"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// TapApp defines what the service layer needs from the tap application
type TapApp interface {
	SubmitTap(ctx context.Context, req SubmitTapRequest) (*models.TapResult, error)
}

// Service exposes tap ingestion over HTTP
type Service struct {
	app TapApp
}

// NewService creates a new tap HTTP service
func NewService(app TapApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes mounts POST /tap. r must already authenticate callers.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Post("/tap", s.submitTap)
}

func (s *Service) submitTap(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	var body TapBody
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.RoundID == "" {
		httpx.Error(w, http.StatusBadRequest, "Round ID is required")
		return
	}
	if body.TapID == "" {
		httpx.Error(w, http.StatusBadRequest, "Tap ID is required")
		return
	}

	roundID, err := uuid.Parse(body.RoundID)
	if err != nil {
		// an unparseable id cannot name an existing round
		httpx.Error(w, http.StatusNotFound, "round not found")
		return
	}
	if len(body.TapID) > MaxTapIDLength {
		httpx.Error(w, http.StatusBadRequest, fmt.Sprintf("Tap ID must be at most %d bytes", MaxTapIDLength))
		return
	}

	result, err := s.app.SubmitTap(r.Context(), SubmitTapRequest{
		UserID:  claims.UserID,
		RoundID: roundID,
		TapID:   body.TapID,
		Role:    claims.Role,
	})
	if err != nil {
		httpx.Fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}
