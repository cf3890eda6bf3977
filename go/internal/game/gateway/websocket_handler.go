package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/httpx"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleConnection upgrades /ws. An optional roundId query parameter limits
// the stream to one round; without it the client sees every round.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	roundID := allRounds
	if v := r.URL.Query().Get("roundId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid roundId format")
			return
		}
		roundID = id
	}

	// Upgrade writes its own error response
	if err := h.connectionManager.UpgradeConnection(w, r, roundID); err != nil {
		log.Debug().Err(err).Str("round_id", roundID.String()).Msg("Failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.connectionManager.Stats())
}

// RegisterRoutes mounts /ws and /ws/stats
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.HandleConnection)
	r.Get("/ws/stats", h.HandleConnectionStats)
}
