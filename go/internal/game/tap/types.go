package tap

import (
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// MaxTapIDLength bounds the caller-chosen tap id.
const MaxTapIDLength = 128

// SubmitTapRequest identifies one tap. TapID is the caller's opaque
// idempotency key, unique across all users and rounds; Role comes from the
// authenticated caller.
type SubmitTapRequest struct {
	UserID  uuid.UUID
	RoundID uuid.UUID
	TapID   string
	Role    models.Role
}

// TapBody is the JSON body of POST /api/tap.
type TapBody struct {
	RoundID string `json:"roundId"`
	TapID   string `json:"tapId"`
}
