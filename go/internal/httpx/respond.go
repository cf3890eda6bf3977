package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mcdev12/gooseclicker/go/internal/game"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds request bodies; every API payload is a handful of ids.
const maxBodyBytes = 1 << 16

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

// Error writes an {"error": msg} body.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// Decode reads a JSON body into v, rejecting unknown fields and oversized bodies.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// StatusFor maps the game error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrRoundNotActive),
		errors.Is(err, game.ErrInvalidRound),
		errors.Is(err, game.ErrInvalidTap):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrDuplicateTap):
		return http.StatusConflict
	case errors.Is(err, game.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err using StatusFor. Internal errors are logged and hidden
// from the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		Error(w, status, http.StatusText(status))
		return
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", strconv.Itoa(1))
	}
	Error(w, status, rootMessage(err))
}

// rootMessage returns the sentinel's text rather than the wrapped chain, so
// internal context does not leak into responses. Validation errors keep
// their detail.
func rootMessage(err error) string {
	if errors.Is(err, game.ErrInvalidRound) || errors.Is(err, game.ErrInvalidTap) {
		return err.Error()
	}
	for _, sentinel := range []error{
		game.ErrRoundNotFound,
		game.ErrRoundNotActive,
		game.ErrDuplicateTap,
		game.ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
