package users

import "github.com/mcdev12/gooseclicker/go/internal/models"

// LoginRequest is the body of both register and login; either finds or
// creates the user.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// LoginResponse carries the bearer token for subsequent calls.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
