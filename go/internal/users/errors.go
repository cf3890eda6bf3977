package users

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUsername = errors.New("username is required")
)
