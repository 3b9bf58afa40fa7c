package user

import "errors"

// Sentinel errors surfaced by the repository layer; the service layer
// translates these into apperr.Error values with the right HTTP-mappable
// code before they reach a handler.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserInactive        = errors.New("user account is inactive")
	ErrInvalidRole         = errors.New("invalid role")
	ErrSamePassword        = errors.New("new password cannot be same as current password")
)
