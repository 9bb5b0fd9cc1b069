package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// ValidationError reports a rejected registration or password field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
