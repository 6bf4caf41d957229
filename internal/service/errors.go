package service

import (
	"errors"
	"fmt"

	"shophub/internal/domain"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token has expired", domain.ErrUnauthenticated)
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError reports a request that is well formed but breaks a business rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
