package apperrors

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")

	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token is expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrMissingHeader   = errors.New("authorization header required")
	ErrMalformedHeader = errors.New("authorization header is not a bearer credential")

	ErrValidationFailed = errors.New("validation failed")

	ErrPostSlugTaken = errors.New("post slug already exists")

	ErrProductNotFound = errors.New("product not found")
	ErrProductSKUTaken = errors.New("product sku already exists")
)

// ValidationError holds per field messages of failed input validation
// Matches ErrValidationFailed with errors.Is
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return ErrValidationFailed.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
