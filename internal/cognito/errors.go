package cognito

import (
	"errors"
	"net/http"
)

// Sentinel errors for Cognito operations.
var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
)

// ErrorInfo is the HTTP status and client-safe message for a sentinel.
type ErrorInfo struct {
	Status  int
	Message string
}

// Login failures for unknown users and wrong passwords share one message.
var errorMap = map[error]ErrorInfo{
	ErrUserAlreadyExists:     {Status: http.StatusConflict, Message: "El email ya está registrado"},
	ErrUserNotFound:          {Status: http.StatusUnauthorized, Message: "Credenciales inválidas"},
	ErrUserNotConfirmed:      {Status: http.StatusForbidden, Message: "El usuario no ha confirmado su cuenta"},
	ErrInvalidPassword:       {Status: http.StatusBadRequest, Message: "La contraseña no cumple los requisitos"},
	ErrTooManyRequests:       {Status: http.StatusTooManyRequests, Message: "Demasiadas peticiones, inténtalo más tarde"},
	ErrNotAuthorized:         {Status: http.StatusUnauthorized, Message: "Credenciales inválidas"},
	ErrLimitExceeded:         {Status: http.StatusTooManyRequests, Message: "Demasiadas peticiones, inténtalo más tarde"},
	ErrPasswordResetRequired: {Status: http.StatusForbidden, Message: "Es necesario restablecer la contraseña"},
	ErrInvalidParameter:      {Status: http.StatusBadRequest, Message: "Parámetros inválidos"},
}

// LookupError checks if the given error matches any known Cognito sentinel error
// and returns the corresponding ErrorInfo. Returns false if no match.
func LookupError(err error) (ErrorInfo, bool) {
	for sentinel, info := range errorMap {
		if errors.Is(err, sentinel) {
			return info, true
		}
	}
	return ErrorInfo{}, false
}
