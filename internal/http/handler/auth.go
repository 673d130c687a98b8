package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/jaekwang-park/task-api/internal/cognito"
	"github.com/jaekwang-park/task-api/internal/middleware"
	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/service"
)

const (
	msgSignedOut         = "Sesión cerrada exitosamente"
	msgAuthNotConfigured = "Autenticación no configurada"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// ServeHTTP routes /register, /login, /logout and /profile.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch path.Clean(r.URL.Path) {
	case "/register":
		h.requireMethod(w, r, http.MethodPost, h.handleRegister)
	case "/login":
		h.requireMethod(w, r, http.MethodPost, h.handleLogin)
	case "/logout":
		h.requireMethod(w, r, http.MethodPost, h.handleLogout)
	case "/profile":
		h.requireMethod(w, r, http.MethodGet, h.handleProfile)
	default:
		WriteError(w, http.StatusNotFound, msgRouteNotFound)
	}
}

func (h *AuthHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, handler func(http.ResponseWriter, *http.Request)) {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	handler(w, r)
}

// --- DTOs ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutRequest struct {
	AccessToken string `json:"access_token"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: formatTimestamp(u.CreatedAt),
		UpdatedAt: formatTimestamp(u.UpdatedAt),
	}
}

// --- Handlers ---

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, out)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, out)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Logout(r.Context(), service.LogoutInput{
		AccessToken: req.AccessToken,
	}); err != nil {
		handleAuthError(w, r, err)
		return
	}

	WriteMessage(w, http.StatusOK, msgSignedOut)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Profile(r.Context(), getUserID(r))
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, toUserResponse(user))
}

// handleAuthError maps cognito sentinel errors and service errors to HTTP responses.
// Uses fixed messages to avoid leaking internal error details to clients.
// Logs actual error details server-side for debugging.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if info, ok := cognito.LookupError(err); ok {
		slog.WarnContext(r.Context(), "auth error",
			"request_id", middleware.GetRequestID(r.Context()),
			"status", info.Status,
			"detail", err.Error(),
		)
		WriteError(w, info.Status, info.Message)
		return
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationErrors(w, verr.Fields)
	case errors.Is(err, service.ErrAuthNotConfigured):
		WriteError(w, http.StatusServiceUnavailable, msgAuthNotConfigured)
	default:
		slog.ErrorContext(r.Context(), "auth internal error",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}
