package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	msgInvalidBody      = "Cuerpo de la petición inválido"
	msgInternal         = "Error interno del servidor"
	msgMethodNotAllowed = "Método no permitido"
	msgRouteNotFound    = "Recurso no encontrado"
)

// Envelope is the body of every API response. Failures set Success to
// false and carry either Message or Errors.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Meta    any                 `json:"meta,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: true, Message: message})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

func WriteValidationErrors(w http.ResponseWriter, fields map[string][]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, Envelope{Success: false, Errors: fields})
}

// NotFound answers paths no handler is registered for.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, msgRouteNotFound)
}
