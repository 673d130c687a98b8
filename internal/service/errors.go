package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrBadRequest   = errors.New("bad request")

	// ErrAuthNotConfigured is returned by identity operations when no
	// identity provider is wired in.
	ErrAuthNotConfigured = errors.New("identity provider not configured")
)

// ErrNoDueDate rejects weather and reminder calls on tasks without a due date.
var ErrNoDueDate = &BadRequestError{Message: "La tarea no tiene fecha de vencimiento"}

// BadRequestError is an operation that is invalid for the task's current
// state. Message is safe to show to clients.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }
func (e *BadRequestError) Unwrap() error { return ErrBadRequest }

// ValidationError collects field-keyed messages. It matches ErrInvalidInput
// under errors.Is.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// orNil returns e only when it holds at least one message.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
