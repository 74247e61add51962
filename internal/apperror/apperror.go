// Package apperror defines the application's error taxonomy.
//
// Services and repositories return these typed errors; the HTTP layer maps
// them to status codes with errors.Is/errors.As. Keeping the taxonomy in one
// leaf package means no layer has to import another just to classify a
// failure.
package apperror

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a sentinel (for classification) plus the human-readable
// message that is safe to send over the wire. Messages are in Spanish —
// the API contract predates this implementation and its clients expect them.
type AppError struct {
	Err     error  // sentinel: ErrNotFound, ErrValidation, ...
	Message string // wire-visible message, e.g. "Alumno no encontrado"
	Field   string // optional: the input field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound builds an error for a missing resource. The message is what the
// client sees ("Alumno no encontrado"), so callers phrase it per resource.
func NotFound(mensaje string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: mensaje,
	}
}

func ValidationFailed(field, mensaje string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: mensaje,
		Field:   field,
	}
}

// Conflict indicates a unique-field collision (duplicate email, DNI, codigo).
func Conflict(mensaje string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: mensaje,
	}
}

// Unauthorized covers every authentication failure. The message is
// deliberately generic: the wire response never distinguishes a bad
// password from an unknown email or an expired token.
func Unauthorized(mensaje string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: mensaje,
	}
}
