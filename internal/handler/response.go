// Package handler is the HTTP layer: request parsing, input validation,
// response shaping. Business rules live one layer down, in service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mnavarro/notas-api/internal/apperror"
)

// Response is the uniform envelope every endpoint answers with:
//
//	success:          {"ok":true, "data":...}
//	success, no data: {"ok":true, "mensaje":"..."}
//	failure:          {"ok":false, "mensaje":"..."}
//
// Earlier revisions of this API mixed bare arrays with envelopes per route;
// one shape everywhere lets clients parse every response the same way.
type Response struct {
	OK      bool   `json:"ok"`
	Mensaje string `json:"mensaje,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// validate is the shared validator for request DTOs. validator.Validate is
// safe for concurrent use and caches struct metadata, so one instance for
// the whole package is the intended usage.
var validate = newValidator()

// newValidator builds the validator and teaches it to report fields by
// their json tag — error messages must say "alumno_id", not "AlumnoID".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON sends any payload with the given status. Headers must be set
// before the first body write — hence the fixed order here.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already out; nothing to do but log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeData answers a successful request carrying a payload.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{OK: true, Data: data})
}

// writeMessage answers a successful request with only a message.
func writeMessage(w http.ResponseWriter, status int, mensaje string) {
	writeJSON(w, status, Response{OK: true, Mensaje: mensaje})
}

// writeResult answers with both a message and a payload (the grade upsert
// reports "Notas creadas"/"Notas actualizadas" alongside the row).
func writeResult(w http.ResponseWriter, status int, mensaje string, data any) {
	writeJSON(w, status, Response{OK: true, Mensaje: mensaje, Data: data})
}

// writeError translates a domain error into a status code and the failure
// envelope. Unknown errors become a generic 500: internal details (SQL,
// paths) belong in the log, never on the wire.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, Response{OK: false, Mensaje: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, Response{
		OK:      false,
		Mensaje: "Error interno del servidor",
	})
}

// writeInvalidBody is the answer to a request whose body isn't valid JSON.
func writeInvalidBody(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, Response{OK: false, Mensaje: "JSON invalido"})
}

// writeValidationError maps the FIRST failed rule of a DTO validation to a
// message, mirroring how the API has always reported input errors.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		writeJSON(w, http.StatusBadRequest, Response{
			OK:      false,
			Mensaje: validationMessage(verrs[0]),
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, Response{OK: false, Mensaje: "Errores de validación"})
}

// validationMessage phrases one failed rule in the API's Spanish voice.
// fe.Field() is the json tag name thanks to RegisterTagNameFunc above.
func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = "campo"
	}
	switch fe.Tag() {
	case "required":
		return field + " es obligatorio"
	case "email":
		return "Email invalido"
	case "numeric":
		return field + " numerico"
	case "min":
		return field + " demasiado corto"
	case "gte", "lte":
		return field + " fuera de rango"
	default:
		return field + " invalido"
	}
}
