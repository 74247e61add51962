package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/service"
)

// StudentHandler serves the /api/alumnos CRUD routes. Every route here is
// mounted behind the auth gate by the server package.
type StudentHandler struct {
	students *service.StudentService
	logger   *slog.Logger
}

func NewStudentHandler(students *service.StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{students: students, logger: logger}
}

type studentCreateRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	DNI      string `json:"dni" validate:"required,numeric"`
}

// studentUpdateRequest is a partial update: nil means "leave unchanged",
// which flows down to COALESCE in the store. Provided values still have to
// pass the same rules as on create.
type studentUpdateRequest struct {
	Nombre   *string `json:"nombre" validate:"omitempty,min=1"`
	Apellido *string `json:"apellido" validate:"omitempty,min=1"`
	DNI      *string `json:"dni" validate:"omitempty,numeric"`
}

// HandleList — GET /api/alumnos
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, students)
}

// HandleGetByID — GET /api/alumnos/{id}
func (h *StudentHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, student)
}

// HandleCreate — POST /api/alumnos
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req studentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	student, err := h.students.Create(r.Context(), req.Nombre, req.Apellido, req.DNI)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, student)
}

// HandleUpdate — PUT /api/alumnos/{id}
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req studentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	student, err := h.students.Update(r.Context(), r.PathValue("id"), model.StudentUpdate{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		DNI:      req.DNI,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, student)
}

// HandleDelete — DELETE /api/alumnos/{id}
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.students.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Alumno eliminado")
}
