package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/service"
)

// SubjectHandler serves the /api/materias CRUD routes, auth-gated.
type SubjectHandler struct {
	subjects *service.SubjectService
	logger   *slog.Logger
}

func NewSubjectHandler(subjects *service.SubjectService, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{subjects: subjects, logger: logger}
}

type subjectCreateRequest struct {
	Nombre string `json:"nombre" validate:"required"`
	Codigo string `json:"codigo" validate:"required"`
	Anio   int    `json:"anio" validate:"required,gte=1900"`
}

type subjectUpdateRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=1"`
	Codigo *string `json:"codigo" validate:"omitempty,min=1"`
	Anio   *int    `json:"anio" validate:"omitempty,gte=1900"`
}

// HandleList — GET /api/materias
func (h *SubjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.subjects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, subjects)
}

// HandleGetByID — GET /api/materias/{id}
func (h *SubjectHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	subject, err := h.subjects.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, subject)
}

// HandleCreate — POST /api/materias
func (h *SubjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req subjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	subject, err := h.subjects.Create(r.Context(), req.Nombre, req.Codigo, req.Anio)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, subject)
}

// HandleUpdate — PUT /api/materias/{id}
func (h *SubjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req subjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	subject, err := h.subjects.Update(r.Context(), r.PathValue("id"), model.SubjectUpdate{
		Nombre: req.Nombre,
		Codigo: req.Codigo,
		Anio:   req.Anio,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, subject)
}

// HandleDelete — DELETE /api/materias/{id}
func (h *SubjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.subjects.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Materia eliminada")
}
