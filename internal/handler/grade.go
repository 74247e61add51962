package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mnavarro/notas-api/internal/service"
)

// GradeHandler serves the /api/notas routes: the upsert plus the two
// aggregated report views.
type GradeHandler struct {
	grades *service.GradeService
	logger *slog.Logger
}

func NewGradeHandler(grades *service.GradeService, logger *slog.Logger) *GradeHandler {
	return &GradeHandler{grades: grades, logger: logger}
}

// gradeRequest is one submission. The three slots are optional; an omitted
// slot is stored as NULL (and clears any previously stored value — the
// submission replaces the whole row).
type gradeRequest struct {
	AlumnoID  string   `json:"alumno_id" validate:"required"`
	MateriaID string   `json:"materia_id" validate:"required"`
	Nota1     *float64 `json:"nota1" validate:"omitempty,gte=0,lte=10"`
	Nota2     *float64 `json:"nota2" validate:"omitempty,gte=0,lte=10"`
	Nota3     *float64 `json:"nota3" validate:"omitempty,gte=0,lte=10"`
}

// HandleUpsert — POST /api/notas
//
// 201 {ok, mensaje:"Notas creadas", data} when the pair had no row yet,
// 200 {ok, mensaje:"Notas actualizadas", data} when it was overwritten.
// The data payload carries the resulting row including its promedio.
func (h *GradeHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	grade, created, err := h.grades.Upsert(r.Context(), service.GradeInput{
		StudentID: req.AlumnoID,
		SubjectID: req.MateriaID,
		Nota1:     req.Nota1,
		Nota2:     req.Nota2,
		Nota3:     req.Nota3,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if created {
		writeResult(w, http.StatusCreated, "Notas creadas", grade)
		return
	}
	writeResult(w, http.StatusOK, "Notas actualizadas", grade)
}

// HandleStudentReport — GET /api/notas/alumno/{id}
//
// One entry per materia in the system (nil slots where ungraded), ordered
// by materia name, plus promedio_general.
func (h *GradeHandler) HandleStudentReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.grades.ReportByStudent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// HandleSubjectReport — GET /api/notas/materia/{id}
//
// One entry per alumno, ordered by (apellido, nombre), plus
// promedio_materia.
func (h *GradeHandler) HandleSubjectReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.grades.ReportBySubject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}
