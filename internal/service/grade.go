package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/repository"
)

// Grade slots must lie in [MinNota, MaxNota] when present.
const (
	MinNota = 0.0
	MaxNota = 10.0
)

// GradeService is the aggregation core: it owns the upsert protocol for
// grade rows and the two report views with their averages.
//
// It deliberately depends on all three stores — a grade submission is only
// meaningful against an existing alumno and materia, so the referenced rows
// are verified here, before anything is written.
type GradeService struct {
	grades   repository.GradeRepository
	students repository.StudentRepository
	subjects repository.SubjectRepository
	logger   *slog.Logger
}

func NewGradeService(
	grades repository.GradeRepository,
	students repository.StudentRepository,
	subjects repository.SubjectRepository,
	logger *slog.Logger,
) *GradeService {
	return &GradeService{
		grades:   grades,
		students: students,
		subjects: subjects,
		logger:   logger,
	}
}

// GradeInput is one grade submission. Nil slots are stored as NULL — an
// omitted slot is "no score", and submitting without a previously-present
// slot clears it, because the upsert replaces the whole row.
type GradeInput struct {
	StudentID string
	SubjectID string
	Nota1     *float64
	Nota2     *float64
	Nota3     *float64
}

// Upsert validates and persists a grade submission.
//
// Order of checks, all before any write:
//  1. each provided slot is finite and within [0, 10]
//  2. the alumno exists
//  3. the materia exists
//
// The returned Grade is the resulting row with its recomputed promedio;
// created reports whether a new row was inserted (the handler answers 201)
// or an existing one overwritten (200).
func (s *GradeService) Upsert(ctx context.Context, in GradeInput) (*model.Grade, bool, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	if in.StudentID == "" {
		return nil, false, apperror.ValidationFailed("alumno_id", "alumno_id invalido")
	}
	if in.SubjectID == "" {
		return nil, false, apperror.ValidationFailed("materia_id", "materia_id invalido")
	}

	for _, slot := range []struct {
		name  string
		value *float64
	}{
		{"nota1", in.Nota1},
		{"nota2", in.Nota2},
		{"nota3", in.Nota3},
	} {
		if err := validateNota(slot.name, slot.value); err != nil {
			return nil, false, err
		}
	}

	if _, err := s.students.GetStudentByID(ctx, in.StudentID); err != nil {
		return nil, false, err
	}
	if _, err := s.subjects.GetSubjectByID(ctx, in.SubjectID); err != nil {
		return nil, false, err
	}

	grade := &model.Grade{
		StudentID: in.StudentID,
		SubjectID: in.SubjectID,
		Nota1:     in.Nota1,
		Nota2:     in.Nota2,
		Nota3:     in.Nota3,
	}
	created, err := s.grades.UpsertGrade(ctx, grade)
	if err != nil {
		s.logger.Error("failed to upsert grade",
			slog.String("alumnoID", in.StudentID),
			slog.String("materiaID", in.SubjectID),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("upserting grade: %w", err)
	}
	grade.Recalc()

	s.logger.Info("grade upserted",
		slog.String("alumnoID", grade.StudentID),
		slog.String("materiaID", grade.SubjectID),
		slog.Bool("created", created),
	)

	return grade, created, nil
}

// ReportByStudent builds the per-student view: one row per materia in the
// system (graded or not), ordered by materia name, each with its promedio,
// plus the overall average.
//
// The overall average is taken over the per-subject promedios that exist —
// NOT over the raw slots. Ten scores in one subject and one score in
// another weigh the two subjects equally.
func (s *GradeService) ReportByStudent(ctx context.Context, studentID string) (*model.StudentReport, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, apperror.ValidationFailed("id", "id invalido")
	}

	if _, err := s.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	rows, err := s.grades.ListGradesByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("failed to build student report",
			slog.String("alumnoID", studentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing grades for student: %w", err)
	}

	promedios := make([]*float64, 0, len(rows))
	for i := range rows {
		rows[i].Promedio = model.Promedio(rows[i].Nota1, rows[i].Nota2, rows[i].Nota3)
		promedios = append(promedios, rows[i].Promedio)
	}

	return &model.StudentReport{
		Notas:           rows,
		PromedioGeneral: model.PromedioOf(promedios),
	}, nil
}

// ReportBySubject builds the per-subject view: one row per alumno (graded
// or not), ordered by (apellido, nombre), plus the subject-wide average
// over the non-nil per-student promedios.
func (s *GradeService) ReportBySubject(ctx context.Context, subjectID string) (*model.SubjectReport, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, apperror.ValidationFailed("id", "id invalido")
	}

	if _, err := s.subjects.GetSubjectByID(ctx, subjectID); err != nil {
		return nil, err
	}

	rows, err := s.grades.ListGradesBySubject(ctx, subjectID)
	if err != nil {
		s.logger.Error("failed to build subject report",
			slog.String("materiaID", subjectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing grades for subject: %w", err)
	}

	promedios := make([]*float64, 0, len(rows))
	for i := range rows {
		rows[i].Promedio = model.Promedio(rows[i].Nota1, rows[i].Nota2, rows[i].Nota3)
		promedios = append(promedios, rows[i].Promedio)
	}

	return &model.SubjectReport{
		Alumnos:         rows,
		PromedioMateria: model.PromedioOf(promedios),
	}, nil
}

// validateNota accepts nil (slot not provided) or a finite value in range.
// NaN and ±Inf are rejected explicitly: they parse as JSON numbers never,
// but can arrive through other callers, and NaN breaks every comparison.
func validateNota(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return apperror.ValidationFailed(field, field+" fuera de rango")
	}
	if *v < MinNota || *v > MaxNota {
		return apperror.ValidationFailed(field, field+" fuera de rango")
	}
	return nil
}
