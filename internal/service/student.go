package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/repository"
)

// StudentService orchestrates alumno CRUD: trims and validates input,
// delegates persistence (and the uniqueness rules) to the repository.
type StudentService struct {
	repo   repository.StudentRepository
	logger *slog.Logger
}

func NewStudentService(repo repository.StudentRepository, logger *slog.Logger) *StudentService {
	return &StudentService{repo: repo, logger: logger}
}

func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		s.logger.Error("failed to list students", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return students, nil
}

func (s *StudentService) GetByID(ctx context.Context, id string) (*model.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "id invalido")
	}
	return s.repo.GetStudentByID(ctx, id)
}

func (s *StudentService) Create(ctx context.Context, nombre, apellido, dni string) (*model.Student, error) {
	nombre = strings.TrimSpace(nombre)
	apellido = strings.TrimSpace(apellido)
	dni = strings.TrimSpace(dni)

	if nombre == "" {
		return nil, apperror.ValidationFailed("nombre", "Nombre requerido")
	}
	if apellido == "" {
		return nil, apperror.ValidationFailed("apellido", "Apellido requerido")
	}
	if err := validateDNI(dni); err != nil {
		return nil, err
	}

	student := &model.Student{Nombre: nombre, Apellido: apellido, DNI: dni}
	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("student created",
		slog.String("id", student.ID),
		slog.String("dni", student.DNI),
	)
	return student, nil
}

// Update applies a partial update: nil fields are left untouched all the
// way down to the SQL. A provided-but-invalid field is rejected before any
// store access.
func (s *StudentService) Update(ctx context.Context, id string, upd model.StudentUpdate) (*model.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "id invalido")
	}

	if upd.Nombre != nil && strings.TrimSpace(*upd.Nombre) == "" {
		return nil, apperror.ValidationFailed("nombre", "Nombre requerido")
	}
	if upd.Apellido != nil && strings.TrimSpace(*upd.Apellido) == "" {
		return nil, apperror.ValidationFailed("apellido", "Apellido requerido")
	}
	if upd.DNI != nil {
		if err := validateDNI(*upd.DNI); err != nil {
			return nil, err
		}
	}

	student, err := s.repo.UpdateStudent(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("student updated", slog.String("id", id))
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "id invalido")
	}

	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student deleted", slog.String("id", id))
	return nil
}

// validateDNI requires a non-empty all-digit value. The DNI stays a string
// in storage (leading zeros), but it must look numeric.
func validateDNI(dni string) error {
	if dni == "" {
		return apperror.ValidationFailed("dni", "DNI requerido")
	}
	for _, r := range dni {
		if !unicode.IsDigit(r) {
			return apperror.ValidationFailed("dni", "DNI numerico")
		}
	}
	return nil
}
