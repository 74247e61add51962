package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/repository"
)

// MinAnio is the lowest accepted curriculum year.
const MinAnio = 1900

// SubjectService orchestrates materia CRUD.
type SubjectService struct {
	repo   repository.SubjectRepository
	logger *slog.Logger
}

func NewSubjectService(repo repository.SubjectRepository, logger *slog.Logger) *SubjectService {
	return &SubjectService{repo: repo, logger: logger}
}

func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx)
	if err != nil {
		s.logger.Error("failed to list subjects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	return subjects, nil
}

func (s *SubjectService) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "id invalido")
	}
	return s.repo.GetSubjectByID(ctx, id)
}

func (s *SubjectService) Create(ctx context.Context, nombre, codigo string, anio int) (*model.Subject, error) {
	nombre = strings.TrimSpace(nombre)
	codigo = strings.TrimSpace(codigo)

	if nombre == "" {
		return nil, apperror.ValidationFailed("nombre", "Nombre requerido")
	}
	if codigo == "" {
		return nil, apperror.ValidationFailed("codigo", "Codigo requerido")
	}
	if anio < MinAnio {
		return nil, apperror.ValidationFailed("anio", "Año invalido")
	}

	subject := &model.Subject{Nombre: nombre, Codigo: codigo, Anio: anio}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}

	s.logger.Info("subject created",
		slog.String("id", subject.ID),
		slog.String("codigo", subject.Codigo),
	)
	return subject, nil
}

func (s *SubjectService) Update(ctx context.Context, id string, upd model.SubjectUpdate) (*model.Subject, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "id invalido")
	}

	if upd.Nombre != nil && strings.TrimSpace(*upd.Nombre) == "" {
		return nil, apperror.ValidationFailed("nombre", "Nombre requerido")
	}
	if upd.Codigo != nil && strings.TrimSpace(*upd.Codigo) == "" {
		return nil, apperror.ValidationFailed("codigo", "Codigo requerido")
	}
	if upd.Anio != nil && *upd.Anio < MinAnio {
		return nil, apperror.ValidationFailed("anio", "Año invalido")
	}

	subject, err := s.repo.UpdateSubject(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("subject updated", slog.String("id", id))
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "id invalido")
	}

	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		return err
	}

	s.logger.Info("subject deleted", slog.String("id", id))
	return nil
}
