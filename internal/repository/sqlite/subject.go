package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/repository"
)

var _ repository.SubjectRepository = (*DB)(nil)

const subjectColumns = `id, nombre, codigo, anio, created_at, updated_at`

// ListSubjects returns every materia ordered by nombre.
func (db *DB) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+subjectColumns+` FROM materias ORDER BY nombre`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]model.Subject, 0)
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Codigo, &s.Anio, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subjects: %w", err)
	}

	return subjects, nil
}

func (db *DB) GetSubjectByID(ctx context.Context, id string) (*model.Subject, error) {
	var s model.Subject

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+subjectColumns+` FROM materias WHERE id = ?`, id,
	).Scan(&s.ID, &s.Nombre, &s.Codigo, &s.Anio, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Materia no encontrada")
		}
		return nil, fmt.Errorf("sqlite: getting subject %s: %w", id, err)
	}

	return &s, nil
}

func (db *DB) CreateSubject(ctx context.Context, subject *model.Subject) error {
	subject.ID = xid.New().String()
	now := time.Now()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO materias (id, nombre, codigo, anio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		subject.ID,
		subject.Nombre,
		subject.Codigo,
		subject.Anio,
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "materias.codigo") {
			return apperror.Conflict("Codigo ya registrado")
		}
		return fmt.Errorf("sqlite: inserting subject: %w", err)
	}

	return nil
}

// UpdateSubject mirrors UpdateStudent: COALESCE partial update, Conflict
// when the new codigo belongs to a different row.
func (db *DB) UpdateSubject(ctx context.Context, id string, upd model.SubjectUpdate) (*model.Subject, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE materias
		 SET nombre     = COALESCE(?, nombre),
		     codigo     = COALESCE(?, codigo),
		     anio       = COALESCE(?, anio),
		     updated_at = ?
		 WHERE id = ?`,
		upd.Nombre,
		upd.Codigo,
		upd.Anio,
		time.Now(),
		id,
	)
	if err != nil {
		if isUniqueViolation(err, "materias.codigo") {
			return nil, apperror.Conflict("Codigo ya en uso")
		}
		return nil, fmt.Errorf("sqlite: updating subject %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("Materia no encontrada")
	}

	return db.GetSubjectByID(ctx, id)
}

func (db *DB) DeleteSubject(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM materias WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting subject %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Materia no encontrada")
	}

	return nil
}
