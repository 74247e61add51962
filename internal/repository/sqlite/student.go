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

var _ repository.StudentRepository = (*DB)(nil)

const studentColumns = `id, nombre, apellido, dni, created_at, updated_at`

// ListStudents returns every alumno ordered by (apellido, nombre) — the
// order the listing endpoints and the subject report both promise.
func (db *DB) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM alumnos ORDER BY apellido, nombre`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing students: %w", err)
	}
	defer rows.Close()

	students := make([]model.Student, 0)
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Apellido, &s.DNI, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating students: %w", err)
	}

	return students, nil
}

func (db *DB) GetStudentByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM alumnos WHERE id = ?`, id,
	).Scan(&s.ID, &s.Nombre, &s.Apellido, &s.DNI, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Alumno no encontrado")
		}
		return nil, fmt.Errorf("sqlite: getting student %s: %w", id, err)
	}

	return &s, nil
}

// CreateStudent inserts a new alumno. A DNI collision surfaces as Conflict,
// backed by the UNIQUE constraint rather than a separate existence query.
func (db *DB) CreateStudent(ctx context.Context, student *model.Student) error {
	student.ID = xid.New().String()
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO alumnos (id, nombre, apellido, dni, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.Nombre,
		student.Apellido,
		student.DNI,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "alumnos.dni") {
			return apperror.Conflict("DNI ya registrado")
		}
		return fmt.Errorf("sqlite: inserting student: %w", err)
	}

	return nil
}

// UpdateStudent applies a partial update with COALESCE: nil fields in upd
// keep whatever the row already holds, so callers send only what changes.
//
// The UNIQUE constraint still guards the DNI. Its violation here can only
// mean a DIFFERENT row owns the value — re-submitting the row's own DNI
// coalesces to an identical value, which never conflicts with itself.
func (db *DB) UpdateStudent(ctx context.Context, id string, upd model.StudentUpdate) (*model.Student, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE alumnos
		 SET nombre     = COALESCE(?, nombre),
		     apellido   = COALESCE(?, apellido),
		     dni        = COALESCE(?, dni),
		     updated_at = ?
		 WHERE id = ?`,
		upd.Nombre,
		upd.Apellido,
		upd.DNI,
		time.Now(),
		id,
	)
	if err != nil {
		if isUniqueViolation(err, "alumnos.dni") {
			return nil, apperror.Conflict("DNI ya en uso por otro alumno")
		}
		return nil, fmt.Errorf("sqlite: updating student %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("Alumno no encontrado")
	}

	return db.GetStudentByID(ctx, id)
}

// DeleteStudent removes an alumno. The ON DELETE CASCADE on notas takes the
// student's grade rows with it.
func (db *DB) DeleteStudent(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM alumnos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting student %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Alumno no encontrado")
	}

	return nil
}
