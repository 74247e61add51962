package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/repository"
)

var _ repository.GradeRepository = (*DB)(nil)

// UpsertGrade inserts the grade row for (alumno, materia) or overwrites all
// three slots of the existing one.
//
// ATOMICITY:
// The write is a single INSERT ... ON CONFLICT DO UPDATE. The conflict
// target is the UNIQUE(alumno_id, materia_id) index, so two concurrent
// submissions for the same pair serialize inside SQLite — one inserts, the
// other updates, and a duplicate row is impossible. A SELECT-then-INSERT
// sequence could not give that guarantee.
//
// The preceding COUNT only decides the created/updated status the handler
// reports (201 vs 200); correctness never depends on it.
//
// The update clause replaces nota1/nota2/nota3 unconditionally: a
// submission is the full new state of the row, not a patch, so a slot the
// caller omits becomes NULL again.
func (db *DB) UpsertGrade(ctx context.Context, grade *model.Grade) (bool, error) {
	var existing int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notas WHERE alumno_id = ? AND materia_id = ?`,
		grade.StudentID, grade.SubjectID,
	).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking existing grade: %w", err)
	}

	now := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO notas (id, alumno_id, materia_id, nota1, nota2, nota3, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (alumno_id, materia_id) DO UPDATE SET
		 	nota1      = excluded.nota1,
		 	nota2      = excluded.nota2,
		 	nota3      = excluded.nota3,
		 	updated_at = excluded.updated_at`,
		xid.New().String(),
		grade.StudentID,
		grade.SubjectID,
		grade.Nota1,
		grade.Nota2,
		grade.Nota3,
		now,
		now,
	)
	if err != nil {
		// The service checks existence first, so a foreign-key failure here
		// means the referenced row was deleted in between.
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return false, apperror.NotFound("Alumno o materia no encontrada")
		}
		return false, fmt.Errorf("sqlite: upserting grade: %w", err)
	}

	// Read the row back: on the update path the stored id and created_at
	// belong to the original insert, not to the statement above.
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, alumno_id, materia_id, nota1, nota2, nota3, created_at, updated_at
		 FROM notas WHERE alumno_id = ? AND materia_id = ?`,
		grade.StudentID, grade.SubjectID,
	).Scan(
		&grade.ID,
		&grade.StudentID,
		&grade.SubjectID,
		&grade.Nota1,
		&grade.Nota2,
		&grade.Nota3,
		&grade.CreatedAt,
		&grade.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: reading back grade: %w", err)
	}

	return existing == 0, nil
}

// ListGradesByStudent returns one row per materia in the system with this
// student's slots, nil where the student has no grade row — a LEFT JOIN
// from materias, so subjects never disappear just because nothing was
// graded yet. Ordered by materia nombre.
func (db *DB) ListGradesByStudent(ctx context.Context, studentID string) ([]model.StudentSubjectGrades, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.nombre, n.nota1, n.nota2, n.nota3
		 FROM materias m
		 LEFT JOIN notas n ON n.materia_id = m.id AND n.alumno_id = ?
		 ORDER BY m.nombre`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing grades for student %s: %w", studentID, err)
	}
	defer rows.Close()

	result := make([]model.StudentSubjectGrades, 0)
	for rows.Next() {
		var r model.StudentSubjectGrades
		if err := rows.Scan(&r.SubjectID, &r.Materia, &r.Nota1, &r.Nota2, &r.Nota3); err != nil {
			return nil, fmt.Errorf("sqlite: scanning grade row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating grade rows: %w", err)
	}

	return result, nil
}

// ListGradesBySubject is the symmetric view: one row per alumno, ordered by
// (apellido, nombre), with nil slots for students not yet graded.
func (db *DB) ListGradesBySubject(ctx context.Context, subjectID string) ([]model.SubjectStudentGrades, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT a.id, a.nombre, a.apellido, n.nota1, n.nota2, n.nota3
		 FROM alumnos a
		 LEFT JOIN notas n ON n.alumno_id = a.id AND n.materia_id = ?
		 ORDER BY a.apellido, a.nombre`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing grades for subject %s: %w", subjectID, err)
	}
	defer rows.Close()

	result := make([]model.SubjectStudentGrades, 0)
	for rows.Next() {
		var r model.SubjectStudentGrades
		if err := rows.Scan(&r.StudentID, &r.Nombre, &r.Apellido, &r.Nota1, &r.Nota2, &r.Nota3); err != nil {
			return nil, fmt.Errorf("sqlite: scanning grade row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating grade rows: %w", err)
	}

	return result, nil
}
