// Package repository declares the storage interfaces the services depend on.
//
// Services receive these interfaces, never the concrete SQLite type — tests
// substitute in-memory fakes, and swapping the storage engine touches only
// the wiring in the server package.
package repository

import (
	"context"

	"github.com/mnavarro/notas-api/internal/model"
)

// UserRepository persists registered accounts. Users are created once and
// only read afterwards; there is no update or delete in this API.
type UserRepository interface {
	// CreateUser inserts a new account. Fails with apperror.ErrConflict
	// when the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail is the login lookup. apperror.ErrNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUserByID resolves a token subject. apperror.ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// StudentRepository is the CRUD store for alumnos. DNI is unique; Create
// and Update fail with apperror.ErrConflict when another row holds the DNI.
type StudentRepository interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	GetStudentByID(ctx context.Context, id string) (*model.Student, error)
	CreateStudent(ctx context.Context, student *model.Student) error
	// UpdateStudent applies a partial update: nil fields keep their stored
	// value (COALESCE semantics). The conflict check excludes the row itself
	// so re-submitting an unchanged DNI is not an error.
	UpdateStudent(ctx context.Context, id string, upd model.StudentUpdate) (*model.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// SubjectRepository is the CRUD store for materias, unique on codigo.
type SubjectRepository interface {
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	GetSubjectByID(ctx context.Context, id string) (*model.Subject, error)
	CreateSubject(ctx context.Context, subject *model.Subject) error
	UpdateSubject(ctx context.Context, id string, upd model.SubjectUpdate) (*model.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// GradeRepository stores the at-most-one grade row per (student, subject)
// pair and serves the two report views.
type GradeRepository interface {
	// UpsertGrade inserts the row or overwrites all three slots of the
	// existing one, atomically — the pair uniqueness is enforced by the
	// storage engine, not by a check-then-act sequence, so two concurrent
	// submissions for the same pair can never produce two rows.
	// Returns created=true when a new row was inserted.
	UpsertGrade(ctx context.Context, grade *model.Grade) (created bool, err error)
	// ListGradesByStudent returns one row per subject in the system
	// (left-join: subjects the student has no grades in appear with nil
	// slots), ordered by subject name. Promedio fields are left nil — the
	// aggregation is the service's job.
	ListGradesByStudent(ctx context.Context, studentID string) ([]model.StudentSubjectGrades, error)
	// ListGradesBySubject returns one row per student, ordered by
	// (apellido, nombre), with the same left-join semantics.
	ListGradesBySubject(ctx context.Context, subjectID string) ([]model.SubjectStudentGrades, error)
}
